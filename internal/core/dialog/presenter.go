package dialog

import (
	"context"
	"sort"

	"github.com/colonyops/walkthrough/pkg/executil"
)

// Presenter shows a prompt and reports the user's answer.
type Presenter interface {
	Present(ctx context.Context, opts Options) Result
}

// IconSource supplies the icon used when a prompt does not set one.
type IconSource interface {
	Icon(ctx context.Context) string
}

// Result is the outcome of a prompt. A zero Result means the prompt produced
// nothing usable: the user dismissed it, the program failed, or its output
// could not be read. Callers cannot tell these apart.
type Result struct {
	Values   map[string]any
	TimedOut bool
	Process  *executil.Process // set for non-blocking prompts
}

// OK reports whether the prompt produced anything.
func (r Result) OK() bool {
	return len(r.Values) > 0 || r.TimedOut || r.Process != nil
}

// SelectedOption returns the value picked in a select-items prompt.
func (r Result) SelectedOption() (string, bool) {
	v, ok := r.Values["SelectedOption"].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Checked returns the labels of the ticked checkboxes in name order.
func (r Result) Checked() []string {
	var labels []string
	for k, v := range r.Values {
		if b, ok := v.(bool); ok && b {
			labels = append(labels, k)
		}
	}
	sort.Strings(labels)
	return labels
}
