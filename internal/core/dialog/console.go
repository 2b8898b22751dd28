package dialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/colonyops/walkthrough/internal/core/styles"
	"github.com/rs/zerolog"
)

// Console presents prompts in the terminal. Answers use the same shape as
// swiftDialog output so callers do not care which presenter is active.
type Console struct {
	log zerolog.Logger
	out io.Writer

	// run executes a form. Tests replace it to avoid a terminal.
	run func(ctx context.Context, form *huh.Form) error
}

// consoleWrap is the word wrap width of rendered prompt copy.
const consoleWrap = 72

// NewConsole creates a terminal presenter writing to out.
func NewConsole(log zerolog.Logger, out io.Writer) *Console {
	return &Console{
		log: log,
		out: out,
		run: func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) },
	}
}

// Present shows the prompt as a huh form.
func (c *Console) Present(ctx context.Context, opts Options) Result {
	if opts.NonBlocking {
		c.render(opts)
		return Result{Values: map[string]any{"shown": true}}
	}

	if opts.Timer > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timer)
		defer cancel()
	}

	var (
		field   huh.Field
		collect func() map[string]any
	)

	title := opts.Title
	desc := c.markdown(NormalizeMessage(opts.Message))

	switch {
	case len(opts.SelectItems) > 0:
		item := opts.SelectItems[0]
		selected := item.Default
		field = huh.NewSelect[string]().
			Title(title).
			Description(desc).
			Options(huh.NewOptions(item.Values...)...).
			Value(&selected)
		collect = func() map[string]any {
			return map[string]any{"SelectedOption": selected}
		}
	case len(opts.Checkboxes) > 0:
		var selected []string
		options := make([]huh.Option[string], 0, len(opts.Checkboxes))
		for _, cb := range opts.Checkboxes {
			options = append(options, huh.NewOption(cb.Label, cb.Label).Selected(cb.Checked))
			if cb.Checked {
				selected = append(selected, cb.Label)
			}
		}
		field = huh.NewMultiSelect[string]().
			Title(title).
			Description(desc).
			Options(options...).
			Value(&selected)
		collect = func() map[string]any {
			return checkboxValues(opts.Checkboxes, selected)
		}
	default:
		button := opts.Button1Text
		if button == "" {
			button = "OK"
		}
		field = huh.NewNote().
			Title(title).
			Description(desc).
			Next(true).
			NextLabel(button)
		collect = func() map[string]any {
			return map[string]any{"button": button}
		}
	}

	form := huh.NewForm(huh.NewGroup(field)).WithTheme(styles.FormTheme())
	err := c.run(ctx, form)

	switch {
	case opts.Timer > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded):
		c.log.Debug().Ctx(ctx).Str("title", title).Msg("console prompt timer ran out")
		return Result{TimedOut: true}
	case err != nil:
		c.log.Warn().Ctx(ctx).Err(err).Str("title", title).Msg("console prompt failed")
		return Result{}
	}

	return Result{Values: collect()}
}

// checkboxValues maps every label to its selection state. Disabled boxes keep
// their initial state whatever the user did.
func checkboxValues(boxes []Checkbox, selected []string) map[string]any {
	picked := make(map[string]bool, len(selected))
	for _, s := range selected {
		picked[s] = true
	}

	values := make(map[string]any, len(boxes))
	for _, cb := range boxes {
		if cb.Disabled {
			values[cb.Label] = cb.Checked
			continue
		}
		values[cb.Label] = picked[cb.Label]
	}
	return values
}

func (c *Console) render(opts Options) {
	var b strings.Builder

	b.WriteString(styles.TextPrimaryBoldStyle.Render(opts.Title))
	if msg := NormalizeMessage(opts.Message); msg != "" {
		b.WriteString("\n\n")
		b.WriteString(c.markdown(msg))
	}
	if len(opts.ListItems) > 0 {
		b.WriteString("\n")
		for _, item := range opts.ListItems {
			fmt.Fprintf(&b, "\n%s %s %s", styles.StatusIcon(item.Status), item.Title, styles.TextMutedStyle.Render(item.StatusText))
		}
	}

	_, _ = fmt.Fprintln(c.out, styles.BoxStyle.Render(b.String()))
}

// markdown renders swiftDialog message markdown for the terminal. The raw
// text is returned when rendering fails.
func (c *Console) markdown(msg string) string {
	if msg == "" {
		return ""
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(consoleWrap),
	)
	if err != nil {
		c.log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw message")
		return msg
	}

	out, err := r.Render(msg)
	if err != nil {
		c.log.Debug().Err(err).Msg("failed to render markdown, showing raw message")
		return msg
	}
	return strings.TrimSpace(out)
}
