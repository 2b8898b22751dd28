// Package logging carries walkthrough run metadata through contexts and onto
// zerolog events.
package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	runIDKey contextKey = iota
	stepKey
	processKey
)

// WithRunID tags ctx with the identifier shared by the walkthrough and its
// install worker.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithStep tags ctx with the walkthrough step running on it.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// WithProcess tags ctx with the role of this process, "main" or "worker".
// Both processes may append to one log file.
func WithProcess(ctx context.Context, process string) context.Context {
	return context.WithValue(ctx, processKey, process)
}

// RunID returns the run identifier, or "" when unset.
func RunID(ctx context.Context) string { return stringValue(ctx, runIDKey) }

// Step returns the step name, or "" when unset.
func Step(ctx context.Context) string { return stringValue(ctx, stepKey) }

// Process returns the process role, or "" when unset.
func Process(ctx context.Context) string { return stringValue(ctx, processKey) }

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextHook copies run metadata from the event's context onto the event.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	for _, f := range []struct {
		key   string
		value string
	}{
		{"run_id", RunID(ctx)},
		{"step", Step(ctx)},
		{"process", Process(ctx)},
	} {
		if f.value != "" {
			e.Str(f.key, f.value)
		}
	}
}
