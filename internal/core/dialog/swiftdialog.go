package dialog

import (
	"context"
	"encoding/json"

	"github.com/colonyops/walkthrough/pkg/executil"
	"github.com/colonyops/walkthrough/pkg/tmpl"
	"github.com/rs/zerolog"
)

// SwiftDialog presents prompts with the swiftDialog binary.
type SwiftDialog struct {
	log           zerolog.Logger
	exec          executil.Executor
	icons         IconSource
	binary        string
	commandFile   string
	timerExitCode int
}

// SwiftDialogConfig holds the settings of a SwiftDialog presenter.
type SwiftDialogConfig struct {
	Binary        string
	CommandFile   string // used when Options.CommandFile is empty
	TimerExitCode int
}

// NewSwiftDialog creates a presenter. icons may be nil, in which case prompts
// without an icon are shown with swiftDialog's default.
func NewSwiftDialog(log zerolog.Logger, exec executil.Executor, icons IconSource, cfg SwiftDialogConfig) *SwiftDialog {
	return &SwiftDialog{
		log:           log,
		exec:          exec,
		icons:         icons,
		binary:        cfg.Binary,
		commandFile:   cfg.CommandFile,
		timerExitCode: cfg.TimerExitCode,
	}
}

// Present shows the prompt. Blocking prompts wait for the dialog to exit and
// decode its JSON answer. Non-blocking prompts return as soon as the dialog
// process has started.
func (d *SwiftDialog) Present(ctx context.Context, opts Options) Result {
	if opts.Icon == "" && d.icons != nil {
		opts.Icon = d.icons.Icon(ctx)
	}
	if opts.CommandFile == "" {
		opts.CommandFile = d.commandFile
	}

	doc, err := json.Marshal(opts)
	if err != nil {
		d.log.Warn().Ctx(ctx).Err(err).Str("title", opts.Title).Msg("encode dialog options")
		return Result{}
	}

	args := []string{"--jsonstring", string(doc)}
	d.log.Debug().Ctx(ctx).Str("cmd", tmpl.CommandLine(d.binary, args...)).Msg("dialog prompt")

	if opts.NonBlocking {
		p, err := d.exec.Start(ctx, d.binary, args...)
		if err != nil {
			d.log.Warn().Ctx(ctx).Err(err).Str("title", opts.Title).Msg("start dialog")
			return Result{}
		}
		d.log.Debug().Ctx(ctx).Int("pid", p.Pid).Msg("dialog started")
		return Result{Process: p}
	}

	out, err := d.exec.Output(ctx, d.binary, args...)
	switch code := executil.ExitCode(err); {
	case err == nil:
		var values map[string]any
		if len(out) > 0 {
			if err := json.Unmarshal(out, &values); err != nil {
				d.log.Warn().Ctx(ctx).Err(err).Str("title", opts.Title).Msg("decode dialog output")
				return Result{}
			}
		}
		d.log.Debug().Ctx(ctx).Interface("values", values).Msg("dialog result")
		return Result{Values: values}
	case code == d.timerExitCode:
		d.log.Debug().Ctx(ctx).Int("code", code).Msg("dialog timer ran out")
		return Result{TimedOut: true}
	default:
		d.log.Warn().Ctx(ctx).Err(err).Int("code", code).Str("title", opts.Title).Msg("dialog failed")
		return Result{}
	}
}
