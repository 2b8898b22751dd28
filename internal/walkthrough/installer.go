package walkthrough

import (
	"context"
	"time"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/colonyops/walkthrough/internal/core/dialog"
	"github.com/rs/zerolog"
)

// ItemInstaller installs a list of work items.
type ItemInstaller interface {
	InstallAll(ctx context.Context, items []catalog.WorkItem, demo bool) error
}

// PolicyRunner runs the install policy behind a trigger.
type PolicyRunner interface {
	RunPolicy(ctx context.Context, trigger string) error
}

// CommandWriter appends commands to a dialog command file.
type CommandWriter interface {
	Append(ctx context.Context, command string) error
}

// Installer installs work items one at a time and reports progress to the
// progress window through its command file.
type Installer struct {
	log        zerolog.Logger
	channel    CommandWriter
	runner     PolicyRunner
	startDelay time.Duration
	demoDelay  time.Duration
}

// NewInstaller creates an installer. startDelay gives the progress window
// time to open before the first update.
func NewInstaller(log zerolog.Logger, channel CommandWriter, runner PolicyRunner, startDelay, demoDelay time.Duration) *Installer {
	return &Installer{
		log:        log,
		channel:    channel,
		runner:     runner,
		startDelay: startDelay,
		demoDelay:  demoDelay,
	}
}

// InstallAll installs items in order and closes the progress window when
// done. In demo mode no policy runs and every item is marked as a demo
// success. A failed policy marks its row failed and the next item starts.
// The only error returned is a cancelled ctx.
func (i *Installer) InstallAll(ctx context.Context, items []catalog.WorkItem, demo bool) error {
	if len(items) == 0 {
		i.log.Debug().Ctx(ctx).Msg("no applications selected, nothing to install")
		return nil
	}

	if err := sleep(ctx, i.startDelay); err != nil {
		return err
	}

	for _, item := range items {
		log := i.log.With().Int("index", item.Index).Str("trigger", item.Trigger).Logger()

		i.send(ctx, dialog.ListItemCommand(item.Index, dialog.StatusWait, "Installing"))

		switch {
		case demo:
			log.Info().Ctx(ctx).Msg("demo mode is enabled, marking policy successful")
			if err := sleep(ctx, i.demoDelay); err != nil {
				return err
			}
			i.send(ctx, dialog.ListItemCommand(item.Index, dialog.StatusSuccess, "Demo"))
		default:
			if err := i.runner.RunPolicy(ctx, item.Trigger); err != nil {
				log.Warn().Ctx(ctx).Err(err).Msg("policy failed")
				i.send(ctx, dialog.ListItemCommand(item.Index, dialog.StatusFail, "Failed"))
			} else {
				log.Info().Ctx(ctx).Msg("policy successful")
				i.send(ctx, dialog.ListItemCommand(item.Index, dialog.StatusSuccess, "Installed"))
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	i.send(ctx, dialog.QuitCommand)
	return nil
}

// send writes a command. Write failures are logged and never stop an install.
func (i *Installer) send(ctx context.Context, command string) {
	if err := i.channel.Append(ctx, command); err != nil {
		i.log.Warn().Ctx(ctx).Err(err).Str("command", command).Msg("failed to update progress window")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
