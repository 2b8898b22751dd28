package walkthrough

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/colonyops/walkthrough/internal/core/coop"
	"github.com/colonyops/walkthrough/internal/core/logging"
)

// RemoveStaleCommandFiles deletes command files left by an earlier run so
// new dialogs do not replay old commands.
func (a *App) RemoveStaleCommandFiles(ctx context.Context) error {
	log := logging.Component("walkthrough")

	for _, path := range []string{a.Config.Dialog.CommandFile, a.Config.Dialog.ProgressCommandFile} {
		err := os.Remove(path)
		switch {
		case err == nil:
			log.Info().Ctx(ctx).Str("path", path).Msg("removed prior command file")
		case errors.Is(err, os.ErrNotExist):
		default:
			return fmt.Errorf("remove command file %s: %w", path, err)
		}
	}
	return nil
}

// Run runs the walkthrough. The four steps start in order on a cooperative
// scheduler. Once the role and app selection step returns, its work items
// go to installer, and Run waits for the installer and then for the
// remaining steps.
func (a *App) Run(ctx context.Context, demo bool, installer ItemInstaller) error {
	log := logging.Component("walkthrough")
	steps := a.Steps(demo)
	sched := coop.NewScheduler(logging.Component("coop"))

	sched.Go(ctx, "welcome", steps.Welcome)
	selection := coop.Spawn(sched, ctx, "role-app-selection", steps.RoleApps)
	sched.Go(ctx, "device-update", steps.DeviceUpdate)
	sched.Go(ctx, "device-registration", steps.DeviceRegistration)

	items, err := selection.Await(ctx)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("application selection failed")
	}

	if err := installer.InstallAll(ctx, items, demo); err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("install failed")
	}

	sched.Wait()
	return ctx.Err()
}
