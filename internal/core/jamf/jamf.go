// Package jamf runs Jamf policies through the jamf binary.
package jamf

import (
	"context"
	"fmt"

	"github.com/colonyops/walkthrough/internal/core/validate"
	"github.com/colonyops/walkthrough/pkg/executil"
	"github.com/rs/zerolog"
)

// Runner triggers Jamf policies by custom event.
type Runner struct {
	log    zerolog.Logger
	exec   executil.Executor
	binary string
}

// NewRunner creates a runner invoking binary.
func NewRunner(log zerolog.Logger, exec executil.Executor, binary string) *Runner {
	return &Runner{log: log, exec: exec, binary: binary}
}

// RunPolicy runs `jamf policy -event <trigger>` and waits for it. Output is
// logged line by line while the policy runs. A non-zero exit is an error.
func (r *Runner) RunPolicy(ctx context.Context, trigger string) error {
	if err := validate.Trigger(trigger); err != nil {
		return fmt.Errorf("run policy: %w", err)
	}

	log := r.log.With().Str("trigger", trigger).Logger()
	log.Debug().Ctx(ctx).Msg("running jamf policy")

	err := r.exec.RunLines(ctx, func(line string) {
		if line != "" {
			log.Debug().Ctx(ctx).Msg(line)
		}
	}, r.binary, "policy", "-event", trigger)
	if err != nil {
		log.Debug().Ctx(ctx).Int("code", executil.ExitCode(err)).Msg("unable to run jamf policy")
		return fmt.Errorf("run policy %s: %w", trigger, err)
	}

	log.Debug().Ctx(ctx).Msg("successfully ran jamf policy")
	return nil
}
