package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/walkthrough/internal/core/logging"
	"github.com/colonyops/walkthrough/internal/walkthrough"
	"github.com/colonyops/walkthrough/pkg/utils"
)

// Jamf passes these positionals to every policy script.
var jamfArgs = []string{"mountpoint", "computer_name", "user_shortname"}

type RunCmd struct {
	flags *Flags

	demo bool

	// executable resolves the binary re-executed as the install worker
	executable func() (string, error)
}

// NewRunCmd creates the walkthrough command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags, executable: os.Executable}
}

// Flags returns the walkthrough flags for registration on the root command
func (cmd *RunCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "demo",
			Usage:       "show every prompt but never run Jamf policies or open URLs",
			Sources:     cli.EnvVars("WALKTHROUGH_DEMO"),
			Destination: &cmd.demo,
		},
		&cli.BoolFlag{
			Name:        "console",
			Usage:       "show prompts in the terminal instead of swiftDialog",
			Sources:     cli.EnvVars("WALKTHROUGH_CONSOLE"),
			Destination: &cmd.flags.Console,
		},
	}
}

// Run executes the walkthrough. Exported for use as default command.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	start := time.Now()
	log := logging.Component("run")

	ev := log.Info().Ctx(ctx).Bool("demo", cmd.demo).Bool("console", cmd.flags.Console)
	args := c.Args().Slice()
	for i, name := range jamfArgs {
		if i < len(args) {
			ev = ev.Str(name, args[i])
		}
	}
	if len(args) > len(jamfArgs) {
		ev = ev.Strs("unknown", args[len(jamfArgs):])
	}
	ev.Msg("starting walkthrough")

	app := cmd.flags.App
	if err := app.RemoveStaleCommandFiles(ctx); err != nil {
		return err
	}

	self, err := cmd.executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	// Console prompts own the terminal, so worker output waits until they are done.
	stdout := utils.NewHoldWriter(os.Stdout, cmd.flags.Console)
	stderr := utils.NewHoldWriter(os.Stderr, cmd.flags.Console)

	installer := walkthrough.NewProcessInstaller(
		logging.Component("worker"),
		app.Exec,
		self,
		cmd.flags.WorkerArgs(),
		stdout,
		stderr,
	)

	runErr := app.Run(ctx, cmd.demo, installer)
	_ = stdout.Release()
	_ = stderr.Release()
	if runErr != nil {
		return runErr
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Total time elapsed: %v seconds\n", time.Since(start).Seconds())
	return nil
}
