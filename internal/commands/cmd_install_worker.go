package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/walkthrough/internal/core/logging"
	"github.com/colonyops/walkthrough/internal/walkthrough"
	"github.com/colonyops/walkthrough/pkg/iojson"
)

// InstallWorkerCmd installs a batch of work items handed over by the
// walkthrough process.
type InstallWorkerCmd struct {
	flags   *Flags
	payload iojson.FileReader[walkthrough.WorkerPayload]
}

func NewInstallWorkerCmd(flags *Flags) *InstallWorkerCmd {
	return &InstallWorkerCmd{flags: flags}
}

func (cmd *InstallWorkerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        walkthrough.WorkerCommand,
		Usage:       "Install applications from a JSON payload",
		UsageText:   "walkthrough install-worker [-f payload.json]",
		Description: "Runs the Jamf policy of every work item and reports progress to the progress window.",
		Hidden:      true,
		Flags:       []cli.Flag{cmd.payload.Flag()},
		Action:      cmd.run,
	})
	return app
}

func (cmd *InstallWorkerCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx = logging.WithProcess(ctx, "worker")

	payload, err := cmd.payload.Read()
	if err != nil {
		return fmt.Errorf("read worker payload: %w", err)
	}

	log := logging.Component("worker")
	log.Info().Ctx(ctx).
		Int("items", len(payload.Items)).
		Bool("demo", payload.Demo).
		Msg("install worker started")

	return cmd.flags.App.Installer().InstallAll(ctx, payload.Items, payload.Demo)
}
