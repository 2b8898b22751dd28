package walkthrough

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/colonyops/walkthrough/internal/core/catalog"
	"github.com/colonyops/walkthrough/pkg/executil"
	"github.com/rs/zerolog"
)

// WorkerCommand is the hidden subcommand that runs an install worker.
const WorkerCommand = "install-worker"

// WorkerPayload is written to the worker's stdin.
type WorkerPayload struct {
	Demo  bool               `json:"demo"`
	Items []catalog.WorkItem `json:"items"`
}

// ProcessInstaller runs the installer in a child process so installs keep
// going independently of the prompts. The child is this binary re-executed
// with the worker subcommand.
type ProcessInstaller struct {
	log        zerolog.Logger
	exec       executil.Executor
	executable string
	args       []string
	stdout     io.Writer
	stderr     io.Writer
}

// NewProcessInstaller creates a ProcessInstaller. args are the global flags
// placed before the worker subcommand.
func NewProcessInstaller(log zerolog.Logger, exec executil.Executor, executable string, args []string, stdout, stderr io.Writer) *ProcessInstaller {
	return &ProcessInstaller{
		log:        log,
		exec:       exec,
		executable: executable,
		args:       args,
		stdout:     stdout,
		stderr:     stderr,
	}
}

// InstallAll hands items to a worker process and waits for it to exit.
// Nothing is started for an empty list.
func (p *ProcessInstaller) InstallAll(ctx context.Context, items []catalog.WorkItem, demo bool) error {
	if len(items) == 0 {
		p.log.Debug().Ctx(ctx).Msg("no applications selected, skipping install worker")
		return nil
	}

	payload, err := json.Marshal(WorkerPayload{Demo: demo, Items: items})
	if err != nil {
		return fmt.Errorf("encode worker payload: %w", err)
	}

	args := append(append([]string{}, p.args...), WorkerCommand)
	p.log.Debug().Ctx(ctx).Str("executable", p.executable).Strs("args", args).Int("items", len(items)).Msg("starting install worker")

	if err := p.exec.RunStream(ctx, bytes.NewReader(payload), p.stdout, p.stderr, p.executable, args...); err != nil {
		return fmt.Errorf("install worker: %w", err)
	}
	return nil
}
