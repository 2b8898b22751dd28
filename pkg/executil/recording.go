package executil

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd   string
	Args  []string
	Stdin []byte
	Async bool // started with Start
}

// ExitError is a fake process exit carrying a status code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode reports the fake exit status.
func (e *ExitError) ExitCode() int { return e.Code }

// RecordingExecutor captures commands for testing.
// Configure Outputs, Lines and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	// Key is the command name (e.g., "/usr/local/bin/dialog").
	Outputs map[string][]byte

	// Lines maps command names to lines emitted by RunLines.
	Lines map[string][]string

	// Errors maps command names to their error.
	Errors map[string]error
}

// Output records the command and returns configured output/error.
func (e *RecordingExecutor) Output(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(RecordedCommand{Cmd: cmd, Args: args})
}

// RunLines records the command, replays configured lines and returns the configured error.
func (e *RecordingExecutor) RunLines(ctx context.Context, onLine func(string), cmd string, args ...string) error {
	_, err := e.record(RecordedCommand{Cmd: cmd, Args: args})

	e.mu.Lock()
	lines := e.Lines[cmd]
	e.mu.Unlock()

	if onLine != nil {
		for _, l := range lines {
			onLine(l)
		}
	}
	return err
}

// RunStream records the command along with everything read from stdin.
func (e *RecordingExecutor) RunStream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error {
	rc := RecordedCommand{Cmd: cmd, Args: args}
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		rc.Stdin = data
	}

	out, err := e.record(rc)
	if stdout != nil && len(out) > 0 {
		_, _ = stdout.Write(out)
	}
	return err
}

// Start records the command and returns an already exited process.
func (e *RecordingExecutor) Start(ctx context.Context, cmd string, args ...string) (*Process, error) {
	_, err := e.record(RecordedCommand{Cmd: cmd, Args: args, Async: true})
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	close(done)
	return &Process{done: done}, nil
}

func (e *RecordingExecutor) record(rc RecordedCommand) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, rc)

	var out []byte
	var err error

	if e.Outputs != nil {
		out = e.Outputs[rc.Cmd]
	}
	if e.Errors != nil {
		err = e.Errors[rc.Cmd]
	}

	return out, err
}

// Recorded returns a snapshot of the recorded commands.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordedCommand, len(e.Commands))
	copy(out, e.Commands)
	return out
}
