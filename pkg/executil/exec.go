// Package executil provides process execution utilities.
package executil

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const maxStderrLen = 500

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// ExitCode returns the exit status carried by err. A nil error is 0, an error
// that does not carry an exit status is -1. Any error in the chain that
// implements ExitCode() int is honored, which includes *exec.ExitError.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

// Executor runs external programs.
type Executor interface {
	// Output executes a command and returns stdout only. Stderr is folded
	// into the returned error on failure.
	Output(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunLines executes a command and calls onLine for every line written to
	// stdout while the process is alive.
	RunLines(ctx context.Context, onLine func(string), cmd string, args ...string) error
	// RunStream executes a command wired to the provided reader and writers.
	RunStream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error
	// Start spawns a command and returns without waiting for it.
	Start(ctx context.Context, cmd string, args ...string) (*Process, error)
}

// RealExecutor calls actual programs.
type RealExecutor struct{}

// Output executes a command and returns its stdout. On failure, stderr is
// included in the error message, capped at 500 bytes. The original
// *exec.ExitError is preserved via wrapping so callers can use ExitCode.
func (e *RealExecutor) Output(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &limitedWriter{buf: &stderr, max: maxStderrLen}
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return stdout.Bytes(), fmt.Errorf("exec %s: %w", cmd, err)
	}
	return stdout.Bytes(), nil
}

// RunLines executes a command and feeds each stdout line to onLine until the
// process closes its output, then waits for it to exit. Lines have no length
// limit and stdout is drained to the end, so the child never blocks on a
// full pipe.
func (e *RealExecutor) RunLines(ctx context.Context, onLine func(string), cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return fmt.Errorf("exec %s: stdout pipe: %w", cmd, err)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}

	readErr := readLines(stdout, onLine)
	if readErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := c.Wait(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	if readErr != nil {
		return fmt.Errorf("exec %s: read stdout: %w", cmd, readErr)
	}
	return nil
}

func readLines(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" && onLine != nil {
			onLine(strings.TrimSpace(line))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// RunStream executes a command wired to the provided reader and writers.
func (e *RealExecutor) RunStream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}

// Start spawns a command detached from ctx so that it outlives the caller.
// The child is reaped in the background.
func (e *RealExecutor) Start(_ context.Context, cmd string, args ...string) (*Process, error) {
	c := exec.Command(cmd, args...)
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cmd, err)
	}

	p := &Process{Pid: c.Process.Pid, done: make(chan struct{})}
	go func() {
		p.err = c.Wait()
		close(p.done)
	}()
	return p, nil
}

// Process is a handle to a command started without waiting.
type Process struct {
	Pid int

	done chan struct{}
	err  error
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	if p.done == nil {
		return nil
	}
	<-p.done
	return p.err
}
