package executil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: -1},
		{name: "fake exit", err: &ExitError{Code: 4}, want: 4},
		{name: "wrapped fake exit", err: fmt.Errorf("exec dialog: %w", &ExitError{Code: 2}), want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRealExecutor_Output_StderrCappedAtMaxLen(t *testing.T) {
	ctx := context.Background()

	// Write twice the cap to stderr; only the first maxStderrLen bytes should appear in the error.
	longStderr := strings.Repeat("A", maxStderrLen*2)
	script := fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", longStderr)

	_, err := (&RealExecutor{}).Output(ctx, "sh", "-c", script)
	require.Error(t, err)

	errMsg := err.Error()
	assert.LessOrEqual(t, len(errMsg), maxStderrLen+40, "error message should be capped")
	assert.Contains(t, errMsg, strings.Repeat("A", maxStderrLen))
}

func TestRealExecutor_Output(t *testing.T) {
	e := &RealExecutor{}
	ctx := context.Background()

	t.Run("stdout only", func(t *testing.T) {
		out, err := e.Output(ctx, "sh", "-c", "echo out; echo err >&2")
		require.NoError(t, err)
		assert.Equal(t, "out\n", string(out))
	})

	t.Run("preserves exit status", func(t *testing.T) {
		out, err := e.Output(ctx, "sh", "-c", "echo '{}'; exit 4")
		require.Error(t, err)
		assert.Equal(t, 4, ExitCode(err))
		assert.Equal(t, "{}\n", string(out))

		var exitErr *exec.ExitError
		assert.ErrorAs(t, err, &exitErr, "original ExitError should be preserved via wrapping")
	})
}

func TestRealExecutor_RunLines(t *testing.T) {
	e := &RealExecutor{}
	ctx := context.Background()

	var lines []string
	err := e.RunLines(ctx, func(l string) { lines = append(lines, l) }, "sh", "-c", "echo one; echo '  two  '")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)

	err = e.RunLines(ctx, nil, "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
}

func TestRealExecutor_RunLines_LongLines(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One line longer than bufio.Scanner's default token size, followed by
	// enough output to fill the pipe if nobody reads it.
	script := "head -c 70000 /dev/zero | tr '\\0' A; echo; " +
		"head -c 300000 /dev/zero | tr '\\0' B; echo; echo done"

	var lines []string
	err := (&RealExecutor{}).RunLines(ctx, func(l string) { lines = append(lines, l) }, "sh", "-c", script)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "command should finish well before the deadline")

	require.Len(t, lines, 3)
	assert.Len(t, lines[0], 70000)
	assert.Len(t, lines[1], 300000)
	assert.Equal(t, "done", lines[2])
}

func TestRealExecutor_RunLines_NoTrailingNewline(t *testing.T) {
	var lines []string
	err := (&RealExecutor{}).RunLines(context.Background(), func(l string) { lines = append(lines, l) }, "printf", "a\\nb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestRealExecutor_RunLines_NotFound(t *testing.T) {
	err := (&RealExecutor{}).RunLines(context.Background(), nil, "nonexistent-command-12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec nonexistent-command-12345")
}

func TestRealExecutor_RunStream(t *testing.T) {
	var stdout bytes.Buffer
	err := (&RealExecutor{}).RunStream(context.Background(), strings.NewReader("payload"), &stdout, nil, "cat")
	require.NoError(t, err)
	assert.Equal(t, "payload", stdout.String())
}

func TestRealExecutor_Start(t *testing.T) {
	p, err := (&RealExecutor{}).Start(context.Background(), "sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Positive(t, p.Pid)
	assert.NoError(t, p.Wait())

	_, err = (&RealExecutor{}).Start(context.Background(), "nonexistent-command-12345")
	require.Error(t, err)
}

func TestRecordingExecutor(t *testing.T) {
	t.Run("records commands", func(t *testing.T) {
		e := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = e.Start(ctx, "open", "jamfselfservice://content")
		_, _ = e.Output(ctx, "dialog", "--jsonstring", "{}")

		require.Len(t, e.Commands, 2)
		assert.Equal(t, "open", e.Commands[0].Cmd)
		assert.Equal(t, []string{"jamfselfservice://content"}, e.Commands[0].Args)
		assert.Equal(t, "dialog", e.Commands[1].Cmd)
	})

	t.Run("returns configured output", func(t *testing.T) {
		e := &RecordingExecutor{
			Outputs: map[string][]byte{"dialog": []byte(`{"a":true}`)},
		}

		out, err := e.Output(context.Background(), "dialog")
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":true}`, string(out))
	})

	t.Run("returns configured error", func(t *testing.T) {
		expectedErr := errors.New("command failed")
		e := &RecordingExecutor{
			Errors: map[string]error{"jamf": expectedErr},
		}

		err := e.RunLines(context.Background(), nil, "jamf", "policy")
		assert.Equal(t, expectedErr, err)
	})

	t.Run("replays lines", func(t *testing.T) {
		e := &RecordingExecutor{
			Lines: map[string][]string{"jamf": {"Checking for policies triggered by \"install-Figma\"...", "Done."}},
		}

		var got []string
		err := e.RunLines(context.Background(), func(l string) { got = append(got, l) }, "jamf")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("captures stdin and async starts", func(t *testing.T) {
		e := &RecordingExecutor{}
		ctx := context.Background()

		require.NoError(t, e.RunStream(ctx, strings.NewReader("items"), nil, nil, "self", "install-worker"))
		p, err := e.Start(ctx, "dialog")
		require.NoError(t, err)
		require.NoError(t, p.Wait())

		rec := e.Recorded()
		require.Len(t, rec, 2)
		assert.Equal(t, []byte("items"), rec[0].Stdin)
		assert.True(t, rec[1].Async)
	})
}
