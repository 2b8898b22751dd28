package dialog

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Status values understood by swiftDialog list items.
const (
	StatusPending = "pending"
	StatusWait    = "wait"
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// QuitCommand closes the dialog watching the command file.
const QuitCommand = "quit:"

// ListItemCommand updates row index of a running list dialog.
func ListItemCommand(index int, status, text string) string {
	return fmt.Sprintf("listitem: index: %d, status: %s, statustext: %s", index, status, text)
}

// Channel appends commands to a swiftDialog command file. swiftDialog only
// notices writes that arrive some time apart, so every append waits Delay
// first.
type Channel struct {
	Path  string
	Delay time.Duration
}

// NewChannel returns a channel writing to path.
func NewChannel(path string, delay time.Duration) *Channel {
	return &Channel{Path: path, Delay: delay}
}

// Append waits for the channel delay and appends command on a new line.
func (c *Channel) Append(ctx context.Context, command string) error {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	f, err := os.OpenFile(c.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open command file: %w", err)
	}

	if _, err := f.WriteString("\n" + command); err != nil {
		_ = f.Close()
		return fmt.Errorf("write command file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close command file: %w", err)
	}
	return nil
}
