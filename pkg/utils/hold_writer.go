// Package utils holds small io helpers shared by the commands.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// HoldWriter passes writes through to an underlying writer, except while
// held, when they are buffered in memory. Release writes the buffer out and
// resumes pass-through. Safe for concurrent use.
type HoldWriter struct {
	mu   sync.Mutex
	w    io.Writer
	buf  bytes.Buffer
	held bool
}

// NewHoldWriter returns a writer for w. It starts held when hold is true.
func NewHoldWriter(w io.Writer, hold bool) *HoldWriter {
	return &HoldWriter{w: w, held: hold}
}

func (h *HoldWriter) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.held {
		return h.buf.Write(p)
	}
	return h.w.Write(p)
}

// Release flushes anything written while held and stops holding.
func (h *HoldWriter) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.held = false
	if h.buf.Len() == 0 {
		return nil
	}
	_, err := h.buf.WriteTo(h.w)
	return err
}
