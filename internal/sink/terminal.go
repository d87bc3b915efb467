package sink

import (
	"io"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/render"
)

const (
	enterScreen = "\x1b[?1049h\x1b[?25l\x1b[?7l\x1b[2J"
	exitScreen  = "\x1b[0m\x1b[?7h\x1b[?25h\x1b[?1049l"
	cursorHome  = "\x1b[H"
	// synchronized output, ignored by terminals without support
	beginSync = "\x1b[?2026h"
	endSync   = "\x1b[?2026l"
)

// Terminal redraws every frame in place on an ANSI terminal. There is no
// backpressure: frames are written as fast as they arrive.
type Terminal struct {
	w       io.Writer
	color   bool
	started bool
	closed  bool
}

func NewTerminal(w io.Writer, color bool) *Terminal {
	return &Terminal{w: w, color: color}
}

func (t *Terminal) Write(out render.Output) error {
	if t.closed {
		return apperr.Sink("terminal already closed")
	}
	if !t.started {
		if _, err := io.WriteString(t.w, enterScreen); err != nil {
			return apperr.Sink("terminal: %w", err)
		}
		t.started = true
	}
	if _, err := io.WriteString(t.w, beginSync+cursorHome+t.payload(out)+endSync); err != nil {
		return apperr.Sink("terminal: %w", err)
	}
	return nil
}

// payload falls back to a text re-render of the grid for raster frames.
func (t *Terminal) payload(out render.Output) string {
	if t.color {
		return render.ANSI(out.Grid)
	}
	if out.Text != "" {
		return out.Text
	}
	return render.Text(out.Grid)
}

func (t *Terminal) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if !t.started {
		return nil
	}
	if _, err := io.WriteString(t.w, exitScreen); err != nil {
		return apperr.Sink("terminal: %w", err)
	}
	return nil
}

// Abort restores the terminal the same way Close does.
func (t *Terminal) Abort() error {
	return t.Close()
}
