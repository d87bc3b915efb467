// Package apperr holds the error categories shared by every pipeline stage.
// Stages wrap one of the sentinels so callers can classify with errors.Is.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSource means the frame source could not be opened or read.
	ErrSource = errors.New("source error")
	// ErrMalformedFrame means a frame had a zero dimension or a buffer that
	// does not match width*height*3.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrConfig means invalid parameters were supplied before the run.
	ErrConfig = errors.New("configuration error")
	// ErrSink means the output target failed to accept or finalize frames.
	ErrSink = errors.New("sink error")
	// ErrDimensionMismatch is raised by the encode sink when a frame size
	// differs from the first frame. It is a configuration error.
	ErrDimensionMismatch = fmt.Errorf("%w: frame dimensions changed mid-stream", ErrConfig)
)

func Source(format string, args ...any) error {
	return wrap(ErrSource, format, args...)
}

func Malformed(format string, args ...any) error {
	return wrap(ErrMalformedFrame, format, args...)
}

func Config(format string, args ...any) error {
	return wrap(ErrConfig, format, args...)
}

func Sink(format string, args ...any) error {
	return wrap(ErrSink, format, args...)
}

// wrap keeps any %w in format working alongside the category.
func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{kind}, args...)...)
}

// Categorized reports whether err already carries one of the categories.
func Categorized(err error) bool {
	return errors.Is(err, ErrSource) ||
		errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrConfig) ||
		errors.Is(err, ErrSink)
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrSource):
		return 3
	case errors.Is(err, ErrMalformedFrame):
		return 4
	case errors.Is(err, ErrSink):
		return 5
	default:
		return 1
	}
}
