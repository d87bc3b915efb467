package sink

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/render"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

// FrameWriter is an open video stream of fixed size.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	Close() error
	Kill() error
}

// StartFunc opens a FrameWriter at path for frames of width x height.
type StartFunc func(path string, width, height int) (FrameWriter, error)

// Encoder appends raster frames to a video. The first frame fixes the
// stream size. Frames go to a hidden partial file that is renamed to the
// destination only on Close.
type Encoder struct {
	dest    string
	partial string
	start   StartFunc
	w       FrameWriter
	width   int
	height  int
	frames  int
	done    bool
}

func NewEncoder(dest string, start StartFunc) *Encoder {
	return &Encoder{dest: dest, partial: partialPath(dest), start: start}
}

// partialPath keeps the extension so the muxer can still infer the format.
func partialPath(dest string) string {
	dir, base := filepath.Split(dest)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.partial-%s%s", name, uuid.NewString(), ext))
}

func (e *Encoder) Write(out render.Output) error {
	if e.done {
		return apperr.Sink("encoder already closed")
	}
	if out.Image == nil {
		return apperr.Config("encode sink needs raster frames")
	}
	b := out.Image.Bounds()
	if e.w == nil {
		w, err := e.start(e.partial, b.Dx(), b.Dy())
		if err != nil {
			if apperr.Categorized(err) {
				return err
			}
			return apperr.Sink("start encoder: %w", err)
		}
		e.w, e.width, e.height = w, b.Dx(), b.Dy()
		logger.Log.WithField("scope", "encode sink").Debugf("stream fixed at %dx%d", e.width, e.height)
	}
	if b.Dx() != e.width || b.Dy() != e.height {
		return fmt.Errorf("%w: stream is %dx%d, frame %d is %dx%d",
			apperr.ErrDimensionMismatch, e.width, e.height, out.Index, b.Dx(), b.Dy())
	}
	if err := e.w.WriteFrame(out.Image); err != nil {
		if apperr.Categorized(err) {
			return err
		}
		return apperr.Sink("write frame %d: %w", out.Index, err)
	}
	e.frames++
	return nil
}

// Frames is the number of frames appended so far.
func (e *Encoder) Frames() int { return e.frames }

// Close finishes the container and moves it to the destination.
func (e *Encoder) Close() error {
	if e.done {
		return nil
	}
	e.done = true
	if e.w == nil {
		return apperr.Sink("no frames were written to %s", e.dest)
	}
	if err := e.w.Close(); err != nil {
		_ = removeIfExists(e.partial)
		if apperr.Categorized(err) {
			return err
		}
		return apperr.Sink("finish %s: %w", e.dest, err)
	}
	if err := os.Rename(e.partial, e.dest); err != nil {
		_ = removeIfExists(e.partial)
		return apperr.Sink("move %s into place: %w", e.dest, err)
	}
	logger.Log.WithField("scope", "encode sink").Debugf("wrote %d frames to %s", e.frames, e.dest)
	return nil
}

// Abort stops the encoder and deletes the partial file.
func (e *Encoder) Abort() error {
	if e.done {
		return nil
	}
	e.done = true
	var err error
	if e.w != nil {
		err = e.w.Kill()
	}
	if rerr := removeIfExists(e.partial); rerr != nil {
		err = errors.Join(err, rerr)
	}
	if err != nil {
		return apperr.Sink("abort %s: %w", e.dest, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
