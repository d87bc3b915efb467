// Package core drives frames from a source through adjustment, resizing
// and rendering into a sink, one frame at a time.
package core

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/1F47E/go-asciireel/internal/adjust"
	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
	"github.com/1F47E/go-asciireel/internal/render"
	"github.com/1F47E/go-asciireel/internal/resize"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

// Source yields decoded frames in decode order and io.EOF when exhausted.
type Source interface {
	NextFrame() (frame.Frame, error)
	Close() error
}

type Options struct {
	Adjust   adjust.Params
	Resizer  resize.Resizer
	Renderer *render.Renderer
	// Limit stops after this many frames, 0 means no limit.
	Limit int
	// Pace is the minimum time between frames, 0 disables pacing.
	Pace time.Duration
	// OnFrame runs after frame i reached the sink.
	OnFrame func(i int)
}

type Core struct {
	opts  Options
	log   *logrus.Entry
	sleep func(time.Duration)
	now   func() time.Time
}

type Stats struct {
	Frames  int
	Columns int
	Rows    int
	Elapsed time.Duration
}

func New(opts Options) (*Core, error) {
	if err := opts.Adjust.Validate(); err != nil {
		return nil, err
	}
	if opts.Renderer == nil {
		return nil, apperr.Config("no renderer")
	}
	if opts.Resizer.Columns <= 0 {
		return nil, apperr.Config("columns must be > 0, got %d", opts.Resizer.Columns)
	}
	if opts.Resizer.Aspect <= 0 {
		return nil, apperr.Config("aspect correction must be > 0, got %v", opts.Resizer.Aspect)
	}
	if opts.Limit < 0 {
		return nil, apperr.Config("limit must be >= 0, got %d", opts.Limit)
	}
	return &Core{
		opts:  opts,
		log:   logger.Log.WithField("scope", "core"),
		sleep: time.Sleep,
		now:   time.Now,
	}, nil
}
