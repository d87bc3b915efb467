package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/1F47E/go-asciireel/internal/adjust"
	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
	"github.com/1F47E/go-asciireel/internal/render"
	"github.com/1F47E/go-asciireel/internal/sink"
	"github.com/1F47E/go-asciireel/pkg/config"
)

// Process runs one frame through adjust -> resize -> render.
func (c *Core) Process(f frame.Frame) (render.Output, error) {
	if err := f.Validate(); err != nil {
		return render.Output{}, err
	}
	small, err := c.opts.Resizer.Resize(adjust.Apply(f, c.opts.Adjust))
	if err != nil {
		return render.Output{}, err
	}
	return c.opts.Renderer.Render(small)
}

// Run pulls frames until the source is exhausted, the limit is reached,
// or ctx is cancelled. Run owns src and snk: the source is always closed,
// the sink is committed on success or cancellation and aborted on error.
func (c *Core) Run(ctx context.Context, src Source, snk sink.Sink) (stats Stats, err error) {
	start := c.now()
	defer func() {
		stats.Elapsed = c.now().Sub(start)
		if cerr := src.Close(); cerr != nil {
			c.log.Warnf("closing source: %v", cerr)
		}
	}()

	// raster output is one fixed-size video, so the source size is locked
	// by the first frame
	var first frame.Frame
	raster := c.opts.Renderer.Mode() == config.ModeRaster

	for i := 0; c.opts.Limit == 0 || i < c.opts.Limit; i++ {
		// cancellation is only checked between frames
		if ctx.Err() != nil {
			c.log.Debugf("cancelled after %d frames", stats.Frames)
			return stats, errors.Join(ctx.Err(), snk.Close())
		}
		frameStart := c.now()

		f, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && ctx.Err() != nil {
			// the decoder was killed by the cancellation
			return stats, errors.Join(ctx.Err(), snk.Close())
		}
		if err != nil {
			return stats, c.abort(snk, categorize(err, apperr.ErrSource), i)
		}
		if raster {
			if i == 0 {
				first = frame.Frame{Width: f.Width, Height: f.Height}
			} else if f.Validate() == nil && (f.Width != first.Width || f.Height != first.Height) {
				err := fmt.Errorf("%w: frame %d is %dx%d, stream started at %dx%d",
					apperr.ErrDimensionMismatch, i, f.Width, f.Height, first.Width, first.Height)
				return stats, c.abort(snk, err, i)
			}
		}
		out, err := c.Process(f)
		if err != nil {
			return stats, c.abort(snk, err, i)
		}
		out.Index = i
		if err := snk.Write(out); err != nil {
			return stats, c.abort(snk, categorize(err, apperr.ErrSink), i)
		}
		stats.Frames++
		stats.Columns, stats.Rows = out.Grid.Columns, out.Grid.Rows
		c.log.Debug(out)

		if c.opts.OnFrame != nil {
			c.opts.OnFrame(i)
		}
		if c.opts.Pace > 0 {
			if wait := c.opts.Pace - c.now().Sub(frameStart); wait > 0 {
				c.sleep(wait)
			}
		}
	}

	if err := snk.Close(); err != nil {
		return stats, categorize(err, apperr.ErrSink)
	}
	c.log.Debugf("done: %d frames at %dx%d cells", stats.Frames, stats.Columns, stats.Rows)
	return stats, nil
}

func (c *Core) abort(snk sink.Sink, err error, i int) error {
	c.log.Debugf("aborting at frame %d: %v", i, err)
	if aerr := snk.Abort(); aerr != nil {
		return errors.Join(err, categorize(aerr, apperr.ErrSink))
	}
	return err
}

func categorize(err error, kind error) error {
	if apperr.Categorized(err) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
