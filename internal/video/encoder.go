package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

type EncoderOptions struct {
	Path     string
	FPS      int
	Width    int
	Height   int
	Codec    string
	Metadata []string // extra ffmpeg args, usually -metadata k=v pairs
}

// Encoder pipes rgb24 frames into ffmpeg. The frame size is fixed when
// the encoder starts.
type Encoder struct {
	opts   EncoderOptions
	cmd    *exec.Cmd
	in     io.WriteCloser
	stderr *tail
	buf    []byte
	frames int
	closed bool
}

func StartEncoder(ctx context.Context, opts EncoderOptions) (*Encoder, error) {
	log := logger.Log.WithField("scope", "video encoder")
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, apperr.Config("encoder needs positive size and fps, got %dx%d @ %d", opts.Width, opts.Height, opts.FPS)
	}
	args := encodeArgs(opts)
	log.Debugf("Running ffmpeg command: %s %s", FFmpeg, strings.Join(args, " "))

	e := &Encoder{
		opts:   opts,
		stderr: &tail{},
		buf:    make([]byte, opts.Width*opts.Height*3),
	}
	e.cmd = exec.CommandContext(ctx, FFmpeg, args...)
	e.cmd.Stderr = e.stderr
	detach(e.cmd)
	var err error
	e.in, err = e.cmd.StdinPipe()
	if err != nil {
		return nil, apperr.Sink("ffmpeg stdin: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return nil, apperr.Sink("start ffmpeg: %w", err)
	}
	return e, nil
}

func encodeArgs(o EncoderOptions) []string {
	args := []string{
		"-y",
		"-nostdin",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height),
		"-r", strconv.Itoa(o.FPS),
		"-i", "pipe:0",
		"-an",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", o.Codec,
		"-pix_fmt", "yuv420p",
	}
	if o.Codec == "mpeg4" {
		args = append(args, "-q:v", "3")
	}
	args = append(args, o.Metadata...)
	return append(args, o.Path)
}

// WriteFrame appends one image. It must match the size given at start.
func (e *Encoder) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return fmt.Errorf("%w: encoder is %dx%d, frame is %dx%d", apperr.ErrDimensionMismatch, e.opts.Width, e.opts.Height, b.Dx(), b.Dy())
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			e.buf[i], e.buf[i+1], e.buf[i+2] = row[x*4], row[x*4+1], row[x*4+2]
			i += 3
		}
	}
	if _, err := e.in.Write(e.buf); err != nil {
		return apperr.Sink("write frame %d: %v: %s", e.frames, err, e.stderr)
	}
	e.frames++
	return nil
}

// Close flushes stdin and waits for ffmpeg to finish the container.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.in.Close(); err != nil {
		_ = e.cmd.Wait()
		return apperr.Sink("close ffmpeg stdin: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return apperr.Sink("ffmpeg: %v: %s", err, e.stderr)
	}
	logger.Log.WithField("scope", "video encoder").Debugf("encoded %d frames into %s", e.frames, e.opts.Path)
	return nil
}

// Kill stops ffmpeg without finishing the container.
func (e *Encoder) Kill() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.in.Close()
	if e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	_ = e.cmd.Wait()
	return nil
}
