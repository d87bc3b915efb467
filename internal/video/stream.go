package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

// RawReader splits a packed rgb24 byte stream into frames.
type RawReader struct {
	r      io.Reader
	width  int
	height int
}

func NewRawReader(r io.Reader, width, height int) (*RawReader, error) {
	if width <= 0 || height <= 0 {
		return nil, apperr.Malformed("raw stream is %dx%d", width, height)
	}
	return &RawReader{r: r, width: width, height: height}, nil
}

// Next returns io.EOF at a frame boundary and ErrMalformedFrame when the
// stream ends inside a frame.
func (rr *RawReader) Next() (frame.Frame, error) {
	f := frame.New(rr.width, rr.height)
	n, err := io.ReadFull(rr.r, f.Pix)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, io.EOF):
		return frame.Frame{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return frame.Frame{}, apperr.Malformed("truncated frame: %d of %d bytes", n, len(f.Pix))
	default:
		return frame.Frame{}, apperr.Source("read frame: %w", err)
	}
}

// Stream decodes a media file (or URL) through ffmpeg.
type Stream struct {
	info   Info
	cmd    *exec.Cmd
	out    io.ReadCloser
	raw    *RawReader
	stderr *tail
	done   bool
}

// OpenStream probes path and starts the decoder. Open failures are
// reported here, before any frame is requested.
func OpenStream(ctx context.Context, path string) (*Stream, error) {
	log := logger.Log.WithField("scope", "video stream")
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	args := streamArgs(path, info)
	log.Debugf("Running ffmpeg command: %s %s", FFmpeg, strings.Join(args, " "))

	s := &Stream{info: info, stderr: &tail{}}
	s.cmd = exec.CommandContext(ctx, FFmpeg, args...)
	s.cmd.Stderr = s.stderr
	detach(s.cmd)
	s.out, err = s.cmd.StdoutPipe()
	if err != nil {
		return nil, apperr.Source("ffmpeg stdout: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, apperr.Source("start ffmpeg: %w", err)
	}
	s.raw, _ = NewRawReader(s.out, info.Width, info.Height)
	log.Debugf("decoding %s: %s", path, info)
	return s, nil
}

// streamArgs keeps ffmpeg's default autorotation, which Probe accounts
// for, and adds a scale filter for non-square pixels.
func streamArgs(path string, info Info) []string {
	args := []string{
		"-nostdin",
		"-loglevel", "error",
		"-i", path,
		"-map", "0:v:0",
		"-an", "-sn",
	}
	if vf := info.scaleFilter(); vf != "" {
		args = append(args, "-vf", vf)
	}
	return append(args,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
}

func (s *Stream) Info() Info { return s.info }

func (s *Stream) NextFrame() (frame.Frame, error) {
	if s.done {
		return frame.Frame{}, io.EOF
	}
	f, err := s.raw.Next()
	if err == nil {
		return f, nil
	}
	s.done = true
	werr := s.cmd.Wait()
	if errors.Is(err, io.EOF) && werr != nil {
		return frame.Frame{}, apperr.Source("ffmpeg: %v: %s", werr, s.stderr)
	}
	return frame.Frame{}, err
}

// Close stops the decoder if it is still running.
func (s *Stream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	var errs []error
	if err := s.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close ffmpeg stdout: %w", err))
	}
	if s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("kill ffmpeg: %w", err))
		}
	}
	if err := s.cmd.Wait(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() != -1 {
			// exited on its own before the kill
			logger.Log.WithField("scope", "video stream").Warnf("ffmpeg: %v: %s", err, s.stderr)
		}
	}
	if len(errs) > 0 {
		return apperr.Source("stop decoder: %w", errors.Join(errs...))
	}
	return nil
}
