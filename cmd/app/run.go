package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/1F47E/go-asciireel/internal/adjust"
	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/core"
	"github.com/1F47E/go-asciireel/internal/glyph"
	"github.com/1F47E/go-asciireel/internal/meta"
	"github.com/1F47E/go-asciireel/internal/ramp"
	"github.com/1F47E/go-asciireel/internal/render"
	"github.com/1F47E/go-asciireel/internal/resize"
	"github.com/1F47E/go-asciireel/internal/sink"
	"github.com/1F47E/go-asciireel/internal/video"
	"github.com/1F47E/go-asciireel/pkg/config"
	"github.com/1F47E/go-asciireel/pkg/logger"
	"github.com/1F47E/go-asciireel/pkg/progress"
)

// flagSource is the part of *cli.Context that buildConfig reads.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Float64(name string) float64
	Bool(name string) bool
	Duration(name string) time.Duration
}

var _ flagSource = (*cli.Context)(nil)

// buildConfig layers the YAML file and explicitly set flags over base.
func buildConfig(c flagSource, base config.Config) (config.Config, error) {
	cfg := base
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(base, path); err != nil {
			return cfg, err
		}
	}
	set := func(name string, apply func()) {
		if c.IsSet(name) {
			apply()
		}
	}
	set("columns", func() { cfg.Columns = c.Int("columns") })
	set("brightness", func() { cfg.Brightness = c.Float64("brightness") })
	set("contrast", func() { cfg.Contrast = c.Float64("contrast") })
	set("saturation", func() { cfg.Saturation = c.Float64("saturation") })
	set("mode", func() { cfg.Mode = config.Mode(c.String("mode")) })
	set("fps", func() { cfg.FPS = c.Int("fps") })
	set("aspect", func() { cfg.Aspect = c.Float64("aspect") })
	set("ramp", func() { cfg.Ramp = c.String("ramp") })
	set("luma", func() { cfg.Luma = config.Luma(c.String("luma")) })
	set("resample", func() { cfg.Resample = config.Resample(c.String("resample")) })
	set("font", func() { cfg.Font.Path = c.String("font") })
	set("font-size", func() { cfg.Font.Size = c.Float64("font-size") })
	set("font-dpi", func() { cfg.Font.DPI = c.Float64("font-dpi") })
	set("limit", func() { cfg.Limit = c.Int("limit") })
	set("pace", func() { cfg.Live.Pace = c.Duration("pace") })
	set("color", func() { cfg.Live.Color = c.Bool("color") })
	set("screen", func() { cfg.Live.Screen = config.Screen(c.String("screen")) })
	set("codec", func() { cfg.Output.Codec = c.String("codec") })
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// terminalColumns returns the width of stdout when it is a terminal.
func terminalColumns(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

type source interface {
	core.Source
	// fps and frames are 0 when unknown
	meta() (fps float64, frames int)
}

type streamSource struct{ *video.Stream }

func (s streamSource) meta() (float64, int) {
	info := s.Info()
	return info.FPS, info.Frames
}

type imageSource struct {
	*video.Images
	n int
}

func (s imageSource) meta() (float64, int) { return 0, s.n }

func openSource(ctx context.Context, paths []string) (source, error) {
	images := true
	for _, p := range paths {
		images = images && video.IsImage(p)
	}
	if images {
		im, err := video.OpenImages(paths...)
		if err != nil {
			return nil, err
		}
		return imageSource{Images: im, n: len(paths)}, nil
	}
	if len(paths) > 1 {
		return nil, apperr.Config("only image sources can be combined, got %d paths", len(paths))
	}
	s, err := video.OpenStream(ctx, paths[0])
	if err != nil {
		return nil, err
	}
	return streamSource{s}, nil
}

func loadGlyphs(cfg config.Config) (*glyph.Face, error) {
	if cfg.Font.Path == "" {
		return glyph.Basic(), nil
	}
	return glyph.LoadTrueType(cfg.Font.Path, cfg.Font.Size, cfg.Font.DPI)
}

// newCore builds the frame pipeline for cfg.
func newCore(cfg config.Config, pace time.Duration, onFrame func(int)) (*core.Core, error) {
	face, err := loadGlyphs(cfg)
	if err != nil {
		return nil, err
	}
	rmp, err := ramp.New(cfg.Ramp)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(cfg.Mode, rmp, ramp.LumaFor(cfg.Luma), face)
	if err != nil {
		return nil, err
	}
	aspect := cfg.Aspect
	if aspect == 0 {
		aspect = face.Aspect()
	}
	return core.New(core.Options{
		Adjust: adjust.Params{
			Brightness: cfg.Brightness,
			Contrast:   cfg.Contrast,
			Saturation: cfg.Saturation,
		},
		Resizer:  resize.Resizer{Columns: cfg.Columns, Aspect: aspect, Method: cfg.Resample},
		Renderer: renderer,
		Limit:    cfg.Limit,
		Pace:     pace,
		OnFrame:  onFrame,
	})
}

// livePace turns the configured pace into a per-frame delay.
func livePace(pace time.Duration, sourceFPS float64, fallbackFPS int) time.Duration {
	switch {
	case pace < 0:
		return 0
	case pace > 0:
		return pace
	case sourceFPS > 0:
		return time.Duration(float64(time.Second) / sourceFPS)
	default:
		return time.Second / time.Duration(fallbackFPS)
	}
}

func play(ctx context.Context, cfg config.Config, paths []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := openSource(ctx, paths)
	if err != nil {
		return err
	}
	fps, _ := src.meta()
	c, err := newCore(cfg, livePace(cfg.Live.Pace, fps, cfg.FPS), nil)
	if err != nil {
		_ = src.Close()
		return err
	}

	var snk sink.Sink
	switch cfg.Live.Screen {
	case config.ScreenTcell:
		if snk, err = sink.NewScreen(cancel); err != nil {
			_ = src.Close()
			return err
		}
	default:
		snk = sink.NewTerminal(os.Stdout, cfg.Live.Color)
	}

	logger.Quiet()
	stats, err := c.Run(ctx, src, snk)
	log.WithField("scope", "play").Debugf("played %d frames in %s", stats.Frames, stats.Elapsed)
	return err
}

func encode(ctx context.Context, cfg config.Config, paths []string) error {
	src, err := openSource(ctx, paths)
	if err != nil {
		return err
	}
	_, frames := src.meta()
	if cfg.Limit > 0 && (frames == 0 || cfg.Limit < frames) {
		frames = cfg.Limit
	}
	bar := progress.New(frames, "rendering")
	c, err := newCore(cfg, 0, bar.Frame)
	if err != nil {
		_ = src.Close()
		return err
	}

	tags := meta.New(paths[0], cfg)
	log.WithField("scope", "render").Debug(tags.Print())
	// ffmpeg must outlive a cancelled run so the partial output can be finished
	encCtx := context.WithoutCancel(ctx)
	snk := sink.NewEncoder(cfg.Output.Path, func(path string, width, height int) (sink.FrameWriter, error) {
		return video.StartEncoder(encCtx, video.EncoderOptions{
			Path:     path,
			FPS:      cfg.FPS,
			Width:    width,
			Height:   height,
			Codec:    cfg.Output.Codec,
			Metadata: tags.Args(),
		})
	})

	stats, err := c.Run(ctx, src, snk)
	bar.Finish()
	if err != nil {
		return err
	}
	log.Infof("wrote %d frames (%dx%d cells) to %s in %s",
		stats.Frames, stats.Columns, stats.Rows, cfg.Output.Path, stats.Elapsed.Round(time.Millisecond))
	return nil
}
