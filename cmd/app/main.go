package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/video"
	"github.com/1F47E/go-asciireel/pkg/config"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

var app = cli.NewApp()
var log = logger.Log

var renderFlags = []cli.Flag{
	cli.StringFlag{Name: "config", Usage: "YAML config file"},
	cli.IntFlag{Name: "columns, c", Usage: "grid width in characters"},
	cli.Float64Flag{Name: "brightness, b", Usage: "brightness offset in [-1,1]"},
	cli.Float64Flag{Name: "contrast", Usage: "contrast multiplier, > 0"},
	cli.Float64Flag{Name: "saturation, s", Usage: "saturation scale, >= 0"},
	cli.StringFlag{Name: "mode, m", Usage: "text or raster"},
	cli.Float64Flag{Name: "aspect", Usage: "glyph cell width/height, 0 derives it from the font"},
	cli.StringFlag{Name: "ramp", Usage: "glyphs from darkest to brightest"},
	cli.StringFlag{Name: "luma", Usage: "perceptual or average"},
	cli.StringFlag{Name: "resample", Usage: "box, bilinear or catmullrom"},
	cli.StringFlag{Name: "font", Usage: "TrueType font for raster glyphs"},
	cli.Float64Flag{Name: "font-size", Usage: "font size in points"},
	cli.Float64Flag{Name: "font-dpi", Usage: "font resolution"},
	cli.IntFlag{Name: "limit, n", Usage: "stop after this many frames"},
}

var playFlags = append([]cli.Flag{
	cli.DurationFlag{Name: "pace", Usage: "delay between frames, 0 follows the source, negative disables"},
	cli.BoolFlag{Name: "color", Usage: "24-bit colour text"},
	cli.StringFlag{Name: "screen", Usage: "ansi or tcell"},
}, renderFlags...)

var encodeFlags = append([]cli.Flag{
	cli.IntFlag{Name: "fps", Usage: "output frame rate"},
	cli.StringFlag{Name: "codec", Usage: "ffmpeg video codec"},
}, renderFlags...)

func init() {
	app.Name = "asciireel"
	app.Usage = "Render videos as ASCII glyphs"
	app.UsageText = "asciireel [command] source [output]"
	app.HideHelp = true
	app.HideVersion = true
	app.ArgsUsage = ""
	app.Commands = []cli.Command{
		{
			Name:      "play",
			Aliases:   []string{"p"},
			Usage:     "Play a video or images in the terminal",
			ArgsUsage: "source [images...]",
			Flags:     playFlags,
			Action: func(c *cli.Context) error {
				if len(c.Args()) == 0 {
					return apperr.Config("source is required")
				}
				base := config.Default()
				base.Columns = terminalColumns(base.Columns)
				cfg, err := buildConfig(c, base)
				if err != nil {
					return err
				}
				return withSignals(func(ctx context.Context) error {
					return play(ctx, cfg, c.Args())
				})
			},
		},
		{
			Name:      "render",
			Aliases:   []string{"r"},
			Usage:     "Render a video into a new video file",
			ArgsUsage: "source output",
			Flags:     encodeFlags,
			Action: func(c *cli.Context) error {
				if len(c.Args()) < 2 {
					return apperr.Config("source and output are required")
				}
				base := config.Default()
				base.Mode = config.ModeRaster
				base.Output.Path = c.Args().Get(len(c.Args()) - 1)
				cfg, err := buildConfig(c, base)
				if err != nil {
					return err
				}
				sources := c.Args()[:len(c.Args())-1]
				return withSignals(func(ctx context.Context) error {
					return encode(ctx, cfg, sources)
				})
			},
		},
		{
			Name:      "probe",
			Usage:     "Print the size and frame rate of a video",
			ArgsUsage: "source",
			Action: func(c *cli.Context) error {
				source := c.Args().First()
				if source == "" {
					return apperr.Config("source is required")
				}
				info, err := video.Probe(context.Background(), source)
				if err != nil {
					return err
				}
				fmt.Println(info)
				return nil
			},
		},
	}
}

func withSignals(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Error(err)
		os.Exit(apperr.ExitCode(err))
	}
}
