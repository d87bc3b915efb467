package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/1F47E/go-asciireel/internal/apperr"
)

const (
	DefaultColumns = 80
	DefaultFPS     = 60
	DefaultRamp    = " .:-=+*#%@"
	DefaultCodec   = "mpeg4"

	// used by the basic font when no TTF is given
	DefaultFontSize = 13.0
	DefaultFontDPI  = 72.0
)

type Mode string

const (
	ModeText   Mode = "text"
	ModeRaster Mode = "raster"
)

type Luma string

const (
	LumaPerceptual Luma = "perceptual"
	LumaAverage    Luma = "average"
)

type Resample string

const (
	ResampleBox        Resample = "box"
	ResampleBilinear   Resample = "bilinear"
	ResampleCatmullRom Resample = "catmullrom"
)

type Screen string

const (
	ScreenANSI  Screen = "ansi"
	ScreenTcell Screen = "tcell"
)

type Config struct {
	Columns    int     `yaml:"columns"`
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
	Mode       Mode    `yaml:"mode"`
	FPS        int     `yaml:"fps"`
	// Aspect is the glyph cell width/height correction. Zero derives it
	// from the font's glyph box.
	Aspect   float64  `yaml:"aspect"`
	Ramp     string   `yaml:"ramp"`
	Luma     Luma     `yaml:"luma"`
	Resample Resample `yaml:"resample"`
	Limit    int      `yaml:"limit"` // max frames, 0 = all

	Font   FontConfig   `yaml:"font"`
	Live   LiveConfig   `yaml:"live"`
	Output OutputConfig `yaml:"output"`
}

type FontConfig struct {
	Path string  `yaml:"path"` // empty = built-in 7x13 bitmap font
	Size float64 `yaml:"size"`
	DPI  float64 `yaml:"dpi"`
}

type LiveConfig struct {
	// Pace is the delay between frames. Zero follows the source frame
	// rate, negative disables pacing.
	Pace   time.Duration `yaml:"pace"`
	Color  bool          `yaml:"color"`
	Screen Screen        `yaml:"screen"`
}

type OutputConfig struct {
	Path  string `yaml:"path"`
	Codec string `yaml:"codec"`
}

func Default() Config {
	return Config{
		Columns:    DefaultColumns,
		Brightness: 0,
		Contrast:   1,
		Saturation: 1,
		Mode:       ModeText,
		FPS:        DefaultFPS,
		Ramp:       DefaultRamp,
		Luma:       LumaPerceptual,
		Resample:   ResampleBox,
		Font: FontConfig{
			Size: DefaultFontSize,
			DPI:  DefaultFontDPI,
		},
		Live: LiveConfig{
			Screen: ScreenANSI,
		},
		Output: OutputConfig{
			Codec: DefaultCodec,
		},
	}
}

// Load reads a YAML file on top of base. Keys missing from the file keep
// the value they have in base.
func Load(base Config, path string) (Config, error) {
	cfg := base
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperr.Config("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, apperr.Config("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every parameter once, before any frame is processed.
func (c Config) Validate() error {
	if c.Columns <= 0 {
		return apperr.Config("columns must be > 0, got %d", c.Columns)
	}
	if c.Brightness < -1 || c.Brightness > 1 {
		return apperr.Config("brightness must be in [-1,1], got %v", c.Brightness)
	}
	if c.Contrast <= 0 {
		return apperr.Config("contrast must be > 0, got %v", c.Contrast)
	}
	if c.Saturation < 0 {
		return apperr.Config("saturation must be >= 0, got %v", c.Saturation)
	}
	if c.FPS <= 0 {
		return apperr.Config("fps must be > 0, got %d", c.FPS)
	}
	if c.Aspect < 0 {
		return apperr.Config("aspect must be >= 0, got %v", c.Aspect)
	}
	if c.Limit < 0 {
		return apperr.Config("limit must be >= 0, got %d", c.Limit)
	}
	if err := ValidateRamp(c.Ramp); err != nil {
		return err
	}
	switch c.Mode {
	case ModeText, ModeRaster:
	default:
		return apperr.Config("unknown mode %q", c.Mode)
	}
	switch c.Luma {
	case LumaPerceptual, LumaAverage:
	default:
		return apperr.Config("unknown luma %q", c.Luma)
	}
	switch c.Resample {
	case ResampleBox, ResampleBilinear, ResampleCatmullRom:
	default:
		return apperr.Config("unknown resample %q", c.Resample)
	}
	switch c.Live.Screen {
	case ScreenANSI, ScreenTcell:
	default:
		return apperr.Config("unknown screen %q", c.Live.Screen)
	}
	if c.Font.Size <= 0 || c.Font.DPI <= 0 {
		return apperr.Config("font size and dpi must be > 0")
	}
	if c.Output.Path != "" {
		if c.Mode != ModeRaster {
			return apperr.Config("video output requires raster mode")
		}
		if strings.TrimSpace(c.Output.Codec) == "" {
			return apperr.Config("output codec is empty")
		}
	}
	return nil
}

// ValidateRamp rejects empty ramps and glyphs that do not occupy exactly
// one terminal cell.
func ValidateRamp(ramp string) error {
	if ramp == "" {
		return apperr.Config("glyph ramp is empty")
	}
	for _, r := range ramp {
		if runewidth.RuneWidth(r) != 1 {
			return apperr.Config("glyph %q is not single-width", r)
		}
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("columns=%d brightness=%.2f contrast=%.2f saturation=%.2f mode=%s fps=%d luma=%s resample=%s",
		c.Columns, c.Brightness, c.Contrast, c.Saturation, c.Mode, c.FPS, c.Luma, c.Resample)
}
