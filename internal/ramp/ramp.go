// Package ramp maps luminance to glyphs.
package ramp

import (
	"math"

	"github.com/1F47E/go-asciireel/pkg/config"
)

// Ramp is an immutable glyph table ordered darkest to brightest.
type Ramp struct {
	glyphs []rune
}

func New(glyphs string) (Ramp, error) {
	if err := config.ValidateRamp(glyphs); err != nil {
		return Ramp{}, err
	}
	return Ramp{glyphs: []rune(glyphs)}, nil
}

// Default is the ten-glyph reference ramp.
func Default() Ramp {
	r, _ := New(config.DefaultRamp)
	return r
}

func (r Ramp) Len() int { return len(r.glyphs) }

// Index is floor(l*(n-1)/255): monotonic and always within [0, n-1].
func (r Ramp) Index(l uint8) int {
	return int(l) * (len(r.glyphs) - 1) / 255
}

func (r Ramp) Glyph(l uint8) rune {
	return r.glyphs[r.Index(l)]
}

func (r Ramp) String() string { return string(r.glyphs) }

// LumaFunc reduces an RGB sample to one brightness value.
type LumaFunc func(r, g, b uint8) uint8

// Perceptual is round(0.299R + 0.587G + 0.114B).
func Perceptual(r, g, b uint8) uint8 {
	return uint8(math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)))
}

// Average is the unweighted mean, truncated.
func Average(r, g, b uint8) uint8 {
	return uint8((int(r) + int(g) + int(b)) / 3)
}

func LumaFor(l config.Luma) LumaFunc {
	if l == config.LumaAverage {
		return Average
	}
	return Perceptual
}
