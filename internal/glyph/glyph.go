// Package glyph supplies the font metrics and the draw primitive used by
// raster rendering.
package glyph

import (
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

// Reference is the glyph whose box sizes every cell.
const Reference = 'A'

// Provider reports one fixed cell size and draws glyphs into it.
type Provider interface {
	Box() (width, height int)
	Draw(dst *image.RGBA, origin image.Point, r rune, c color.RGBA)
}

// Face adapts a font.Face. Glyphs are clipped to their cell.
type Face struct {
	face   font.Face
	width  int
	height int
	ascent int
}

func NewFace(face font.Face) *Face {
	m := face.Metrics()
	adv, ok := face.GlyphAdvance(Reference)
	if !ok {
		adv = m.Height / 2
	}
	f := &Face{
		face:   face,
		width:  adv.Ceil(),
		height: (m.Ascent + m.Descent).Ceil(),
		ascent: m.Ascent.Ceil(),
	}
	if f.width < 1 {
		f.width = 1
	}
	if f.height < 1 {
		f.height = 1
	}
	return f
}

// Basic is the built-in 7x13 bitmap font.
func Basic() *Face {
	return NewFace(basicfont.Face7x13)
}

// LoadTrueType parses a TTF file. A monospaced font keeps glyphs inside
// their cells.
func LoadTrueType(path string, size, dpi float64) (*Face, error) {
	log := logger.Log.WithField("scope", "glyph")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Config("read font %s: %w", path, err)
	}
	ttf, err := freetype.ParseFont(b)
	if err != nil {
		return nil, apperr.Config("parse font %s: %w", path, err)
	}
	face := NewFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}))
	log.Debugf("loaded %s: cell %dx%d", path, face.width, face.height)
	return face, nil
}

func (f *Face) Box() (int, int) {
	return f.width, f.height
}

// Aspect is the cell width/height ratio used as the default aspect
// correction.
func (f *Face) Aspect() float64 {
	return float64(f.width) / float64(f.height)
}

func (f *Face) Draw(dst *image.RGBA, origin image.Point, r rune, c color.RGBA) {
	if r == ' ' {
		return
	}
	cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(f.width, f.height))}
	sub, ok := dst.SubImage(cell).(*image.RGBA)
	if !ok || sub.Rect.Empty() {
		return
	}
	d := font.Drawer{
		Dst:  sub,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(origin.X, origin.Y+f.ascent),
	}
	d.DrawString(string(r))
}
