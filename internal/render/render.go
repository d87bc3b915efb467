// Package render turns a downsampled frame into glyph cells, then into a
// text block or a colour raster image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
	"github.com/1F47E/go-asciireel/internal/glyph"
	"github.com/1F47E/go-asciireel/internal/ramp"
	"github.com/1F47E/go-asciireel/pkg/config"
)

// RowSeparator ends every text row except the last.
const RowSeparator = "\n"

var background = color.RGBA{0, 0, 0, 0xff}

// Cell is one grid position: a glyph and the source colour under it.
type Cell struct {
	Glyph   rune
	R, G, B uint8
}

// Grid is a row-major Columns x Rows block of cells.
type Grid struct {
	Columns int
	Rows    int
	Cells   []Cell
}

func (g Grid) At(x, y int) Cell {
	return g.Cells[y*g.Columns+x]
}

// Output is what a sink receives for one frame. Text is set in text mode,
// Image in raster mode. Grid is always set.
type Output struct {
	Index int
	Grid  Grid
	Text  string
	Image *image.RGBA
}

type Renderer struct {
	mode   config.Mode
	ramp   ramp.Ramp
	luma   ramp.LumaFunc
	glyphs glyph.Provider
}

func New(mode config.Mode, r ramp.Ramp, luma ramp.LumaFunc, glyphs glyph.Provider) (*Renderer, error) {
	if r.Len() == 0 {
		return nil, apperr.Config("glyph ramp is empty")
	}
	if luma == nil {
		luma = ramp.Perceptual
	}
	switch mode {
	case config.ModeText:
	case config.ModeRaster:
		if glyphs == nil {
			return nil, apperr.Config("raster mode needs a glyph provider")
		}
	default:
		return nil, apperr.Config("unknown mode %q", mode)
	}
	return &Renderer{mode: mode, ramp: r, luma: luma, glyphs: glyphs}, nil
}

func (r *Renderer) Mode() config.Mode { return r.mode }

// Render maps one downsampled frame (one pixel per cell).
func (r *Renderer) Render(f frame.Frame) (Output, error) {
	if err := f.Validate(); err != nil {
		return Output{}, err
	}
	out := Output{Grid: r.Cells(f)}
	switch r.mode {
	case config.ModeRaster:
		out.Image = r.Raster(out.Grid)
	default:
		out.Text = Text(out.Grid)
	}
	return out, nil
}

func (r *Renderer) Cells(f frame.Frame) Grid {
	g := Grid{Columns: f.Width, Rows: f.Height, Cells: make([]Cell, f.Width*f.Height)}
	for i := range g.Cells {
		red, green, blue := f.Pix[i*3], f.Pix[i*3+1], f.Pix[i*3+2]
		g.Cells[i] = Cell{
			Glyph: r.ramp.Glyph(r.luma(red, green, blue)),
			R:     red,
			G:     green,
			B:     blue,
		}
	}
	return g
}

// CanvasSize is the raster size for a grid; it depends only on the grid
// and glyph box.
func (r *Renderer) CanvasSize(columns, rows int) (int, int) {
	if r.glyphs == nil {
		return 0, 0
	}
	w, h := r.glyphs.Box()
	return columns * w, rows * h
}

// Raster draws each glyph in its source colour on a black canvas.
func (r *Renderer) Raster(g Grid) *image.RGBA {
	gw, gh := r.glyphs.Box()
	w, h := r.CanvasSize(g.Columns, g.Rows)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Columns; x++ {
			c := g.At(x, y)
			r.glyphs.Draw(img, image.Pt(x*gw, y*gh), c.Glyph, color.RGBA{c.R, c.G, c.B, 0xff})
		}
	}
	return img
}

// Text joins glyphs row by row.
func Text(g Grid) string {
	var sb strings.Builder
	sb.Grow((g.Columns + 1) * g.Rows)
	for y := 0; y < g.Rows; y++ {
		if y > 0 {
			sb.WriteString(RowSeparator)
		}
		for x := 0; x < g.Columns; x++ {
			sb.WriteRune(g.At(x, y).Glyph)
		}
	}
	return sb.String()
}

// ANSI is Text with a 24-bit foreground colour per glyph. Runs of the
// same colour share one escape sequence.
func ANSI(g Grid) string {
	var sb strings.Builder
	sb.Grow(g.Columns * g.Rows * 4)
	for y := 0; y < g.Rows; y++ {
		if y > 0 {
			sb.WriteString(RowSeparator)
		}
		var prev Cell
		for x := 0; x < g.Columns; x++ {
			c := g.At(x, y)
			if x == 0 || c.R != prev.R || c.G != prev.G || c.B != prev.B {
				sb.WriteString("\x1b[38;2;")
				sb.WriteString(strconv.Itoa(int(c.R)))
				sb.WriteByte(';')
				sb.WriteString(strconv.Itoa(int(c.G)))
				sb.WriteByte(';')
				sb.WriteString(strconv.Itoa(int(c.B)))
				sb.WriteByte('m')
			}
			sb.WriteRune(c.Glyph)
			prev = c
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func (o Output) String() string {
	if o.Image != nil {
		b := o.Image.Bounds()
		return fmt.Sprintf("frame %d: %dx%d cells, %dx%d px", o.Index, o.Grid.Columns, o.Grid.Rows, b.Dx(), b.Dy())
	}
	return fmt.Sprintf("frame %d: %dx%d cells", o.Index, o.Grid.Columns, o.Grid.Rows)
}
