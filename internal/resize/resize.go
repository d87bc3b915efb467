// Package resize downsamples frames to a character grid.
package resize

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
	"github.com/1F47E/go-asciireel/pkg/config"
)

// Rows is round(height/width * columns * aspect), at least 1.
func Rows(width, height, columns int, aspect float64) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, apperr.Malformed("source frame is %dx%d", width, height)
	}
	if columns <= 0 {
		return 0, apperr.Config("columns must be > 0, got %d", columns)
	}
	if aspect <= 0 {
		return 0, apperr.Config("aspect correction must be > 0, got %v", aspect)
	}
	rows := int(math.Round(float64(height) / float64(width) * float64(columns) * aspect))
	if rows < 1 {
		rows = 1
	}
	return rows, nil
}

// Resizer turns a source frame into a columns x rows frame, one pixel per
// character cell.
type Resizer struct {
	Columns int
	Aspect  float64
	Method  config.Resample
}

func (r Resizer) Resize(f frame.Frame) (frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return frame.Frame{}, err
	}
	rows, err := Rows(f.Width, f.Height, r.Columns, r.Aspect)
	if err != nil {
		return frame.Frame{}, err
	}
	switch r.Method {
	case config.ResampleBilinear:
		return scale(f, r.Columns, rows, draw.BiLinear), nil
	case config.ResampleCatmullRom:
		return scale(f, r.Columns, rows, draw.CatmullRom), nil
	default:
		return Box(f, r.Columns, rows), nil
	}
}

// Box averages every source pixel that overlaps a target cell, weighted
// by the overlapped area.
func Box(f frame.Frame, cols, rows int) frame.Frame {
	out := frame.New(cols, rows)
	sx := float64(f.Width) / float64(cols)
	sy := float64(f.Height) / float64(rows)
	for ty := 0; ty < rows; ty++ {
		y0, y1 := float64(ty)*sy, float64(ty+1)*sy
		for tx := 0; tx < cols; tx++ {
			x0, x1 := float64(tx)*sx, float64(tx+1)*sx
			var acc [3]float64
			var total float64
			for py := int(y0); py < f.Height && float64(py) < y1; py++ {
				wy := overlap(float64(py), y0, y1)
				for px := int(x0); px < f.Width && float64(px) < x1; px++ {
					w := wy * overlap(float64(px), x0, x1)
					if w <= 0 {
						continue
					}
					r, g, b := f.RGB(px, py)
					acc[0] += w * float64(r)
					acc[1] += w * float64(g)
					acc[2] += w * float64(b)
					total += w
				}
			}
			if total == 0 {
				continue
			}
			out.SetRGB(tx, ty,
				uint8(math.Round(acc[0]/total)),
				uint8(math.Round(acc[1]/total)),
				uint8(math.Round(acc[2]/total)))
		}
	}
	return out
}

// overlap is the length of [p, p+1) inside [lo, hi).
func overlap(p, lo, hi float64) float64 {
	return math.Min(p+1, hi) - math.Max(p, lo)
}

// scale uses an x/image kernel; kernels widen with the scale factor, so
// downsampling averages the covered region instead of point sampling.
func scale(f frame.Frame, cols, rows int, k *draw.Kernel) frame.Frame {
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	k.Scale(dst, dst.Bounds(), f.RGBA(), image.Rect(0, 0, f.Width, f.Height), draw.Src, nil)
	return frame.FromRGBA(dst)
}
