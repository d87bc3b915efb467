package glyph

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/1F47E/go-asciireel/internal/apperr"
)

func TestBasicBox(t *testing.T) {
	w, h := Basic().Box()
	if w != 7 || h != 13 {
		t.Errorf("got %dx%d, want 7x13", w, h)
	}
	if a := Basic().Aspect(); a < 0.5 || a > 0.55 {
		t.Errorf("aspect %v outside the usual glyph range", a)
	}
}

func countInk(img *image.RGBA, r image.Rectangle) (inside, outside int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{}) {
				continue
			}
			if image.Pt(x, y).In(r) {
				inside++
			} else {
				outside++
			}
		}
	}
	return inside, outside
}

func TestDrawStaysInCell(t *testing.T) {
	face := Basic()
	w, h := face.Box()
	canvas := image.NewRGBA(image.Rect(0, 0, 3*w, 3*h))
	origin := image.Pt(w, h)
	face.Draw(canvas, origin, '@', color.RGBA{R: 255, A: 255})

	inside, outside := countInk(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))})
	if inside == 0 {
		t.Error("glyph drew nothing")
	}
	if outside != 0 {
		t.Errorf("%d pixels outside the cell", outside)
	}
	for y := 0; y < canvas.Bounds().Dy(); y++ {
		for x := 0; x < canvas.Bounds().Dx(); x++ {
			c := canvas.RGBAAt(x, y)
			if c.G != 0 || c.B != 0 {
				t.Fatalf("unexpected colour %v", c)
			}
		}
	}
}

func TestDrawSpace(t *testing.T) {
	face := Basic()
	canvas := image.NewRGBA(image.Rect(0, 0, 7, 13))
	face.Draw(canvas, image.Point{}, ' ', color.RGBA{255, 255, 255, 255})
	if in, out := countInk(canvas, canvas.Bounds()); in+out != 0 {
		t.Errorf("space drew %d pixels", in+out)
	}
}

func TestLoadTrueTypeErrors(t *testing.T) {
	if _, err := LoadTrueType(filepath.Join(t.TempDir(), "missing.ttf"), 12, 72); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("missing file: got %v", err)
	}
	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	if err := os.WriteFile(bogus, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTrueType(bogus, 12, 72); !errors.Is(err, apperr.ErrConfig) {
		t.Errorf("bogus file: got %v", err)
	}
}
