// Package frame defines the decoded RGB frame passed between pipeline stages.
package frame

import (
	"image"
	"image/color"

	"github.com/1F47E/go-asciireel/internal/apperr"
)

// Channels is the number of 8-bit samples per pixel.
const Channels = 3

// Frame is a packed RGB24 buffer, rows top to bottom.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

func New(width, height int) Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Frame{Width: width, Height: height, Pix: make([]byte, width*height*Channels)}
}

// Validate enforces positive dimensions and len(Pix) == w*h*3.
func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return apperr.Malformed("frame is %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height*Channels {
		return apperr.Malformed("frame %dx%d has %d bytes, want %d", f.Width, f.Height, len(f.Pix), f.Width*f.Height*Channels)
	}
	return nil
}

func (f Frame) offset(x, y int) int {
	return (y*f.Width + x) * Channels
}

func (f Frame) RGB(x, y int) (r, g, b uint8) {
	i := f.offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f Frame) SetRGB(x, y int, r, g, b uint8) {
	i := f.offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Clone returns a frame with its own pixel buffer.
func (f Frame) Clone() Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// FromImage converts any image to a frame, dropping alpha.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < f.Height; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < f.Width; x++ {
				f.SetRGB(x, y, row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return f
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			f.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return f
}

// RGBA returns the frame as an opaque *image.RGBA.
func (f Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i+2 < len(f.Pix); i, j = i+Channels, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FromRGBA is the inverse of RGBA, assuming an opaque image.
func FromRGBA(img *image.RGBA) Frame {
	return FromImage(img)
}
