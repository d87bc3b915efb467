// Package adjust applies brightness, contrast and saturation to frames.
package adjust

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
)

type Params struct {
	Brightness float64 // [-1,1], added as brightness*255
	Contrast   float64 // > 0, multiplier
	Saturation float64 // >= 0, HSV saturation scale
}

// Identity leaves frames untouched.
var Identity = Params{Brightness: 0, Contrast: 1, Saturation: 1}

func (p Params) Validate() error {
	if p.Brightness < -1 || p.Brightness > 1 {
		return apperr.Config("brightness must be in [-1,1], got %v", p.Brightness)
	}
	if p.Contrast <= 0 {
		return apperr.Config("contrast must be > 0, got %v", p.Contrast)
	}
	if p.Saturation < 0 {
		return apperr.Config("saturation must be >= 0, got %v", p.Saturation)
	}
	return nil
}

// Apply returns an adjusted copy of f. The input frame is not modified.
func Apply(f frame.Frame, p Params) frame.Frame {
	out := f.Clone()
	if p.Contrast != 1 || p.Brightness != 0 {
		linear(out.Pix, p.Contrast, p.Brightness*255)
	}
	if p.Saturation != 1 {
		saturate(out, p.Saturation)
	}
	return out
}

// linear computes clamp(v*alpha + beta) per channel, rounding to nearest.
func linear(pix []byte, alpha, beta float64) {
	var lut [256]byte
	for v := range lut {
		lut[v] = clamp8(float64(v)*alpha + beta)
	}
	for i, v := range pix {
		pix[i] = lut[v]
	}
}

func saturate(f frame.Frame, scale float64) {
	for i := 0; i+2 < len(f.Pix); i += frame.Channels {
		r, g, b := f.Pix[i], f.Pix[i+1], f.Pix[i+2]
		if r == g && g == b {
			// gray has no saturation to scale
			continue
		}
		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		h, s, v := c.Hsv()
		s = math.Min(s*scale, 1)
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = colorful.Hsv(h, s, v).Clamped().RGB255()
	}
}

func clamp8(v float64) byte {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
