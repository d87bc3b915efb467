package ramp

import (
	"errors"
	"testing"

	"github.com/1F47E/go-asciireel/internal/apperr"
)

func TestIndexMonotonic(t *testing.T) {
	for _, glyphs := range []string{"@", "ab", " .:-=+*#%@", " .'`^\",:;Il!i><~+_-?][}{1)(|/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"} {
		r, err := New(glyphs)
		if err != nil {
			t.Fatalf("New(%q): %v", glyphs, err)
		}
		prev := 0
		for l := 0; l <= 255; l++ {
			idx := r.Index(uint8(l))
			if idx < 0 || idx > r.Len()-1 {
				t.Fatalf("ramp %q: index %d out of range for L=%d", glyphs, idx, l)
			}
			if idx < prev {
				t.Fatalf("ramp %q: index decreased at L=%d", glyphs, l)
			}
			prev = idx
		}
		if got := r.Index(0); got != 0 {
			t.Errorf("ramp %q: Index(0) = %d", glyphs, got)
		}
		if got := r.Index(255); got != r.Len()-1 {
			t.Errorf("ramp %q: Index(255) = %d, want %d", glyphs, got, r.Len()-1)
		}
	}
}

func TestDefaultGlyphs(t *testing.T) {
	r := Default()
	testCases := []struct {
		l    uint8
		want rune
	}{
		{0, ' '},
		{28, ' '},
		{29, '.'},
		{128, '='},
		{254, '%'},
		{255, '@'},
	}
	for _, tc := range testCases {
		if got := r.Glyph(tc.l); got != tc.want {
			t.Errorf("Glyph(%d) = %q, want %q", tc.l, got, tc.want)
		}
	}
}

func TestNewRejects(t *testing.T) {
	for _, glyphs := range []string{"", "ab漢"} {
		if _, err := New(glyphs); !errors.Is(err, apperr.ErrConfig) {
			t.Errorf("New(%q): got %v, want ErrConfig", glyphs, err)
		}
	}
}

func TestLuma(t *testing.T) {
	testCases := []struct {
		name    string
		fn      LumaFunc
		r, g, b uint8
		want    uint8
	}{
		{"perceptual black", Perceptual, 0, 0, 0, 0},
		{"perceptual white", Perceptual, 255, 255, 255, 255},
		{"perceptual red", Perceptual, 255, 0, 0, 76},
		{"perceptual green", Perceptual, 0, 255, 0, 150},
		{"perceptual blue", Perceptual, 0, 0, 255, 29},
		{"average white", Average, 255, 255, 255, 255},
		{"average red", Average, 255, 0, 0, 85},
		{"average mixed", Average, 10, 20, 31, 20},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.r, tc.g, tc.b); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}
