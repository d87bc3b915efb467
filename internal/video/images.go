package video

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/frame"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

// IsImage reports whether path looks like a still image by extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Images yields one frame per still image, in the given order.
type Images struct {
	paths []string
	next  int
}

// OpenImages checks that every file exists and has a decodable header.
func OpenImages(paths ...string) (*Images, error) {
	if len(paths) == 0 {
		return nil, apperr.Source("no images given")
	}
	for _, p := range paths {
		if err := checkImage(p); err != nil {
			return nil, err
		}
	}
	return &Images{paths: paths}, nil
}

func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperr.Source("open %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return apperr.Source("decode %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return apperr.Malformed("%s is %dx%d", path, cfg.Width, cfg.Height)
	}
	return nil
}

func (im *Images) NextFrame() (frame.Frame, error) {
	if im.next >= len(im.paths) {
		return frame.Frame{}, io.EOF
	}
	path := im.paths[im.next]
	im.next++
	f, err := os.Open(path)
	if err != nil {
		return frame.Frame{}, apperr.Source("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return frame.Frame{}, apperr.Source("decode %s: %w", path, err)
	}
	return frame.FromImage(img), nil
}

func (im *Images) Close() error {
	im.next = len(im.paths)
	return nil
}
