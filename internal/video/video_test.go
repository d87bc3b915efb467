package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1F47E/go-asciireel/internal/apperr"
)

func TestParseRate(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"abc/1", 0},
	}
	for _, tc := range testCases {
		if got := parseRate(tc.in); got != tc.want {
			t.Errorf("parseRate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{"streams":[{"width":640,"height":360,"r_frame_rate":"25/1","avg_frame_rate":"0/0","nb_frames":"","duration":"4.0"}],"format":{"duration":"4.02"}}`)
	info, err := parseProbe(out)
	if err != nil {
		t.Fatal(err)
	}
	want := Info{Width: 640, Height: 360, FPS: 25, Frames: 100, Duration: 4, SAR: 1}
	if !reflect.DeepEqual(info, want) {
		t.Errorf("got %+v, want %+v", info, want)
	}

	for _, bad := range []string{`{"streams":[]}`, `{"streams":[{"width":0,"height":10}]}`, `nope`} {
		if _, err := parseProbe([]byte(bad)); !errors.Is(err, apperr.ErrSource) {
			t.Errorf("%s: got %v, want ErrSource", bad, err)
		}
	}
}

func TestParseProbeGeometry(t *testing.T) {
	testCases := []struct {
		name      string
		stream    string
		w, h, rot int
		filter    string
	}{
		{
			name:   "portrait phone clip",
			stream: `"width":1920,"height":1080,"side_data_list":[{"side_data_type":"Display Matrix","rotation":-90}]`,
			w:      1080, h: 1920, rot: -90,
		},
		{
			name:   "legacy rotate tag",
			stream: `"width":1280,"height":720,"tags":{"rotate":"90"}`,
			w:      720, h: 1280, rot: 90,
		},
		{
			name:   "upside down keeps size",
			stream: `"width":640,"height":480,"side_data_list":[{"rotation":180}]`,
			w:      640, h: 480, rot: 180,
		},
		{
			name:   "square pixels",
			stream: `"width":640,"height":480,"sample_aspect_ratio":"1:1"`,
			w:      640, h: 480,
		},
		{
			name:   "unknown sar",
			stream: `"width":640,"height":480,"sample_aspect_ratio":"0:1"`,
			w:      640, h: 480,
		},
		{
			name:   "anamorphic PAL",
			stream: `"width":720,"height":576,"sample_aspect_ratio":"16:15"`,
			w:      768, h: 576,
			filter: "scale=768:576,setsar=1",
		},
		{
			name:   "anamorphic and rotated",
			stream: `"width":720,"height":576,"sample_aspect_ratio":"16:15","side_data_list":[{"rotation":90}]`,
			w:      540, h: 720, rot: 90,
			filter: "scale=540:720,setsar=1",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := parseProbe([]byte(`{"streams":[{` + tc.stream + `,"r_frame_rate":"30/1"}]}`))
			if err != nil {
				t.Fatal(err)
			}
			if info.Width != tc.w || info.Height != tc.h || info.Rotation != tc.rot {
				t.Errorf("got %dx%d rotation %d, want %dx%d rotation %d", info.Width, info.Height, info.Rotation, tc.w, tc.h, tc.rot)
			}
			if got := info.scaleFilter(); got != tc.filter {
				t.Errorf("filter %q, want %q", got, tc.filter)
			}
		})
	}
}

func TestStreamArgs(t *testing.T) {
	plain := streamArgs("in.mp4", Info{Width: 640, Height: 360, SAR: 1})
	want := []string{
		"-nostdin", "-loglevel", "error", "-i", "in.mp4", "-map", "0:v:0", "-an", "-sn",
		"-f", "rawvideo", "-pix_fmt", "rgb24", "pipe:1",
	}
	if !reflect.DeepEqual(plain, want) {
		t.Errorf("got %v\nwant %v", plain, want)
	}

	scaled := streamArgs("in.mpg", Info{Width: 768, Height: 576, SAR: 16.0 / 15.0})
	want = []string{
		"-nostdin", "-loglevel", "error", "-i", "in.mpg", "-map", "0:v:0", "-an", "-sn",
		"-vf", "scale=768:576,setsar=1",
		"-f", "rawvideo", "-pix_fmt", "rgb24", "pipe:1",
	}
	if !reflect.DeepEqual(scaled, want) {
		t.Errorf("got %v\nwant %v", scaled, want)
	}
}

func TestStreamClose(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not installed")
	}
	start := func(t *testing.T) *Stream {
		t.Helper()
		s := &Stream{stderr: &tail{}, cmd: exec.Command("sleep", "30")}
		var err error
		if s.out, err = s.cmd.StdoutPipe(); err != nil {
			t.Fatal(err)
		}
		if err := s.cmd.Start(); err != nil {
			t.Fatal(err)
		}
		return s
	}

	s := start(t)
	if err := s.Close(); err != nil {
		t.Errorf("stopping a running decoder: %v", err)
	}
	if s.cmd.ProcessState == nil {
		t.Error("decoder was not reaped")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	s = start(t)
	_ = s.out.Close()
	err := s.Close()
	if !errors.Is(err, apperr.ErrSource) || !errors.Is(err, os.ErrClosed) {
		t.Errorf("got %v, want the stdout close error", err)
	}
	if s.cmd.ProcessState == nil {
		t.Error("decoder was not reaped after a close error")
	}
}

func TestRawReader(t *testing.T) {
	data := make([]byte, 2*2*3*2+5)
	for i := range data {
		data[i] = byte(i)
	}
	rr, err := NewRawReader(bytes.NewReader(data), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		f, err := rr.Next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if f.Pix[0] != byte(i*12) {
			t.Errorf("frame %d starts with %d", i, f.Pix[0])
		}
	}
	if _, err := rr.Next(); !errors.Is(err, apperr.ErrMalformedFrame) {
		t.Errorf("trailing bytes: got %v, want ErrMalformedFrame", err)
	}

	rr, _ = NewRawReader(bytes.NewReader(data[:12]), 2, 2)
	if _, err := rr.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := rr.Next(); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}

	if _, err := NewRawReader(nil, 0, 2); !errors.Is(err, apperr.ErrMalformedFrame) {
		t.Errorf("zero width: got %v", err)
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs(EncoderOptions{
		Path:     "out.mp4",
		FPS:      60,
		Width:    560,
		Height:   299,
		Codec:    "libx264",
		Metadata: []string{"-metadata", "title=x"},
	})
	want := []string{
		"-y", "-nostdin", "-loglevel", "error",
		"-f", "rawvideo", "-pix_fmt", "rgb24", "-s", "560x299", "-r", "60", "-i", "pipe:0",
		"-an", "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2", "-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-metadata", "title=x", "out.mp4",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("got %v\nwant %v", args, want)
	}
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImages(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a, 4, 2, color.RGBA{255, 0, 0, 255})
	writePNG(t, b, 3, 3, color.RGBA{0, 0, 255, 255})

	src, err := OpenImages(a, b)
	if err != nil {
		t.Fatal(err)
	}
	f, err := src.NextFrame()
	if err != nil {
		t.Fatal(err)
	}
	if f.Width != 4 || f.Height != 2 {
		t.Errorf("first frame %dx%d", f.Width, f.Height)
	}
	if r, g, bl := f.RGB(3, 1); r != 255 || g != 0 || bl != 0 {
		t.Errorf("got %d,%d,%d", r, g, bl)
	}
	f, err = src.NextFrame()
	if err != nil {
		t.Fatal(err)
	}
	if f.Width != 3 || f.Height != 3 {
		t.Errorf("second frame %dx%d", f.Width, f.Height)
	}
	if _, err := src.NextFrame(); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}

	if _, err := OpenImages(a, filepath.Join(dir, "missing.png")); !errors.Is(err, apperr.ErrSource) {
		t.Errorf("missing: got %v, want ErrSource", err)
	}
	if !IsImage("x.JPG") || IsImage("x.mp4") {
		t.Error("IsImage misclassified")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, bin := range []string{FFmpeg, FFprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
	const frames, fps = 30, 15
	path := filepath.Join(t.TempDir(), "out.mp4")
	ctx := context.Background()

	enc, err := StartEncoder(ctx, EncoderOptions{Path: path, FPS: fps, Width: 21, Height: 13, Codec: "mpeg4"})
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 21, 13))
	for i := 0; i < frames; i++ {
		if err := enc.WriteFrame(img); err != nil {
			t.Fatal(err)
		}
	}
	if err := enc.WriteFrame(image.NewRGBA(image.Rect(0, 0, 20, 13))); !errors.Is(err, apperr.ErrDimensionMismatch) {
		t.Errorf("mismatch: got %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := Probe(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	// padded to even dimensions
	if info.Width != 22 || info.Height != 14 {
		t.Errorf("got %dx%d", info.Width, info.Height)
	}
	if want := float64(frames) / fps; math.Abs(info.Duration-want) > 1.0/fps {
		t.Errorf("duration %v, want %v", info.Duration, want)
	}

	s, err := OpenStream(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	n := 0
	for {
		_, err := s.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != frames {
		t.Errorf("decoded %d frames, want %d", n, frames)
	}
}
