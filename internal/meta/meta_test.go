package meta

import (
	"reflect"
	"strings"
	"testing"

	"github.com/1F47E/go-asciireel/pkg/config"
)

func TestEncodeTitle(t *testing.T) {
	long := strings.Repeat("a", 200) + ".mp4"
	testCases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "path",
			source: "/videos/cat.mp4",
			want:   "cat.mp4",
		},
		{
			name:   "url kept whole",
			source: "https://example.com/v/cat.mp4",
			want:   "https://example.com/v/cat.mp4",
		},
		{
			name:   "long name",
			source: long,
			want:   strings.Repeat("a", 122) + "--.mp4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := encodeTitle(tc.source)
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
			if len(got) > maxTitleLen {
				t.Errorf("title is %d bytes", len(got))
			}
		})
	}
}

func TestArgs(t *testing.T) {
	m := Metadata{Title: "cat.mp4", Comment: "asciireel columns=80", timestamp: 86400}
	want := []string{
		"-metadata", "title=cat.mp4",
		"-metadata", "comment=asciireel columns=80",
		"-metadata", "creation_time=1970-01-02T00:00:00Z",
	}
	if got := m.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	empty := Metadata{Title: "x"}
	if got := empty.Args(); !reflect.DeepEqual(got, []string{"-metadata", "title=x"}) {
		t.Errorf("got %v", got)
	}
}

func TestNew(t *testing.T) {
	m := New("/tmp/clip.webm", config.Default())
	if m.Title != "clip.webm" {
		t.Errorf("title %q", m.Title)
	}
	if !strings.HasPrefix(m.Comment, Software+" columns=80") {
		t.Errorf("comment %q", m.Comment)
	}
	if m.FormatDatetime() == "" {
		t.Error("missing timestamp")
	}
}
