// Package meta builds the container tags written into rendered videos.
package meta

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/1F47E/go-asciireel/pkg/config"
)

const (
	Software = "asciireel"

	maxTitleLen     = 128
	titleCutMarker  = "--"
	sourceURLMarker = "://"
)

type Metadata struct {
	Title     string
	Comment   string
	timestamp int64
}

func New(source string, cfg config.Config) Metadata {
	return Metadata{
		Title:     encodeTitle(source),
		Comment:   fmt.Sprintf("%s %s", Software, cfg),
		timestamp: time.Now().Unix(),
	}
}

// Args returns ffmpeg -metadata pairs in a fixed order.
func (m Metadata) Args() []string {
	pairs := [][2]string{
		{"title", m.Title},
		{"comment", m.Comment},
		{"creation_time", m.FormatDatetime()},
	}
	args := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		args = append(args, "-metadata", p[0]+"="+p[1])
	}
	return args
}

func (m Metadata) FormatDatetime() string {
	if m.timestamp == 0 {
		return ""
	}
	return time.Unix(m.timestamp, 0).UTC().Format(time.RFC3339)
}

func (m Metadata) Print() string {
	return fmt.Sprintf("Title: %s, Created: %s, %s", m.Title, m.FormatDatetime(), m.Comment)
}

// encodeTitle keeps the source's base name, shortened with a marker when
// it is too long for a tag.
func encodeTitle(source string) string {
	name := source
	if !strings.Contains(source, sourceURLMarker) {
		name = filepath.Base(source)
	}
	if len(name) > maxTitleLen {
		ext := filepath.Ext(name)
		if len(ext) > maxTitleLen/2 {
			ext = ""
		}
		name = name[:maxTitleLen-len(ext)-len(titleCutMarker)] + titleCutMarker + ext
	}
	return name
}
