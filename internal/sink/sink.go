// Package sink holds the places rendered frames go: a live terminal or a
// video file.
package sink

import (
	"github.com/1F47E/go-asciireel/internal/render"
)

// Sink receives rendered frames in order. Exactly one of Close (commit)
// or Abort (discard) is called, once.
type Sink interface {
	Write(out render.Output) error
	Close() error
	Abort() error
}
