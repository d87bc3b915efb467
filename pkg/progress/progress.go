// Package progress wraps progressbar for frame counting on stderr.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar counts frames. A Bar with an unknown total renders as a spinner.
type Bar struct {
	bar   *progressbar.ProgressBar
	count int
}

func New(max int, desc string) *Bar {
	return NewWriter(os.Stderr, max, desc)
}

func NewWriter(w io.Writer, max int, desc string) *Bar {
	if max <= 0 {
		max = -1
	}
	return &Bar{bar: progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]/[reset]",
			SaucerHead:    "[green]/[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (b *Bar) Add(n int) {
	b.count += n
	_ = b.bar.Add(n)
}

// Frame advances the bar by one; it matches core.Options.OnFrame.
func (b *Bar) Frame(int) {
	b.Add(1)
}

func (b *Bar) Count() int {
	return b.count
}

func (b *Bar) Finish() {
	_ = b.bar.Finish()
}
