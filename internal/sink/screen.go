package sink

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/1F47E/go-asciireel/internal/apperr"
	"github.com/1F47E/go-asciireel/internal/render"
	"github.com/1F47E/go-asciireel/pkg/logger"
)

// screenDriver is the subset of tcell.Screen the sink uses.
type screenDriver interface {
	Init() error
	Fini()
	Clear()
	Show()
	Size() (int, int)
	SetStyle(style tcell.Style)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	PollEvent() tcell.Event
}

var screenStyle = tcell.StyleDefault.Background(tcell.ColorBlack)

// Screen draws coloured cells through tcell. Esc, q or Ctrl-C call onQuit.
type Screen struct {
	s      screenDriver
	onQuit func()
	once   sync.Once
	events sync.WaitGroup
}

func NewScreen(onQuit func()) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, apperr.Sink("tcell: %w", err)
	}
	return newScreen(s, onQuit)
}

func newScreen(d screenDriver, onQuit func()) (*Screen, error) {
	if err := d.Init(); err != nil {
		return nil, apperr.Sink("tcell init: %w", err)
	}
	d.SetStyle(screenStyle)
	d.Clear()
	s := &Screen{s: d, onQuit: onQuit}
	s.events.Add(1)
	go s.pollEvents()
	return s, nil
}

func (s *Screen) pollEvents() {
	defer s.events.Done()
	log := logger.Log.WithField("scope", "screen")
	for {
		ev := s.s.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if key.Key() == tcell.KeyEscape || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q' {
			log.Debug("quit requested")
			if s.onQuit != nil {
				s.onQuit()
			}
		}
	}
}

func (s *Screen) Write(out render.Output) error {
	g := out.Grid
	w, h := s.s.Size()
	for y := 0; y < g.Rows && y < h; y++ {
		for x := 0; x < g.Columns && x < w; x++ {
			c := g.At(x, y)
			style := screenStyle.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			s.s.SetContent(x, y, c.Glyph, nil, style)
		}
	}
	s.s.Show()
	return nil
}

func (s *Screen) Close() error {
	s.once.Do(func() {
		s.s.Fini()
		s.events.Wait()
	})
	return nil
}

func (s *Screen) Abort() error {
	return s.Close()
}
