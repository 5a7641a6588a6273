package host

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/nip/chip8"
)

// Term is a Frontend that draws in a terminal, two pixel rows to a
// character cell.
//
// Terminals report key presses but not releases, so Term releases the
// latched key once no key event has arrived for KeyTimeout.
type Term struct {
	FrameHz    int
	KeyTimeout time.Duration

	screen tcell.Screen // initialised; if nil Run opens the terminal
}

// NewTerm returns a Term with conventional timings.
func NewTerm() *Term {
	return &Term{
		FrameHz:    60,
		KeyTimeout: 200 * time.Millisecond,
	}
}

var (
	litStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	frameStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkGrey)
)

func (t *Term) Run(c Console, done <-chan struct{}) error {
	s := t.screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return err
		}
		if err := s.Init(); err != nil {
			return err
		}
	}
	defer s.Fini()
	s.HideCursor()
	s.Clear()

	var (
		events = make(chan tcell.Event)
		quit   = make(chan struct{})
	)
	defer close(quit)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	tick := time.NewTicker(period(t.FrameHz))
	defer tick.Stop()
	var (
		release <-chan time.Time
		last    chip8.Frame
		drawn   bool
	)
	for {
		select {
		case <-done:
			return nil
		case <-tick.C:
			if f := c.Frame(); !drawn || f != last {
				drawCells(s, &f)
				s.Show()
				last, drawn = f, true
			}
		case <-release:
			c.SetKey(chip8.NoKey)
			release = nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					if k, ok := KeyForRune(ev.Rune()); ok {
						c.SetKey(k)
						release = time.After(t.KeyTimeout)
					}
				}
			case *tcell.EventResize:
				drawn = false
				s.Sync()
			}
		}
	}
}

// drawCells renders f with half block characters inside a border.
func drawCells(s tcell.Screen, f *chip8.Frame) {
	for cy := 0; cy < chip8.Height/2; cy++ {
		for x := 0; x < chip8.Width; x++ {
			r := ' '
			switch top, bot := f.At(x, 2*cy), f.At(x, 2*cy+1); {
			case top && bot:
				r = '█'
			case top:
				r = '▀'
			case bot:
				r = '▄'
			}
			s.SetContent(x+1, cy+1, r, nil, litStyle)
		}
	}
	for x := 0; x < chip8.Width+2; x++ {
		s.SetContent(x, 0, '─', nil, frameStyle)
		s.SetContent(x, chip8.Height/2+1, '─', nil, frameStyle)
	}
	for y := 1; y <= chip8.Height/2; y++ {
		s.SetContent(0, y, '│', nil, frameStyle)
		s.SetContent(chip8.Width+1, y, '│', nil, frameStyle)
	}
}
