package host

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/golang/glog"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/nip/chip8"
)

// GUI is a Frontend that draws in a window.
type GUI struct {
	Title   string
	Scale   int // initial window size as a multiple of the display
	FrameHz int
}

// NewGUI returns a GUI with a window ten times the display size.
func NewGUI() *GUI {
	return &GUI{Title: "nip", Scale: 10, FrameHz: 60}
}

type (
	update struct{}
	quit   struct{}
)

func (g *GUI) Run(c Console, done <-chan struct{}) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		runErr = g.run(s, c, done)
	})
	return runErr
}

func (g *GUI) run(s screen.Screen, c Console, done <-chan struct{}) error {
	scale := max(g.Scale, 1)
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  g.Title,
		Width:  chip8.Width * scale,
		Height: chip8.Height * scale,
	})
	if err != nil {
		return err
	}
	defer w.Release()

	dim := image.Point{chip8.Width, chip8.Height}
	buf, err := s.NewBuffer(dim)
	if err != nil {
		return err
	}
	defer buf.Release()
	tex, err := s.NewTexture(dim)
	if err != nil {
		return err
	}
	defer tex.Release()

	// The pump must be gone before the window is released.
	stop, pumped := make(chan struct{}), make(chan struct{})
	defer func() {
		close(stop)
		<-pumped
	}()
	go func() {
		pump(w, g.FrameHz, done, stop)
		close(pumped)
	}()

	var (
		sz    size.Event
		held  = chip8.NoKey
		last  chip8.Frame
		dirty = true
	)
	for {
		switch e := w.NextEvent().(type) {
		case quit:
			return nil

		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}
			dirty = true

		case key.Event:
			if e.Code == key.CodeEscape {
				return nil
			}
			k, ok := KeyForRune(e.Rune)
			if !ok {
				break
			}
			switch e.Direction {
			case key.DirPress:
				held = k
				c.SetKey(k)
			case key.DirRelease:
				if held == k {
					held = chip8.NoKey
					c.SetKey(chip8.NoKey)
				}
			}

		case paint.Event:
			dirty = true

		case update:
			if f := c.Frame(); dirty || f != last {
				DrawFrame(buf.RGBA(), &f)
				tex.Upload(image.Point{}, buf, buf.Bounds())
				w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
				w.Publish()
				last, dirty = f, false
			}

		case error:
			glog.Warning(e)

		default:
			glog.V(1).Infof("gui: %s", describe(e))
		}
	}
}

type sender interface {
	Send(event interface{})
}

// pump sends update events to w at hz until done or stop is closed.
// It sends quit only when done is closed.
func pump(w sender, hz int, done, stop <-chan struct{}) {
	t := time.NewTicker(period(hz))
	defer t.Stop()
	for {
		select {
		case <-t.C:
			w.Send(update{})
		case <-done:
			w.Send(quit{})
			return
		case <-stop:
			return
		}
	}
}

func describe(e any) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%#v", e)
}
