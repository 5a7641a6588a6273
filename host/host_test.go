package host

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/nip/chip8"
)

func TestKeyForRune(t *testing.T) {
	layout := []struct {
		runes string
		keys  []chip8.Key
	}{
		{"1234", []chip8.Key{0x1, 0x2, 0x3, 0xc}},
		{"qwer", []chip8.Key{0x4, 0x5, 0x6, 0xd}},
		{"asdf", []chip8.Key{0x7, 0x8, 0x9, 0xe}},
		{"zxcv", []chip8.Key{0xa, 0x0, 0xb, 0xf}},
		{"QWER", []chip8.Key{0x4, 0x5, 0x6, 0xd}},
	}
	seen := map[chip8.Key]bool{}
	for _, row := range layout {
		for i, r := range row.runes {
			k, ok := KeyForRune(r)
			if !ok || k != row.keys[i] {
				t.Errorf("KeyForRune(%q) = %v, %v; want %v", r, k, ok, row.keys[i])
			}
			seen[k] = true
		}
	}
	if len(seen) != 16 {
		t.Errorf("layout covers %d keys, want 16", len(seen))
	}
	for _, r := range "5ptg \n" {
		if k, ok := KeyForRune(r); ok {
			t.Errorf("KeyForRune(%q) = %v, want no key", r, k)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig is invalid: %v", err)
	}
	for _, mod := range []func(*Config){
		func(c *Config) { c.ClockHz = 0 },
		func(c *Config) { c.TimerHz = -60 },
		func(c *Config) { c.FrameHz = 0 },
	} {
		c := DefaultConfig()
		mod(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("Validate accepted %+v", c)
		}
	}
}

func TestRunHeadless(t *testing.T) {
	m, err := chip8.NewMachine([]byte{
		0x60, 0x05, // 0200: LD V0, #05
		0xf0, 0x15, // 0202: LD DT, V0
		0x12, 0x04, // 0204: JP #204
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ClockHz, cfg.TimerHz = 600, 60
	// Timers tick after the 10th, 20th and 30th instructions.
	if err := RunHeadless(m, cfg, 32); err != nil {
		t.Fatal(err)
	}
	if m.CPU.DT != 2 {
		t.Errorf("DT = %d, want 2", m.CPU.DT)
	}
	if m.CPU.PC != 0x204 {
		t.Errorf("PC = %.4x, want 0204", m.CPU.PC)
	}
}

func TestRunHeadlessHalt(t *testing.T) {
	m, _ := chip8.NewMachine([]byte{0x00, 0xee}, 0)
	err := RunHeadless(m, DefaultConfig(), 10)
	if !errors.Is(err, chip8.Underflow) {
		t.Fatalf("RunHeadless returned %v, want %v", err, chip8.Underflow)
	}
}

func testFrame() *chip8.Frame {
	d := chip8.NewBus()
	d.Draw(0, 0, 0x80)
	d.Draw(5, 0, 0x04)
	d.Draw(5, 1, 0x05)
	f := d.Frame()
	return &f
}

func TestImage(t *testing.T) {
	f := testFrame()
	m := Image(f, 3)
	if b := m.Bounds(); b.Dx() != 3*chip8.Width || b.Dy() != 3*chip8.Height {
		t.Fatalf("image bounds %v", b)
	}
	for _, c := range []struct {
		x, y int
		lit  bool
	}{
		{0, 0, true},
		{2, 2, true},
		{3, 0, false},
		{0, 3, false},
		{3*5 + 1, 3*0 + 1, false},
		{3*10 + 1, 3*0 + 1, true},
		{3*10 + 1, 3*1 + 1, true},
		{3*12 + 2, 3*1 + 2, true},
	} {
		want := Palette[0]
		if c.lit {
			want = Palette[1]
		}
		if got := m.RGBAAt(c.x, c.y); got != want {
			t.Errorf("pixel %d,%d = %v, want %v", c.x, c.y, got, want)
		}
	}
	if m := Image(f, 0); m.Bounds().Dx() != chip8.Width {
		t.Errorf("scale 0 gave width %d", m.Bounds().Dx())
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testFrame(), 2); err != nil {
		t.Fatal(err)
	}
	m, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := m.Bounds(); b.Dx() != 2*chip8.Width || b.Dy() != 2*chip8.Height {
		t.Errorf("decoded bounds %v", b)
	}
	if r, _, _, _ := m.At(1, 1).RGBA(); r>>8 != uint32(Palette[1].R) {
		t.Errorf("pixel 1,1 red = %.2x, want %.2x", r>>8, Palette[1].R)
	}
}

func TestDrawCells(t *testing.T) {
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(80, 25)
	drawCells(s, testFrame())
	s.Show()
	for _, c := range []struct {
		x, y int
		r    rune
	}{
		{0, 0, '─'},
		{0, 1, '│'},
		{1, 1, '▀'},
		{2, 1, ' '},
		{11, 1, '█'},
		{6, 1, ' '},
		{13, 1, '▄'},
		{chip8.Width + 1, 16, '│'},
		{1, 17, '─'},
	} {
		if r, _, _, _ := s.GetContent(c.x, c.y); r != c.r {
			t.Errorf("cell %d,%d = %q, want %q", c.x, c.y, r, c.r)
		}
	}
}

type fakeConsole struct {
	keys chan chip8.Key
}

func (c *fakeConsole) Frame() chip8.Frame { return *testFrame() }
func (c *fakeConsole) SetKey(k chip8.Key) { c.keys <- k }

func runTerm(t *testing.T) (tcell.SimulationScreen, *fakeConsole, chan struct{}, chan error) {
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	s.SetSize(80, 25)
	term := NewTerm()
	term.FrameHz = 100
	term.KeyTimeout = 20 * time.Millisecond
	term.screen = s
	var (
		c    = &fakeConsole{keys: make(chan chip8.Key, 10)}
		done = make(chan struct{})
		errc = make(chan error, 1)
	)
	go func() { errc <- term.Run(c, done) }()
	return s, c, done, errc
}

func nextKey(t *testing.T, c *fakeConsole) chip8.Key {
	t.Helper()
	select {
	case k := <-c.keys:
		return k
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for key")
	}
	panic("unreachable")
}

func TestTermKeys(t *testing.T) {
	s, c, done, errc := runTerm(t)

	s.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	if k := nextKey(t, c); k != 0x5 {
		t.Errorf("got key %v, want 5", k)
	}
	// Without a release event the latch expires.
	if k := nextKey(t, c); k != chip8.NoKey {
		t.Errorf("got key %v, want none", k)
	}

	s.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'V', tcell.ModNone)
	if k := nextKey(t, c); k != 0xf {
		t.Errorf("got key %v, want F", k)
	}

	close(done)
	if err := <-errc; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestTermEscape(t *testing.T) {
	s, _, _, errc := runTerm(t)
	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after escape")
	}
}

type recordSender chan interface{}

func (s recordSender) Send(e interface{}) { s <- e }

func TestPump(t *testing.T) {
	for _, c := range []struct {
		name string
		quit bool
	}{
		{"done", true},
		{"stop", false},
	} {
		t.Run(c.name, func(t *testing.T) {
			var (
				events   = make(recordSender, 1000)
				done     = make(chan struct{})
				stop     = make(chan struct{})
				finished = make(chan struct{})
			)
			go func() {
				pump(events, 1000, done, stop)
				close(finished)
			}()
			if e := <-events; e != (update{}) {
				t.Fatalf("first event = %#v, want update", e)
			}
			if c.quit {
				close(done)
			} else {
				close(stop)
			}
			select {
			case <-finished:
			case <-time.After(time.Second):
				t.Fatal("pump did not return")
			}
			var last interface{}
			for len(events) > 0 {
				last = <-events
			}
			if got := last == (quit{}); got != c.quit {
				t.Errorf("last event %#v, want quit %v", last, c.quit)
			}
			time.Sleep(5 * time.Millisecond)
			if n := len(events); n != 0 {
				t.Errorf("%d events sent after pump returned", n)
			}
		})
	}
}
