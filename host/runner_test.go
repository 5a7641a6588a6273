package host

import (
	"errors"
	"testing"
	"time"

	"github.com/nf/nip/chip8"
)

// fakeUI runs f as the frontend.
type fakeUI func(c Console, done <-chan struct{}) error

func (f fakeUI) Run(c Console, done <-chan struct{}) error { return f(c, done) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ClockHz = 2000
	cfg.FrameHz = 200
	return cfg
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunnerHalt(t *testing.T) {
	r, err := NewRunner(testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = r.Run([]byte{0x60, 0x01, 0x00, 0xee})
	if !errors.Is(err, chip8.Underflow) {
		t.Fatalf("Run returned %v, want %v", err, chip8.Underflow)
	}
	var h chip8.HaltError
	if !errors.As(err, &h) || h.Addr != 0x202 {
		t.Errorf("halted at %#v, want address 0202", err)
	}
	if err := r.Swap(nil); err != ErrStopped {
		t.Errorf("Swap after halt = %v, want %v", err, ErrStopped)
	}
}

func TestRunnerLoadError(t *testing.T) {
	r, _ := NewRunner(testConfig(), nil, nil)
	if err := r.Run(make([]byte, chip8.MemSize)); !errors.Is(err, chip8.OutOfBounds) {
		t.Fatalf("Run returned %v, want %v", err, chip8.OutOfBounds)
	}
}

func TestRunnerBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimerHz = 0
	if _, err := NewRunner(cfg, nil, nil); err == nil {
		t.Fatal("NewRunner accepted a zero timer rate")
	}
}

// keyGlyph waits for a key and draws its glyph at the top left.
var keyGlyph = []byte{
	0xf3, 0x0a, // 0200: LD V3, K
	0xf3, 0x29, // 0202: LD F, V3
	0xd0, 0x05, // 0204: DRW V0, V0, 5
	0x12, 0x06, // 0206: JP #206
}

func TestRunnerKeysAndFrames(t *testing.T) {
	ui := fakeUI(func(c Console, done <-chan struct{}) error {
		time.Sleep(10 * time.Millisecond)
		if f := c.Frame(); f.Lit() != 0 {
			t.Errorf("%d pixels lit before key press", f.Lit())
		}
		c.SetKey(0xf)
		// Glyph F is #f0 #80 #f0 #80 #80.
		waitFor(t, "glyph", func() bool { f := c.Frame(); return f.Lit() == 11 })
		f := c.Frame()
		if !f.At(0, 0) || !f.At(3, 2) || f.At(1, 3) {
			t.Error("frame does not show glyph F")
		}
		return nil
	})
	r, _ := NewRunner(testConfig(), ui, nil)
	if err := r.Run(keyGlyph); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if f := r.Frame(); f.Lit() != 11 {
		t.Errorf("final frame has %d pixels lit, want 11", f.Lit())
	}
}

func TestRunnerFrontendError(t *testing.T) {
	ui := fakeUI(func(Console, <-chan struct{}) error { return errors.New("no display") })
	r, _ := NewRunner(testConfig(), ui, nil)
	if err := r.Run(keyGlyph); err == nil || err.Error() != "frontend: no display" {
		t.Fatalf("Run returned %v", err)
	}
}

type stateReport struct {
	kind StateKind
	pc   uint16
	v0   byte
}

func recordStates(ch chan stateReport) StateFunc {
	return func(s *chip8.State, k StateKind) {
		if k == QuietState {
			return
		}
		select {
		case ch <- stateReport{k, s.PC, s.V[0]}:
		default:
		}
	}
}

func nextState(t *testing.T, ch chan stateReport) stateReport {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
	}
	panic("unreachable")
}

func TestRunnerDebug(t *testing.T) {
	states := make(chan stateReport, 100)
	var r *Runner
	ui := fakeUI(func(c Console, done <-chan struct{}) error {
		r.Debug(Break, 0x202)
		s := nextState(t, states)
		if s.kind != BreakState || s.pc != 0x202 || s.v0 == 0 {
			t.Fatalf("got %+v, want break at 0202 after ADD", s)
		}
		v0 := s.v0

		r.Debug(Step, 0)
		s = nextState(t, states)
		if s.kind != PauseState || s.pc != 0x200 || s.v0 != v0 {
			t.Fatalf("after step got %+v, want pause at 0200 with V0 %.2x", s, v0)
		}
		r.Debug(Step, 0)
		s = nextState(t, states)
		if s.kind != PauseState || s.pc != 0x202 || s.v0 != v0+1 {
			t.Fatalf("after step got %+v, want pause at 0202 with V0 %.2x", s, v0+1)
		}

		r.Debug(ClearBreak, 0)
		r.Debug(Continue, 0)
		if s = nextState(t, states); s.kind != ClearState {
			t.Fatalf("after continue got %+v", s)
		}
		r.Debug(Pause, 0)
		if s = nextState(t, states); s.kind != PauseState {
			t.Fatalf("after pause got %+v", s)
		}
		return nil
	})
	r, _ = NewRunner(testConfig(), ui, recordStates(states))
	err := r.Run([]byte{
		0x70, 0x01, // 0200: ADD V0, #01
		0x12, 0x00, // 0202: JP #200
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunnerDevSwap(t *testing.T) {
	cfg := testConfig()
	cfg.Dev = true
	states := make(chan stateReport, 100)
	var r *Runner
	ui := fakeUI(func(c Console, done <-chan struct{}) error {
		if s := nextState(t, states); s.kind != HaltState {
			t.Fatalf("got %+v, want halt", s)
		}
		select {
		case <-done:
			t.Fatal("runner stopped after halt in dev mode")
		default:
		}
		if err := r.Swap(make([]byte, chip8.MemSize)); !errors.Is(err, chip8.OutOfBounds) {
			t.Errorf("Swap with oversized program = %v", err)
		}
		if err := r.Swap(keyGlyph); err != nil {
			t.Fatal(err)
		}
		if s := nextState(t, states); s.kind != ClearState || s.pc != chip8.EntryPoint {
			t.Fatalf("after swap got %+v", s)
		}
		c.SetKey(0x1)
		waitFor(t, "glyph", func() bool { f := c.Frame(); return f.Lit() > 0 })
		return nil
	})
	r, _ = NewRunner(cfg, ui, recordStates(states))
	if err := r.Run([]byte{0x00, 0xee}); err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestRunnerStop(t *testing.T) {
	r, _ := NewRunner(testConfig(), nil, nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Stop()
		r.Stop()
	}()
	if err := r.Run(keyGlyph); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	r.SetKey(1)
	r.Debug(Pause, 0)
}

func TestBacklog(t *testing.T) {
	var (
		b     backlog
		addrs []uint16
	)
	collect := func(_ string, args ...any) { addrs = append(addrs, args[0].(uint16)) }
	b.emit(collect)
	if len(addrs) != 0 {
		t.Fatalf("empty backlog emitted %d lines", len(addrs))
	}

	for i := 0; i < 3; i++ {
		b.add(uint16(i), chip8.Instruction{})
	}
	b.emit(collect)
	if len(addrs) != 3 || addrs[0] != 0 || addrs[2] != 2 {
		t.Errorf("emitted %v, want [0 1 2]", addrs)
	}

	b.reset()
	addrs = nil
	for i := 0; i < maxBacklog+5; i++ {
		b.add(uint16(i), chip8.Instruction{})
	}
	b.emit(collect)
	if len(addrs) != maxBacklog || addrs[0] != 5 || addrs[maxBacklog-1] != maxBacklog+4 {
		t.Errorf("emitted %d entries from %d to %d, want %d from 5 to %d",
			len(addrs), addrs[0], addrs[len(addrs)-1], maxBacklog, maxBacklog+4)
	}
}
