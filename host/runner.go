// Package host drives a CHIP-8 machine in real time and connects it to
// a window, a terminal or nothing at all.
package host

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/nf/nip/chip8"
)

// Console is the view of a running machine given to a Frontend.
type Console interface {
	Frame() chip8.Frame
	SetKey(chip8.Key)
}

// Frontend presents a running machine to the user.
type Frontend interface {
	// Run shows frames from c and feeds it keys until done is closed
	// or the user quits.
	Run(c Console, done <-chan struct{}) error
}

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // running, or reset
	PauseState                  // paused by the debugger
	BreakState                  // paused at a breakpoint
	HaltState                   // the program halted
	QuietState                  // periodic refresh while running
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case PauseState:
		return "pause"
	case BreakState:
		return "break"
	case HaltState:
		return "halt"
	case QuietState:
		return "quiet"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// StateFunc receives snapshots of the machine. It is called on the
// Runner's goroutine and must not block.
type StateFunc func(*chip8.State, StateKind)

// DebugOp is a debugger command understood by Runner.Debug.
type DebugOp int

const (
	Pause DebugOp = iota
	Continue
	Step
	Break      // pause before executing the instruction at an address
	ClearBreak // remove the breakpoint
)

type debugReq struct {
	op   DebugOp
	addr uint16
}

// ErrStopped is returned by Swap after the Runner has stopped.
var ErrStopped = errors.New("runner stopped")

// Runner owns a machine and steps it on a single goroutine at the
// configured clock rate, ticking its timers alongside.
// Frontends and debuggers reach the machine only through the Runner.
type Runner struct {
	cfg   Config
	ui    Frontend
	state StateFunc

	keys    chan chip8.Key
	frames  chan chan chip8.Frame
	swap    chan []byte
	swapErr chan error
	debug   chan debugReq
	quit    chan struct{}
	done    chan struct{}
	stop    sync.Once

	// Set before done is closed.
	err   error
	final chip8.Frame
}

// NewRunner returns a Runner that presents the machine with ui, which
// may be nil, and reports machine state to f, which may also be nil.
func NewRunner(cfg Config, ui Frontend, f StateFunc) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		ui:      ui,
		state:   f,
		keys:    make(chan chip8.Key),
		frames:  make(chan chan chip8.Frame),
		swap:    make(chan []byte),
		swapErr: make(chan error),
		debug:   make(chan debugReq),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Run loads rom into a new machine and runs it until the program halts,
// the frontend exits or Stop is called. In dev mode a halted program
// leaves the Runner waiting for Swap.
// Run returns the error that halted the program, if any.
func (r *Runner) Run(rom []byte) error {
	m, err := chip8.NewMachine(rom, r.cfg.Seed)
	if err != nil {
		return err
	}
	glog.Infof("loaded %d byte program", len(rom))
	go r.loop(m)
	if r.ui != nil {
		err := r.ui.Run(r, r.done)
		r.Stop()
		if err != nil {
			<-r.done
			return fmt.Errorf("frontend: %v", err)
		}
	}
	<-r.done
	return r.err
}

// Stop ends a Run.
func (r *Runner) Stop() {
	r.stop.Do(func() { close(r.quit) })
}

// Frame returns a copy of the display.
func (r *Runner) Frame() chip8.Frame {
	c := make(chan chip8.Frame, 1)
	select {
	case r.frames <- c:
		return <-c
	case <-r.done:
		return r.final
	}
}

// SetKey latches k as the pressed key, or clears the latch if k is NoKey.
func (r *Runner) SetKey(k chip8.Key) {
	select {
	case r.keys <- k:
	case <-r.done:
	}
}

// Swap replaces the running machine with a new one running rom.
// Debugger breakpoints and pause state carry over.
func (r *Runner) Swap(rom []byte) error {
	select {
	case r.swap <- rom:
		return <-r.swapErr
	case <-r.done:
		return ErrStopped
	}
}

// Debug sends a debugger command. The addr argument is used by Break.
func (r *Runner) Debug(op DebugOp, addr uint16) {
	select {
	case r.debug <- debugReq{op, addr}:
	case <-r.done:
	}
}

func (r *Runner) loop(m *chip8.Machine) {
	defer close(r.done)
	defer func() { r.final = m.Frame() }()

	var (
		clock  = time.NewTicker(period(r.cfg.ClockHz))
		timer  = time.NewTicker(period(r.cfg.TimerHz))
		status = time.NewTicker(period(r.cfg.FrameHz))

		trace   backlog
		paused  bool
		resumed bool // ignore the breakpoint for one step
		brk     = -1
	)
	defer clock.Stop()
	defer timer.Stop()
	defer status.Stop()

	report := func(k StateKind) {
		if r.state != nil {
			r.state(m.State(), k)
		}
	}
	step := func() {
		if m.Halted() != nil {
			return
		}
		pc := m.CPU.PC
		if !resumed && brk == int(pc) {
			paused = true
			report(BreakState)
			return
		}
		resumed = false
		in, _ := m.Next()
		trace.add(pc, in)
		if err := m.Step(); err != nil {
			glog.Errorf("halted: %v", err)
			if r.cfg.Dev {
				glog.Info("last instructions:")
				trace.emit(glog.Infof)
			}
			report(HaltState)
		}
	}

	for {
		select {
		case <-r.quit:
			return
		case <-clock.C:
			if paused {
				break
			}
			step()
			if err := m.Halted(); err != nil && !r.cfg.Dev {
				r.err = err
				return
			}
		case <-timer.C:
			if !paused && m.Halted() == nil {
				m.TickTimers()
			}
		case <-status.C:
			if !paused && m.Halted() == nil {
				report(QuietState)
			}
		case k := <-r.keys:
			m.SetKey(k)
		case c := <-r.frames:
			c <- m.Frame()
		case rom := <-r.swap:
			nm, err := chip8.NewMachine(rom, r.cfg.Seed)
			if err != nil {
				r.swapErr <- err
				break
			}
			m = nm
			trace.reset()
			resumed = false
			glog.Infof("reset with %d byte program", len(rom))
			if paused {
				report(PauseState)
			} else {
				report(ClearState)
			}
			r.swapErr <- nil
		case req := <-r.debug:
			switch req.op {
			case Pause:
				paused = true
				report(PauseState)
			case Continue:
				if paused {
					paused, resumed = false, true
					report(ClearState)
				}
			case Step:
				paused, resumed = true, true
				step()
				if m.Halted() == nil {
					report(PauseState)
				}
			case Break:
				brk = int(req.addr)
				glog.V(1).Infof("break at %.4x", req.addr)
			case ClearBreak:
				brk = -1
			}
		}
	}
}
