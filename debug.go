package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/nip/chip8"
	"github.com/nf/nip/host"
)

type debugger struct {
	run *host.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	brk     int // -1 if unset
	watches []uint16
	rom     []byte
}

var commands = []string{"pause", "cont", "step", "b", "w", "reset", "exit"}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
		brk: -1,
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range commands {
			if strings.HasPrefix(c, t) && c != t {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		d.exec(cmd)
	})
	return d
}

// exec runs a console command other than exit. Runner calls are made on
// their own goroutines so that the console never waits on the machine.
func (d *debugger) exec(line string) {
	cmd, arg, hasArg := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "pause", "p":
		go d.run.Debug(host.Pause, 0)
	case "cont", "c":
		go d.run.Debug(host.Continue, 0)
	case "step", "s":
		go d.run.Debug(host.Step, 0)
	case "b", "break":
		if !hasArg {
			d.mu.Lock()
			d.brk = -1
			d.mu.Unlock()
			go d.run.Debug(host.ClearBreak, 0)
			d.logf("cleared break")
			return
		}
		addr, err := parseAddr(arg)
		if err != nil {
			d.logf("%v", err)
			return
		}
		d.mu.Lock()
		d.brk = int(addr)
		d.mu.Unlock()
		go d.run.Debug(host.Break, addr)
		d.logf("set break %.3x", addr)
	case "w", "watch":
		addr, err := parseAddr(arg)
		if err != nil {
			d.logf("%v", err)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, addr)
		d.mu.Unlock()
		d.logf("watching %.3x", addr)
	case "reset":
		rom := d.romCopy()
		go func() {
			if err := d.run.Swap(rom); err != nil {
				d.logf("reset: %v", err)
			}
		}()
	default:
		d.logf("unknown command %q", cmd)
	}
}

// parseAddr parses a hexadecimal address, optionally prefixed by # or 0x.
func parseAddr(s string) (uint16, error) {
	t := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "#"), "0x")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil || v >= chip8.MemSize {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) logf(format string, args ...any) {
	fmt.Fprintf(d.log, format+"\n", args...)
}

func (d *debugger) setROM(rom []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rom = rom
}

func (d *debugger) romCopy() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.rom...)
}

func (d *debugger) StateFunc(s *chip8.State, k host.StateKind) {
	var (
		watch = d.watchContent(s)
		state string
	)
	if k != host.ClearState && k != host.QuietState {
		state = stateMsg(s, k)
	}
	if k == host.HaltState {
		d.logf("halted: %v", s.Halt)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case host.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case host.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != host.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(s *chip8.State, k host.StateKind) string {
	var (
		b    strings.Builder
		kind = "       "
	)
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.PauseState:
		kind = "[pause]"
	case host.HaltState:
		kind = "[HALT!]"
	}
	in, _ := s.Instruction()
	fmt.Fprintf(&b, "%.4x %-16v %s", s.PC, in, kind)
	if s.Halt != nil {
		fmt.Fprintf(&b, " %v", s.Halt)
	}
	b.WriteString("\nV")
	for _, v := range s.V {
		fmt.Fprintf(&b, " %.2x", v)
	}
	fmt.Fprintf(&b, "\nI %.4x DT %.2x ST %.2x key %v stack %v", s.I, s.DT, s.ST, s.Key, s.Stack)
	return b.String()
}

func (d *debugger) watchContent(s *chip8.State) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if d.brk >= 0 {
		fmt.Fprintf(&b, "[%.3x] brk!\n", d.brk)
	}
	for _, addr := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.3x] %.2x", addr, s.Mem[addr])
	}
	return b.String()
}
