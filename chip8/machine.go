package chip8

import "fmt"

// Machine is a CHIP-8 CPU attached to its Bus.
// It is not safe for concurrent use.
type Machine struct {
	CPU *CPU
	Bus *Bus

	halt error
}

// NewMachine returns a Machine with the font installed and rom loaded at
// EntryPoint. The CPU's random number generator is seeded with seed.
func NewMachine(rom []byte, seed uint64) (*Machine, error) {
	m := &Machine{
		CPU: NewCPU(seed),
		Bus: NewBus(),
	}
	if err := m.Bus.Write(FontAddr, font[:]); err != nil {
		return nil, err
	}
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// Load writes rom into memory at EntryPoint.
func (m *Machine) Load(rom []byte) error {
	if err := m.Bus.Write(EntryPoint, rom); err != nil {
		return fmt.Errorf("loading %d byte program: %w", len(rom), err)
	}
	return nil
}

// Step executes one instruction. Once a Step fails the Machine is halted
// and every later call returns the same error without executing anything.
func (m *Machine) Step() error {
	if m.halt != nil {
		return m.halt
	}
	if err := m.CPU.Step(m.Bus); err != nil {
		m.halt = err
		return err
	}
	return nil
}

// Halted returns the error that halted the Machine, or nil.
func (m *Machine) Halted() error { return m.halt }

func (m *Machine) TickTimers() { m.CPU.TickTimers() }
func (m *Machine) SetKey(k Key) { m.Bus.SetKey(k) }
func (m *Machine) Frame() Frame { return m.Bus.Frame() }

// Sound reports whether the sound timer is running.
func (m *Machine) Sound() bool { return m.CPU.ST > 0 }

// Next decodes the instruction at PC without executing it.
func (m *Machine) Next() (Instruction, error) {
	hi, err := m.Bus.Read(m.CPU.PC)
	if err != nil {
		return Instruction{}, err
	}
	lo, err := m.Bus.Read(m.CPU.PC + 1)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(short(hi, lo))
}

// Waiting reports whether the Machine is blocked on a key press.
func (m *Machine) Waiting() bool {
	in, err := m.Next()
	return err == nil && in.Op == LDK && !m.Bus.Key().Valid()
}

// State is a copy of the visible machine state, for inspection
// outside the goroutine that steps the Machine.
type State struct {
	V     [16]byte
	I     uint16
	PC    uint16
	DT    byte
	ST    byte
	Stack Stack
	Key   Key
	Mem   Memory
	Frame Frame
	Halt  error
}

// State returns a copy of the Machine's state.
func (m *Machine) State() *State {
	return &State{
		V:     m.CPU.V,
		I:     m.CPU.I,
		PC:    m.CPU.PC,
		DT:    m.CPU.DT,
		ST:    m.CPU.ST,
		Stack: m.CPU.Stack,
		Key:   m.Bus.Key(),
		Mem:   m.Bus.mem,
		Frame: m.Bus.Frame(),
		Halt:  m.halt,
	}
}

// Instruction decodes the instruction at PC.
func (s *State) Instruction() (Instruction, error) {
	if int(s.PC)+1 >= MemSize {
		return Instruction{}, OutOfBounds
	}
	return Decode(short(s.Mem[s.PC], s.Mem[s.PC+1]))
}
