// Package chip8 provides an implementation of the CHIP-8 virtual machine:
// a CPU that executes one instruction per Step against a Bus connecting
// memory, a 64x32 monochrome display and a single-key input latch.
package chip8

import (
	"fmt"
	"math/rand/v2"

	"github.com/golang/glog"
)

// CPU holds the CHIP-8 registers, timers and call stack.
type CPU struct {
	V     [16]byte // general registers; VF doubles as the flag register
	I     uint16   // index register
	PC    uint16
	DT    byte // delay timer
	ST    byte // sound timer
	Stack Stack

	rand *rand.Rand
}

// NewCPU returns a CPU with PC at EntryPoint whose random number
// generator is seeded with seed.
func NewCPU(seed uint64) *CPU {
	return &CPU{
		PC:   EntryPoint,
		rand: rand.New(rand.NewPCG(seed, ^seed)),
	}
}

// TickTimers decrements the delay and sound timers if they are non-zero.
// The host calls it at 60 Hz.
func (c *CPU) TickTimers() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
}

// Step fetches, decodes and executes the instruction at PC.
// It returns a HaltError if the instruction cannot be fetched or decoded,
// or if executing it fails; in that case no state has been changed.
func (c *CPU) Step(b *Bus) error {
	pc := c.PC
	hi, err := b.Read(pc)
	if err != nil {
		return HaltError{HaltCode: OutOfBounds, Addr: pc}
	}
	lo, err := b.Read(pc + 1)
	if err != nil {
		return HaltError{HaltCode: OutOfBounds, Addr: pc}
	}
	in, err := Decode(short(hi, lo))
	if err != nil {
		return HaltError{HaltCode: UnknownInstruction, Instruction: in, Addr: pc}
	}
	glog.V(2).Infof("%.4x: %v", pc, in)
	if err := c.exec(b, in); err != nil {
		return HaltError{HaltCode: err.(HaltCode), Instruction: in, Addr: pc}
	}
	return nil
}

// exec performs in. It returns a HaltCode on failure, before any
// register, memory or display state has been modified.
func (c *CPU) exec(b *Bus, in Instruction) error {
	var (
		vx   = c.V[in.X]
		vy   = c.V[in.Y]
		next = c.PC + 2
	)
	switch in.Op {
	case CLS:
		b.ClearDisplay()
	case RET:
		addr, err := c.Stack.Pop()
		if err != nil {
			return err
		}
		next = addr
	case JP:
		next = in.NNN
	case CALL:
		if err := c.Stack.Push(c.PC + 2); err != nil {
			return err
		}
		next = in.NNN
	case SE:
		if vx == in.KK {
			next += 2
		}
	case SNE:
		if vx != in.KK {
			next += 2
		}
	case SEV:
		if vx == vy {
			next += 2
		}
	case SNEV:
		if vx != vy {
			next += 2
		}
	case LD:
		c.V[in.X] = in.KK
	case ADD:
		c.V[in.X] = vx + in.KK
	case LDV:
		c.V[in.X] = vy
	case OR:
		c.V[in.X] = vx | vy
	case AND:
		c.V[in.X] = vx & vy
	case XOR:
		c.V[in.X] = vx ^ vy
	case ADDV:
		sum := uint16(vx) + uint16(vy)
		c.V[in.X] = byte(sum)
		c.V[0xf] = bit(sum > 0xff)
	case SUB:
		c.V[0xf] = bit(vx >= vy)
		c.V[in.X] = vx - vy
	case SHR:
		c.V[0xf] = vx & 1
		c.V[in.X] = vx >> 1
	case SUBN:
		c.V[0xf] = bit(vy >= vx)
		c.V[in.X] = vy - vx
	case SHL:
		c.V[0xf] = vx >> 7
		c.V[in.X] = vx << 1
	case LDI:
		c.I = in.NNN
	case JPV0:
		next = in.NNN + uint16(c.V[0])
	case RND:
		c.V[in.X] = byte(c.rand.Uint32()) & in.KK
	case DRW:
		var rows [15]byte
		for i := range rows[:in.N] {
			row, err := b.Read(c.I + uint16(i))
			if err != nil {
				return err
			}
			rows[i] = row
		}
		collided := false
		for i, row := range rows[:in.N] {
			if b.Draw(vx, vy+byte(i), row) {
				collided = true
			}
		}
		c.V[0xf] = bit(collided)
	case SKP:
		if b.KeyPressed(vx) {
			next += 2
		}
	case SKNP:
		if !b.KeyPressed(vx) {
			next += 2
		}
	case LDVDT:
		c.V[in.X] = c.DT
	case LDK:
		// Poll: stay on this instruction until a key is latched.
		if k := b.Key(); k.Valid() {
			c.V[in.X] = byte(k)
		} else {
			next = c.PC
		}
	case LDDT:
		c.DT = vx
	case LDST:
		c.ST = vx
	case ADDI:
		c.I += uint16(vx)
	case LDF:
		c.I = FontAddr + uint16(vx)*GlyphSize
	case LDB:
		if err := b.Write(c.I, []byte{vx / 100, vx / 10 % 10, vx % 10}); err != nil {
			return err
		}
	case STM:
		if err := b.Write(c.I, c.V[:in.X+1]); err != nil {
			return err
		}
		c.I += uint16(in.X) + 1
	case LDM:
		var regs [16]byte
		for i := range regs[:in.X+1] {
			v, err := b.Read(c.I + uint16(i))
			if err != nil {
				return err
			}
			regs[i] = v
		}
		copy(c.V[:], regs[:in.X+1])
		c.I += uint16(in.X) + 1
	default:
		return UnknownInstruction
	}
	c.PC = next
	return nil
}

// HaltError is returned by Step if execution is halted by
// a malformed program or a bounds or stack fault.
type HaltError struct {
	HaltCode
	Instruction Instruction
	Addr        uint16
}

func (e HaltError) Error() string {
	if e.Instruction.Op == Invalid && e.HaltCode != UnknownInstruction {
		return fmt.Sprintf("%s fetching instruction at %.4x", e.HaltCode, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.4x", e.HaltCode, e.Instruction, e.Addr)
}

func (e HaltError) Unwrap() error { return e.HaltCode }

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	OutOfBounds        HaltCode = 0x01
	Overflow           HaltCode = 0x02
	Underflow          HaltCode = 0x03
	UnknownInstruction HaltCode = 0x04
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		OutOfBounds:        "memory access out of bounds",
		Overflow:           "stack overflow",
		Underflow:          "stack underflow",
		UnknownInstruction: "unknown instruction",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func (c HaltCode) Error() string { return c.String() }

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}

func bit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
