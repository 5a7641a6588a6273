package chip8

import (
	"fmt"
	"strings"
)

// StackDepth is the maximum number of nested subroutine calls.
const StackDepth = 16

// Stack implements the CHIP-8 call stack of return addresses.
type Stack struct {
	Addrs [StackDepth]uint16
	Ptr   byte
}

// Push pushes addr, failing with Overflow if the stack is full.
func (s *Stack) Push(addr uint16) error {
	if s.Ptr == StackDepth {
		return Overflow
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
	return nil
}

// Pop removes and returns the most recently pushed address,
// failing with Underflow if the stack is empty.
func (s *Stack) Pop() (uint16, error) {
	if s.Ptr == 0 {
		return 0, Underflow
	}
	s.Ptr--
	return s.Addrs[s.Ptr], nil
}

// Len reports the number of addresses on the stack.
func (s *Stack) Len() int { return int(s.Ptr) }

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Ptr] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.3x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
