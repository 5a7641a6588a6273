package host

import "github.com/nf/nip/chip8"

const maxBacklog = 100

// backlog remembers the most recently executed instructions,
// to be logged when a program halts.
type backlog struct {
	entries []traced
	n       int
}

type traced struct {
	addr uint16
	in   chip8.Instruction
}

func (b *backlog) add(addr uint16, in chip8.Instruction) {
	if b.n < len(b.entries) {
		b.entries[b.n] = traced{addr, in}
	} else {
		b.entries = append(b.entries, traced{addr, in})
	}
	b.n = (b.n + 1) % maxBacklog
}

// emit passes the remembered instructions to logf, oldest first.
func (b *backlog) emit(logf func(string, ...any)) {
	if len(b.entries) == 0 {
		return
	}
	for i := b.n; ; i++ {
		i %= len(b.entries)
		logf("%.4x: %v", b.entries[i].addr, b.entries[i].in)
		if (i+1)%maxBacklog == b.n {
			break
		}
	}
}

func (b *backlog) reset() {
	b.entries = b.entries[:0]
	b.n = 0
}
