package chip8

// Bus connects the CPU to memory, the display and the keypad.
// The CPU reaches those devices only through the Bus.
type Bus struct {
	mem Memory
	dsp Display
	kbd Keypad
}

// NewBus returns a Bus with zeroed memory, a blank display and no key
// pressed.
func NewBus() *Bus {
	return &Bus{kbd: NewKeypad()}
}

func (b *Bus) Read(addr uint16) (byte, error) { return b.mem.Read(addr) }
func (b *Bus) Write(addr uint16, data []byte) error { return b.mem.Write(addr, data) }

func (b *Bus) ClearDisplay() { b.dsp.Clear() }
func (b *Bus) Draw(x, y, row byte) bool { return b.dsp.Draw(x, y, row) }
func (b *Bus) Frame() Frame { return b.dsp.Buffer() }

func (b *Bus) SetKey(k Key) { b.kbd.Set(k) }
func (b *Bus) Key() Key { return b.kbd.Key() }
func (b *Bus) KeyPressed(k byte) bool { return b.kbd.Pressed(k) }

// Peek returns the byte at addr without bounds errors, for inspection
// by debuggers. Addresses past the end of memory read as zero.
func (b *Bus) Peek(addr uint16) byte {
	v, _ := b.mem.Read(addr)
	return v
}
