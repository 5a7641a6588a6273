package chip8

const (
	// MemSize is the size of the CHIP-8 address space.
	MemSize = 0x1000

	// EntryPoint is where program images are loaded and execution begins.
	EntryPoint = 0x200
)

// Memory is the flat CHIP-8 address space. Addresses below EntryPoint are
// reserved for the built-in font.
type Memory [MemSize]byte

// Read returns the byte at addr, or OutOfBounds if addr is past the end of
// memory.
func (m *Memory) Read(addr uint16) (byte, error) {
	if int(addr) >= MemSize {
		return 0, OutOfBounds
	}
	return m[addr], nil
}

// Write copies b into memory starting at addr. It fails with OutOfBounds,
// writing nothing, if addr+len(b) reaches the end of memory. A write may not
// touch the last byte of memory.
func (m *Memory) Write(addr uint16, b []byte) error {
	if int(addr)+len(b) >= MemSize {
		return OutOfBounds
	}
	copy(m[addr:], b)
	return nil
}
