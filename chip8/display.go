package chip8

const (
	Width  = 64
	Height = 32
)

// Frame is a copy of the display: one byte per pixel, row-major,
// each 0 or 1.
type Frame [Width * Height]byte

// At reports whether the pixel at x, y is lit.
// Coordinates wrap in the same way as Display.Draw.
func (f *Frame) At(x, y int) bool {
	return f[pixelIndex(x, y)] != 0
}

// Lit reports the number of lit pixels.
func (f *Frame) Lit() (n int) {
	for _, p := range f {
		n += int(p)
	}
	return n
}

// Display is the 64x32 monochrome bitmap.
type Display struct {
	pix Frame
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.pix = Frame{}
}

// Draw XORs the 8 bits of row, most significant first, into the row y
// starting at column x. Columns wrap at Width and y wraps at Height.
//
// Draw reports a collision if any target pixel was lit before the draw
// while the corresponding incoming bit is 0.
func (d *Display) Draw(x, y, row byte) (collided bool) {
	for i := 0; i < 8; i++ {
		bit := row >> (7 - i) & 1
		p := &d.pix[pixelIndex(int(x)+i, int(y))]
		if *p == 1 && bit == 0 {
			collided = true
		}
		*p ^= bit
	}
	return collided
}

// Buffer returns a copy of the display contents.
func (d *Display) Buffer() Frame { return d.pix }

func pixelIndex(x, y int) int {
	x %= Width
	if x < 0 {
		x += Width
	}
	y %= Height
	if y < 0 {
		y += Height
	}
	return y*Width + x
}
