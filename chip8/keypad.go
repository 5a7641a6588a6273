package chip8

import "fmt"

// Key is a logical key of the hexadecimal keypad, 0 through 15,
// or NoKey.
type Key int8

// NoKey means no key is pressed.
const NoKey Key = -1

// Valid reports whether k is one of the 16 logical keys.
func (k Key) Valid() bool { return k >= 0 && k <= 0xf }

func (k Key) String() string {
	if !k.Valid() {
		return "none"
	}
	return fmt.Sprintf("%X", int8(k))
}

// Keypad latches at most one currently pressed key.
type Keypad struct {
	key Key
}

// NewKeypad returns a Keypad with no key pressed.
func NewKeypad() Keypad { return Keypad{key: NoKey} }

// Set replaces the latched key. Keys outside 0-15 clear the latch.
func (p *Keypad) Set(k Key) {
	if !k.Valid() {
		k = NoKey
	}
	p.key = k
}

// Key returns the latched key, or NoKey.
func (p *Keypad) Key() Key { return p.key }

// Pressed reports whether the latch holds exactly k.
func (p *Keypad) Pressed(k byte) bool {
	return p.key.Valid() && byte(p.key) == k
}
