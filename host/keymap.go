package host

import (
	"unicode"

	"github.com/nf/nip/chip8"
)

// keyRunes lays the hexadecimal keypad over the left hand side of
// a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D      q w e r
//	7 8 9 E  <-  a s d f
//	A 0 B F      z x c v
var keyRunes = map[rune]chip8.Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyForRune returns the logical key for the physical key that types r.
func KeyForRune(r rune) (chip8.Key, bool) {
	k, ok := keyRunes[unicode.ToLower(r)]
	if !ok {
		return chip8.NoKey, false
	}
	return k, true
}
