package chip8

import "fmt"

// Op identifies a decoded CHIP-8 operation.
type Op byte

const (
	Invalid Op = iota
	CLS        // 000E clear the display
	RET        // 00EE return from subroutine
	JP         // 1nnn jump
	CALL       // 2nnn call subroutine
	SE         // 3xkk skip if Vx == kk
	SNE        // 4xkk skip if Vx != kk
	SEV        // 5xy0 skip if Vx == Vy
	LD         // 6xkk Vx = kk
	ADD        // 7xkk Vx += kk
	LDV        // 8xy0 Vx = Vy
	OR         // 8xy1
	AND        // 8xy2
	XOR        // 8xy3
	ADDV       // 8xy4 Vx += Vy, VF = carry
	SUB        // 8xy5 Vx -= Vy, VF = not borrow
	SHR        // 8xy6 Vx >>= 1, VF = bit shifted out
	SUBN       // 8xy7 Vx = Vy - Vx, VF = not borrow
	SHL        // 8xyE Vx <<= 1, VF = bit shifted out
	SNEV       // 9xy0 skip if Vx != Vy
	LDI        // Annn I = nnn
	JPV0       // Bnnn jump to nnn + V0
	RND        // Cxkk Vx = random & kk
	DRW        // Dxyn draw sprite
	SKP        // Ex9E skip if key Vx pressed
	SKNP       // ExA1 skip if key Vx not pressed
	LDVDT      // Fx07 Vx = DT
	LDK        // Fx0A wait for key, Vx = key
	LDDT       // Fx15 DT = Vx
	LDST       // Fx18 ST = Vx
	ADDI       // Fx1E I += Vx
	LDF        // Fx29 I = glyph address of Vx
	LDB        // Fx33 store BCD of Vx at I
	STM        // Fx55 store V0..Vx at I
	LDM        // Fx65 load V0..Vx from I
)

var opNames = [...]string{
	Invalid: "???",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SE:      "SE",
	SNE:     "SNE",
	SEV:     "SEV",
	LD:      "LD",
	ADD:     "ADD",
	LDV:     "LDV",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADDV:    "ADDV",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNEV:    "SNEV",
	LDI:     "LDI",
	JPV0:    "JPV0",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	LDVDT:   "LDVDT",
	LDK:     "LDK",
	LDDT:    "LDDT",
	LDST:    "LDST",
	ADDI:    "ADDI",
	LDF:     "LDF",
	LDB:     "LDB",
	STM:     "STM",
	LDM:     "LDM",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", byte(o))
}

// Skip reports whether the operation conditionally skips the next
// instruction.
func (o Op) Skip() bool {
	switch o {
	case SE, SNE, SEV, SNEV, SKP, SKNP:
		return true
	}
	return false
}

// aluOps maps the low nibble of family 8 to its operation.
var aluOps = [16]Op{
	0x0: LDV,
	0x1: OR,
	0x2: AND,
	0x3: XOR,
	0x4: ADDV,
	0x5: SUB,
	0x6: SHR,
	0x7: SUBN,
	0xe: SHL,
}

// timerOps maps the low byte of family F to its operation.
var timerOps = map[byte]Op{
	0x07: LDVDT,
	0x0a: LDK,
	0x15: LDDT,
	0x18: LDST,
	0x1e: ADDI,
	0x29: LDF,
	0x33: LDB,
	0x55: STM,
	0x65: LDM,
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Word uint16
	Op   Op

	X, Y byte   // register indexes
	N    byte   // low nibble
	KK   byte   // low byte
	NNN  uint16 // low 12 bits
}

// Family returns the top nibble of the instruction word.
func (in Instruction) Family() byte { return byte(in.Word >> 12) }

// Decode splits w into its fields and identifies its operation.
// It returns UnknownInstruction, along with the raw fields, if w does not
// encode a known operation.
func Decode(w uint16) (Instruction, error) {
	in := Instruction{
		Word: w,
		X:    byte(w>>8) & 0xf,
		Y:    byte(w>>4) & 0xf,
		N:    byte(w) & 0xf,
		KK:   byte(w),
		NNN:  w & 0xfff,
	}
	switch in.Family() {
	case 0x0:
		switch in.KK {
		case 0x0e:
			in.Op = CLS
		case 0xee:
			in.Op = RET
		}
	case 0x1:
		in.Op = JP
	case 0x2:
		in.Op = CALL
	case 0x3:
		in.Op = SE
	case 0x4:
		in.Op = SNE
	case 0x5:
		in.Op = SEV
	case 0x6:
		in.Op = LD
	case 0x7:
		in.Op = ADD
	case 0x8:
		in.Op = aluOps[in.N]
	case 0x9:
		in.Op = SNEV
	case 0xa:
		in.Op = LDI
	case 0xb:
		in.Op = JPV0
	case 0xc:
		in.Op = RND
	case 0xd:
		in.Op = DRW
	case 0xe:
		switch in.KK {
		case 0x9e:
			in.Op = SKP
		case 0xa1:
			in.Op = SKNP
		}
	case 0xf:
		in.Op = timerOps[in.KK]
	}
	if in.Op == Invalid {
		return in, UnknownInstruction
	}
	return in, nil
}

// String returns the instruction in conventional assembler syntax.
func (in Instruction) String() string {
	switch in.Op {
	case CLS, RET:
		return in.Op.String()
	case JP, CALL:
		return fmt.Sprintf("%s #%.3x", in.Op, in.NNN)
	case SE, SNE, LD, ADD, RND:
		return fmt.Sprintf("%s V%X, #%.2x", in.Op, in.X, in.KK)
	case SEV:
		return fmt.Sprintf("SE V%X, V%X", in.X, in.Y)
	case SNEV:
		return fmt.Sprintf("SNE V%X, V%X", in.X, in.Y)
	case LDV:
		return fmt.Sprintf("LD V%X, V%X", in.X, in.Y)
	case ADDV:
		return fmt.Sprintf("ADD V%X, V%X", in.X, in.Y)
	case OR, AND, XOR, SUB, SUBN:
		return fmt.Sprintf("%s V%X, V%X", in.Op, in.X, in.Y)
	case SHR, SHL, SKP, SKNP:
		return fmt.Sprintf("%s V%X", in.Op, in.X)
	case LDI:
		return fmt.Sprintf("LD I, #%.3x", in.NNN)
	case JPV0:
		return fmt.Sprintf("JP V0, #%.3x", in.NNN)
	case DRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", in.X, in.Y, in.N)
	case LDVDT:
		return fmt.Sprintf("LD V%X, DT", in.X)
	case LDK:
		return fmt.Sprintf("LD V%X, K", in.X)
	case LDDT:
		return fmt.Sprintf("LD DT, V%X", in.X)
	case LDST:
		return fmt.Sprintf("LD ST, V%X", in.X)
	case ADDI:
		return fmt.Sprintf("ADD I, V%X", in.X)
	case LDF:
		return fmt.Sprintf("LD F, V%X", in.X)
	case LDB:
		return fmt.Sprintf("LD B, V%X", in.X)
	case STM:
		return fmt.Sprintf("LD [I], V%X", in.X)
	case LDM:
		return fmt.Sprintf("LD V%X, [I]", in.X)
	default:
		return fmt.Sprintf("DW #%.4x", in.Word)
	}
}
