package expr

import "strings"

// RegisterBank is a read-only snapshot of the general-purpose registers at
// a breakpoint, laid out as a flat struct rather than the raw
// struct-punned-to-array the original evaluator indexed directly (REDESIGN
// FLAGS §9). The resolver returns an ordinal + width instead of a pointer
// into this struct, and the caller combines them.
type RegisterBank struct {
	EAX, ECX, EDX, EBX uint64
	ESP, EBP, ESI, EDI uint64

	R8, R9, R10, R11 uint64
	R12, R13, R14, R15 uint64

	RIP uint64

	Is64Bit bool
}

type regWidth int

const (
	width8Low regWidth = iota
	width8High
	width16
	width32
	width64
)

var gpr32Order = []string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
var gpr16Order = []string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
var gpr8LowOrder = []string{"al", "cl", "dl", "bl"}
var gpr8HighOrder = []string{"ah", "ch", "dh", "bh"}

func (b *RegisterBank) wordAt(ordinal int) uint64 {
	switch ordinal {
	case 0:
		return b.EAX
	case 1:
		return b.ECX
	case 2:
		return b.EDX
	case 3:
		return b.EBX
	case 4:
		return b.ESP
	case 5:
		return b.EBP
	case 6:
		return b.ESI
	case 7:
		return b.EDI
	case 8:
		return b.R8
	case 9:
		return b.R9
	case 10:
		return b.R10
	case 11:
		return b.R11
	case 12:
		return b.R12
	case 13:
		return b.R13
	case 14:
		return b.R14
	case 15:
		return b.R15
	default:
		return 0
	}
}

// resolveRegister recognizes a register mnemonic at s[pos:] and returns the
// ordinal into the flat bank, the width the mnemonic selects, and the
// cursor past the mnemonic. ok is false when nothing at pos names a
// register.
func resolveRegister(s string, pos int, is64Bit bool) (ordinal int, width regWidth, next int, ok bool) {
	rest := strings.ToLower(s[pos:])

	tryMatch := func(names []string, w regWidth) (int, regWidth, int, bool) {
		for i, name := range names {
			if strings.HasPrefix(rest, name) && !isIdentByte(nextByte(rest, len(name))) {
				return i, w, pos + len(name), true
			}
		}
		return 0, 0, pos, false
	}

	if is64Bit {
		if strings.HasPrefix(rest, "r") && len(rest) >= 2 {
			// R8-R15, with optional B/W/D size suffix.
			for n := 15; n >= 8; n-- {
				numStr := itoa(n)
				if strings.HasPrefix(rest, "r"+numStr) {
					afterNum := "r" + numStr
					w := width64
					consumed := len(afterNum)
					if len(rest) > consumed {
						switch rest[consumed] {
						case 'b':
							w = width8Low
							consumed++
						case 'w':
							w = width16
							consumed++
						case 'd':
							w = width32
							consumed++
						}
					}
					if !isIdentByte(nextByte(rest, consumed)) {
						return n, w, pos + consumed, true
					}
				}
			}
			// RAX/RCX/.../RDI, RSP, RBP, RSI, RDI at 64-bit width.
			full64 := []string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi"}
			if o, w, n, k := tryMatch(full64, width64); k {
				return o, w, n, k
			}
		}
	}

	if o, w, n, k := tryMatch(gpr32Order, width32); k {
		return o, w, n, k
	}
	if o, w, n, k := tryMatch(gpr16Order, width16); k {
		return o, w, n, k
	}
	if o, w, n, k := tryMatch(gpr8LowOrder, width8Low); k {
		return o, w, n, k
	}
	if o, w, n, k := tryMatch(gpr8HighOrder, width8High); k {
		return o, w, n, k
	}

	return 0, 0, pos, false
}

func nextByte(s string, i int) byte {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// readRegister loads a register's value at the resolved width, applying the
// +1 byte offset for the AH/BH/CH/DH high-byte forms.
func readRegister(bank *RegisterBank, ordinal int, width regWidth) uint64 {
	word := bank.wordAt(ordinal)
	switch width {
	case width8Low:
		return word & 0xFF
	case width8High:
		return (word >> 8) & 0xFF
	case width16:
		return word & 0xFFFF
	case width32:
		return word & 0xFFFFFFFF
	default:
		return word
	}
}
