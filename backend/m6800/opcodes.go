// Package m6800 is the reference processor backend: a Motorola 6800
// decoder/renderer exercising the full attribute/label/transform machinery
// the engine provides (spec §4.10).
package m6800

// Mode is one of the eight 6800 addressing modes (spec §4.10).
type Mode int

const (
	ModeNone Mode = iota // illegal opcode
	ModeInherent
	ModeImmByte
	ModeImmWord
	ModeDirect
	ModeExtended
	ModeIndexed
	ModeRelative
)

// OperandBytes returns how many bytes follow the opcode byte for m.
func (m Mode) OperandBytes() int {
	switch m {
	case ModeImmByte, ModeDirect, ModeIndexed, ModeRelative:
		return 1
	case ModeImmWord, ModeExtended:
		return 2
	default:
		return 0
	}
}

// opEntry is one row of the 256-entry opcode table.
type opEntry struct {
	Mnemonic string
	Mode     Mode
}

// opcodes is the full MC6800 opcode map. Unassigned entries (Mnemonic=="")
// are illegal opcodes; the engine demotes their cell to Const and the
// backend renders "FCB $xx" for them (spec §4.9/§4.10).
var opcodes = [256]opEntry{
	0x01: {"NOP", ModeInherent},
	0x06: {"TAP", ModeInherent},
	0x07: {"TPA", ModeInherent},
	0x08: {"INX", ModeInherent},
	0x09: {"DEX", ModeInherent},
	0x0A: {"CLV", ModeInherent},
	0x0B: {"SEV", ModeInherent},
	0x0C: {"CLC", ModeInherent},
	0x0D: {"SEC", ModeInherent},
	0x0E: {"CLI", ModeInherent},
	0x0F: {"SEI", ModeInherent},
	0x10: {"SBA", ModeInherent},
	0x11: {"CBA", ModeInherent},
	0x16: {"TAB", ModeInherent},
	0x17: {"TBA", ModeInherent},
	0x19: {"DAA", ModeInherent},
	0x1B: {"ABA", ModeInherent},

	0x20: {"BRA", ModeRelative},
	0x22: {"BHI", ModeRelative},
	0x23: {"BLS", ModeRelative},
	0x24: {"BCC", ModeRelative},
	0x25: {"BCS", ModeRelative},
	0x26: {"BNE", ModeRelative},
	0x27: {"BEQ", ModeRelative},
	0x28: {"BVC", ModeRelative},
	0x29: {"BVS", ModeRelative},
	0x2A: {"BPL", ModeRelative},
	0x2B: {"BMI", ModeRelative},
	0x2C: {"BGE", ModeRelative},
	0x2D: {"BLT", ModeRelative},
	0x2E: {"BGT", ModeRelative},
	0x2F: {"BLE", ModeRelative},

	0x30: {"TSX", ModeInherent},
	0x31: {"INS", ModeInherent},
	0x32: {"PULA", ModeInherent},
	0x33: {"PULB", ModeInherent},
	0x34: {"DES", ModeInherent},
	0x35: {"TXS", ModeInherent},
	0x36: {"PSHA", ModeInherent},
	0x37: {"PSHB", ModeInherent},
	0x39: {"RTS", ModeInherent},
	0x3B: {"RTI", ModeInherent},
	0x3E: {"WAI", ModeInherent},
	0x3F: {"SWI", ModeInherent},

	0x40: {"NEGA", ModeInherent},
	0x43: {"COMA", ModeInherent},
	0x44: {"LSRA", ModeInherent},
	0x46: {"RORA", ModeInherent},
	0x47: {"ASRA", ModeInherent},
	0x48: {"ASLA", ModeInherent},
	0x49: {"ROLA", ModeInherent},
	0x4A: {"DECA", ModeInherent},
	0x4C: {"INCA", ModeInherent},
	0x4D: {"TSTA", ModeInherent},
	0x4F: {"CLRA", ModeInherent},

	0x50: {"NEGB", ModeInherent},
	0x53: {"COMB", ModeInherent},
	0x54: {"LSRB", ModeInherent},
	0x56: {"RORB", ModeInherent},
	0x57: {"ASRB", ModeInherent},
	0x58: {"ASLB", ModeInherent},
	0x59: {"ROLB", ModeInherent},
	0x5A: {"DECB", ModeInherent},
	0x5C: {"INCB", ModeInherent},
	0x5D: {"TSTB", ModeInherent},
	0x5F: {"CLRB", ModeInherent},

	0x60: {"NEG", ModeIndexed},
	0x63: {"COM", ModeIndexed},
	0x64: {"LSR", ModeIndexed},
	0x66: {"ROR", ModeIndexed},
	0x67: {"ASR", ModeIndexed},
	0x68: {"ASL", ModeIndexed},
	0x69: {"ROL", ModeIndexed},
	0x6A: {"DEC", ModeIndexed},
	0x6C: {"INC", ModeIndexed},
	0x6D: {"TST", ModeIndexed},
	0x6E: {"JMP", ModeIndexed},
	0x6F: {"CLR", ModeIndexed},

	0x70: {"NEG", ModeExtended},
	0x73: {"COM", ModeExtended},
	0x74: {"LSR", ModeExtended},
	0x76: {"ROR", ModeExtended},
	0x77: {"ASR", ModeExtended},
	0x78: {"ASL", ModeExtended},
	0x79: {"ROL", ModeExtended},
	0x7A: {"DEC", ModeExtended},
	0x7C: {"INC", ModeExtended},
	0x7D: {"TST", ModeExtended},
	0x7E: {"JMP", ModeExtended},
	0x7F: {"CLR", ModeExtended},

	0x80: {"SUBA", ModeImmByte},
	0x81: {"CMPA", ModeImmByte},
	0x82: {"SBCA", ModeImmByte},
	0x84: {"ANDA", ModeImmByte},
	0x85: {"BITA", ModeImmByte},
	0x86: {"LDAA", ModeImmByte},
	0x88: {"EORA", ModeImmByte},
	0x89: {"ADCA", ModeImmByte},
	0x8A: {"ORAA", ModeImmByte},
	0x8B: {"ADDA", ModeImmByte},
	0x8C: {"CPX", ModeImmWord},
	0x8D: {"BSR", ModeRelative},
	0x8E: {"LDS", ModeImmWord},

	0x90: {"SUBA", ModeDirect},
	0x91: {"CMPA", ModeDirect},
	0x92: {"SBCA", ModeDirect},
	0x94: {"ANDA", ModeDirect},
	0x95: {"BITA", ModeDirect},
	0x96: {"LDAA", ModeDirect},
	0x97: {"STAA", ModeDirect},
	0x98: {"EORA", ModeDirect},
	0x99: {"ADCA", ModeDirect},
	0x9A: {"ORAA", ModeDirect},
	0x9B: {"ADDA", ModeDirect},
	0x9C: {"CPX", ModeDirect},
	0x9E: {"LDS", ModeDirect},
	0x9F: {"STS", ModeDirect},

	0xA0: {"SUBA", ModeIndexed},
	0xA1: {"CMPA", ModeIndexed},
	0xA2: {"SBCA", ModeIndexed},
	0xA4: {"ANDA", ModeIndexed},
	0xA5: {"BITA", ModeIndexed},
	0xA6: {"LDAA", ModeIndexed},
	0xA7: {"STAA", ModeIndexed},
	0xA8: {"EORA", ModeIndexed},
	0xA9: {"ADCA", ModeIndexed},
	0xAA: {"ORAA", ModeIndexed},
	0xAB: {"ADDA", ModeIndexed},
	0xAC: {"CPX", ModeIndexed},
	0xAD: {"JSR", ModeIndexed},
	0xAE: {"LDS", ModeIndexed},
	0xAF: {"STS", ModeIndexed},

	0xB0: {"SUBA", ModeExtended},
	0xB1: {"CMPA", ModeExtended},
	0xB2: {"SBCA", ModeExtended},
	0xB4: {"ANDA", ModeExtended},
	0xB5: {"BITA", ModeExtended},
	0xB6: {"LDAA", ModeExtended},
	0xB7: {"STAA", ModeExtended},
	0xB8: {"EORA", ModeExtended},
	0xB9: {"ADCA", ModeExtended},
	0xBA: {"ORAA", ModeExtended},
	0xBB: {"ADDA", ModeExtended},
	0xBC: {"CPX", ModeExtended},
	0xBD: {"JSR", ModeExtended},
	0xBE: {"LDS", ModeExtended},
	0xBF: {"STS", ModeExtended},

	0xC0: {"SUBB", ModeImmByte},
	0xC1: {"CMPB", ModeImmByte},
	0xC2: {"SBCB", ModeImmByte},
	0xC4: {"ANDB", ModeImmByte},
	0xC5: {"BITB", ModeImmByte},
	0xC6: {"LDAB", ModeImmByte},
	0xC8: {"EORB", ModeImmByte},
	0xC9: {"ADCB", ModeImmByte},
	0xCA: {"ORAB", ModeImmByte},
	0xCB: {"ADDB", ModeImmByte},
	0xCE: {"LDX", ModeImmWord},

	0xD0: {"SUBB", ModeDirect},
	0xD1: {"CMPB", ModeDirect},
	0xD2: {"SBCB", ModeDirect},
	0xD4: {"ANDB", ModeDirect},
	0xD5: {"BITB", ModeDirect},
	0xD6: {"LDAB", ModeDirect},
	0xD7: {"STAB", ModeDirect},
	0xD8: {"EORB", ModeDirect},
	0xD9: {"ADCB", ModeDirect},
	0xDA: {"ORAB", ModeDirect},
	0xDB: {"ADDB", ModeDirect},
	0xDE: {"LDX", ModeDirect},
	0xDF: {"STX", ModeDirect},

	0xE0: {"SUBB", ModeIndexed},
	0xE1: {"CMPB", ModeIndexed},
	0xE2: {"SBCB", ModeIndexed},
	0xE4: {"ANDB", ModeIndexed},
	0xE5: {"BITB", ModeIndexed},
	0xE6: {"LDAB", ModeIndexed},
	0xE7: {"STAB", ModeIndexed},
	0xE8: {"EORB", ModeIndexed},
	0xE9: {"ADCB", ModeIndexed},
	0xEA: {"ORAB", ModeIndexed},
	0xEB: {"ADDB", ModeIndexed},
	0xEE: {"LDX", ModeIndexed},
	0xEF: {"STX", ModeIndexed},

	0xF0: {"SUBB", ModeExtended},
	0xF1: {"CMPB", ModeExtended},
	0xF2: {"SBCB", ModeExtended},
	0xF4: {"ANDB", ModeExtended},
	0xF5: {"BITB", ModeExtended},
	0xF6: {"LDAB", ModeExtended},
	0xF7: {"STAB", ModeExtended},
	0xF8: {"EORB", ModeExtended},
	0xF9: {"ADCB", ModeExtended},
	0xFA: {"ORAB", ModeExtended},
	0xFB: {"ADDB", ModeExtended},
	0xFE: {"LDX", ModeExtended},
	0xFF: {"STX", ModeExtended},
}

// memRef reports whether an instruction in this mode reads or writes an
// address (as opposed to an immediate constant or a register-only
// operation), i.e. whether Parse should try to register a target label.
func (m Mode) memRef() bool {
	return m == ModeDirect || m == ModeExtended || m == ModeRelative
}

// branchMnemonics holds every mnemonic whose memory-referencing operand is
// a code address (as opposed to a data address).
var branchMnemonics = map[string]bool{
	"BRA": true, "BSR": true, "JMP": true, "JSR": true,
	"BHI": true, "BLS": true, "BCC": true, "BCS": true,
	"BNE": true, "BEQ": true, "BVC": true, "BVS": true,
	"BPL": true, "BMI": true, "BGE": true, "BLT": true,
	"BGT": true, "BLE": true,
}
