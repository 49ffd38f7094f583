package hw

import "fmt"

// Instr is a 6502 instruction kind.
type Instr uint8

const (
	MIA Instr = iota // missing: illegal/undocumented opcode, only the addressing mode runs
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	numInstrs
)

var instrNames = [numInstrs]string{
	"MIA",
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

func (i Instr) String() string {
	if i < numInstrs {
		return instrNames[i]
	}
	return fmt.Sprintf("Instr(%d)", i)
}

// AddrMode is an addressing mode, it determines the operand width and how
// the effective address is computed.
type AddrMode uint8

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Relative
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

var addrModeNames = [...]string{
	Implied:         "implied",
	Accumulator:     "accumulator",
	Immediate:       "immediate",
	ZeroPage:        "zeropage",
	ZeroPageX:       "zeropage,x",
	ZeroPageY:       "zeropage,y",
	Absolute:        "absolute",
	AbsoluteX:       "absolute,x",
	AbsoluteY:       "absolute,y",
	Relative:        "relative",
	Indirect:        "indirect",
	IndexedIndirect: "(indirect,x)",
	IndirectIndexed: "(indirect),y",
}

func (m AddrMode) String() string {
	if int(m) < len(addrModeNames) {
		return addrModeNames[m]
	}
	return fmt.Sprintf("AddrMode(%d)", m)
}

// OperandSize returns the number of operand bytes following the opcode.
func (m AddrMode) OperandSize() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	}
	return 1
}

type opcode struct {
	instr  Instr
	mode   AddrMode
	cycles uint8 // base cycles, without page crossing or branch penalties
}

// OpcodeInfo returns the instruction, addressing mode and base cycle count
// of an opcode.
func OpcodeInfo(code uint8) (Instr, AddrMode, int) {
	op := opcodes[code]
	return op.instr, op.mode, int(op.cycles)
}

// IsIllegal reports whether the opcode is not part of the official set.
func IsIllegal(code uint8) bool {
	return opcodes[code].instr == MIA
}

var opcodes = [256]opcode{
	0x00: {BRK, Implied, 7}, 0x01: {ORA, IndexedIndirect, 6}, 0x02: {MIA, Implied, 2}, 0x03: {MIA, IndexedIndirect, 2},
	0x04: {MIA, ZeroPage, 3}, 0x05: {ORA, ZeroPage, 3}, 0x06: {ASL, ZeroPage, 5}, 0x07: {MIA, ZeroPage, 5},
	0x08: {PHP, Implied, 3}, 0x09: {ORA, Immediate, 2}, 0x0A: {ASL, Accumulator, 2}, 0x0B: {MIA, Immediate, 2},
	0x0C: {MIA, Absolute, 4}, 0x0D: {ORA, Absolute, 4}, 0x0E: {ASL, Absolute, 6}, 0x0F: {MIA, Absolute, 6},
	0x10: {BPL, Relative, 2}, 0x11: {ORA, IndirectIndexed, 5}, 0x12: {MIA, Implied, 2}, 0x13: {MIA, IndirectIndexed, 8},
	0x14: {MIA, ZeroPageX, 4}, 0x15: {ORA, ZeroPageX, 4}, 0x16: {ASL, ZeroPageX, 6}, 0x17: {MIA, ZeroPageX, 6},
	0x18: {CLC, Implied, 2}, 0x19: {ORA, AbsoluteY, 4}, 0x1A: {MIA, Implied, 2}, 0x1B: {MIA, AbsoluteY, 7},
	0x1C: {MIA, AbsoluteX, 4}, 0x1D: {ORA, AbsoluteX, 4}, 0x1E: {ASL, AbsoluteX, 7}, 0x1F: {MIA, AbsoluteX, 7},
	0x20: {JSR, Absolute, 6}, 0x21: {AND, IndexedIndirect, 6}, 0x22: {MIA, Implied, 2}, 0x23: {MIA, IndexedIndirect, 8},
	0x24: {BIT, ZeroPage, 3}, 0x25: {AND, ZeroPage, 3}, 0x26: {ROL, ZeroPage, 5}, 0x27: {MIA, ZeroPage, 5},
	0x28: {PLP, Implied, 4}, 0x29: {AND, Immediate, 2}, 0x2A: {ROL, Accumulator, 2}, 0x2B: {MIA, Immediate, 2},
	0x2C: {BIT, Absolute, 4}, 0x2D: {AND, Absolute, 4}, 0x2E: {ROL, Absolute, 6}, 0x2F: {MIA, Absolute, 6},
	0x30: {BMI, Relative, 2}, 0x31: {AND, IndirectIndexed, 5}, 0x32: {MIA, Implied, 2}, 0x33: {MIA, IndexedIndirect, 8},
	0x34: {MIA, ZeroPageX, 4}, 0x35: {AND, ZeroPageX, 4}, 0x36: {ROL, ZeroPageX, 6}, 0x37: {MIA, ZeroPageX, 6},
	0x38: {SEC, Implied, 2}, 0x39: {AND, AbsoluteY, 4}, 0x3A: {MIA, Implied, 2}, 0x3B: {MIA, AbsoluteY, 7},
	0x3C: {MIA, AbsoluteX, 4}, 0x3D: {AND, AbsoluteX, 4}, 0x3E: {ROL, AbsoluteX, 7}, 0x3F: {MIA, AbsoluteX, 7},
	0x40: {RTI, Implied, 6}, 0x41: {EOR, IndexedIndirect, 6}, 0x42: {MIA, Implied, 2}, 0x43: {MIA, IndexedIndirect, 8},
	0x44: {MIA, ZeroPage, 3}, 0x45: {EOR, ZeroPage, 3}, 0x46: {LSR, ZeroPage, 5}, 0x47: {MIA, ZeroPage, 5},
	0x48: {PHA, Implied, 3}, 0x49: {EOR, Immediate, 2}, 0x4A: {LSR, Accumulator, 2}, 0x4B: {MIA, Immediate, 2},
	0x4C: {JMP, Absolute, 3}, 0x4D: {EOR, Absolute, 4}, 0x4E: {LSR, Absolute, 6}, 0x4F: {MIA, Absolute, 6},
	0x50: {BVC, Relative, 2}, 0x51: {EOR, IndirectIndexed, 5}, 0x52: {MIA, Implied, 2}, 0x53: {MIA, IndirectIndexed, 8},
	0x54: {MIA, ZeroPageX, 4}, 0x55: {EOR, ZeroPageX, 4}, 0x56: {LSR, ZeroPageX, 6}, 0x57: {MIA, ZeroPageX, 6},
	0x58: {CLI, Implied, 2}, 0x59: {EOR, AbsoluteY, 4}, 0x5A: {MIA, Implied, 2}, 0x5B: {MIA, AbsoluteY, 7},
	0x5C: {MIA, AbsoluteX, 4}, 0x5D: {EOR, AbsoluteX, 4}, 0x5E: {LSR, AbsoluteX, 7}, 0x5F: {MIA, AbsoluteX, 7},
	0x60: {RTS, Implied, 6}, 0x61: {ADC, IndexedIndirect, 6}, 0x62: {MIA, Implied, 2}, 0x63: {MIA, IndexedIndirect, 8},
	0x64: {MIA, ZeroPage, 3}, 0x65: {ADC, ZeroPage, 3}, 0x66: {ROR, ZeroPage, 5}, 0x67: {MIA, ZeroPage, 5},
	0x68: {PLA, Implied, 4}, 0x69: {ADC, Immediate, 2}, 0x6A: {ROR, Accumulator, 2}, 0x6B: {MIA, Immediate, 2},
	0x6C: {JMP, Indirect, 5}, 0x6D: {ADC, Absolute, 4}, 0x6E: {ROR, Absolute, 6}, 0x6F: {MIA, Absolute, 6},
	0x70: {BVS, Relative, 2}, 0x71: {ADC, IndirectIndexed, 5}, 0x72: {MIA, Implied, 2}, 0x73: {MIA, IndirectIndexed, 8},
	0x74: {MIA, ZeroPageX, 4}, 0x75: {ADC, ZeroPageX, 4}, 0x76: {ROR, ZeroPageX, 6}, 0x77: {MIA, ZeroPageX, 6},
	0x78: {SEI, Implied, 2}, 0x79: {ADC, AbsoluteY, 4}, 0x7A: {MIA, Implied, 2}, 0x7B: {MIA, AbsoluteY, 7},
	0x7C: {MIA, AbsoluteX, 4}, 0x7D: {ADC, AbsoluteX, 4}, 0x7E: {ROR, AbsoluteX, 7}, 0x7F: {MIA, AbsoluteX, 7},
	0x80: {MIA, Immediate, 2}, 0x81: {STA, IndexedIndirect, 6}, 0x82: {MIA, Immediate, 2}, 0x83: {MIA, IndexedIndirect, 6},
	0x84: {STY, ZeroPage, 3}, 0x85: {STA, ZeroPage, 3}, 0x86: {STX, ZeroPage, 3}, 0x87: {MIA, ZeroPage, 3},
	0x88: {DEY, Implied, 2}, 0x89: {MIA, Immediate, 2}, 0x8A: {TXA, Implied, 2}, 0x8B: {MIA, Immediate, 2},
	0x8C: {STY, Absolute, 4}, 0x8D: {STA, Absolute, 4}, 0x8E: {STX, Absolute, 4}, 0x8F: {MIA, Absolute, 4},
	0x90: {BCC, Relative, 2}, 0x91: {STA, IndirectIndexed, 6}, 0x92: {MIA, Implied, 2}, 0x93: {MIA, IndirectIndexed, 6},
	0x94: {STY, ZeroPageX, 4}, 0x95: {STA, ZeroPageX, 4}, 0x96: {STX, ZeroPageY, 4}, 0x97: {MIA, ZeroPageY, 4},
	0x98: {TYA, Implied, 2}, 0x99: {STA, AbsoluteY, 5}, 0x9A: {TXS, Implied, 2}, 0x9B: {MIA, AbsoluteY, 5},
	0x9C: {MIA, AbsoluteX, 5}, 0x9D: {STA, AbsoluteX, 5}, 0x9E: {MIA, AbsoluteY, 5}, 0x9F: {MIA, AbsoluteY, 5},
	0xA0: {LDY, Immediate, 2}, 0xA1: {LDA, IndexedIndirect, 6}, 0xA2: {LDX, Immediate, 2}, 0xA3: {MIA, IndexedIndirect, 6},
	0xA4: {LDY, ZeroPage, 3}, 0xA5: {LDA, ZeroPage, 3}, 0xA6: {LDX, ZeroPage, 3}, 0xA7: {MIA, ZeroPage, 3},
	0xA8: {TAY, Implied, 2}, 0xA9: {LDA, Immediate, 2}, 0xAA: {TAX, Implied, 2}, 0xAB: {MIA, Immediate, 2},
	0xAC: {LDY, Absolute, 4}, 0xAD: {LDA, Absolute, 4}, 0xAE: {LDX, Absolute, 4}, 0xAF: {MIA, Absolute, 4},
	0xB0: {BCS, Relative, 2}, 0xB1: {LDA, IndirectIndexed, 5}, 0xB2: {MIA, Implied, 2}, 0xB3: {MIA, IndirectIndexed, 5},
	0xB4: {LDY, ZeroPageX, 4}, 0xB5: {LDA, ZeroPageX, 4}, 0xB6: {LDX, ZeroPageY, 4}, 0xB7: {MIA, ZeroPageY, 4},
	0xB8: {CLV, Implied, 2}, 0xB9: {LDA, AbsoluteY, 4}, 0xBA: {TSX, Implied, 2}, 0xBB: {MIA, AbsoluteY, 4},
	0xBC: {LDY, AbsoluteX, 4}, 0xBD: {LDA, AbsoluteX, 4}, 0xBE: {LDX, AbsoluteY, 4}, 0xBF: {MIA, AbsoluteY, 4},
	0xC0: {CPY, Immediate, 2}, 0xC1: {CMP, IndexedIndirect, 6}, 0xC2: {MIA, Immediate, 2}, 0xC3: {MIA, IndexedIndirect, 8},
	0xC4: {CPY, ZeroPage, 3}, 0xC5: {CMP, ZeroPage, 3}, 0xC6: {DEC, ZeroPage, 5}, 0xC7: {MIA, ZeroPage, 5},
	0xC8: {INY, Implied, 2}, 0xC9: {CMP, Immediate, 2}, 0xCA: {DEX, Implied, 2}, 0xCB: {MIA, Immediate, 2},
	0xCC: {CPY, Absolute, 4}, 0xCD: {CMP, Absolute, 4}, 0xCE: {DEC, Absolute, 6}, 0xCF: {MIA, Absolute, 6},
	0xD0: {BNE, Relative, 2}, 0xD1: {CMP, IndirectIndexed, 5}, 0xD2: {MIA, Implied, 2}, 0xD3: {MIA, IndirectIndexed, 8},
	0xD4: {MIA, ZeroPageX, 4}, 0xD5: {CMP, ZeroPageX, 4}, 0xD6: {DEC, ZeroPageX, 6}, 0xD7: {MIA, ZeroPageX, 6},
	0xD8: {CLD, Implied, 2}, 0xD9: {CMP, AbsoluteY, 4}, 0xDA: {MIA, Implied, 2}, 0xDB: {MIA, AbsoluteY, 7},
	0xDC: {MIA, AbsoluteX, 4}, 0xDD: {CMP, AbsoluteX, 4}, 0xDE: {DEC, AbsoluteX, 7}, 0xDF: {MIA, AbsoluteX, 7},
	0xE0: {CPX, Immediate, 2}, 0xE1: {SBC, IndexedIndirect, 6}, 0xE2: {MIA, Immediate, 2}, 0xE3: {MIA, IndexedIndirect, 8},
	0xE4: {CPX, ZeroPage, 3}, 0xE5: {SBC, ZeroPage, 3}, 0xE6: {INC, ZeroPage, 5}, 0xE7: {MIA, ZeroPage, 5},
	0xE8: {INX, Implied, 2}, 0xE9: {SBC, Immediate, 2}, 0xEA: {NOP, Implied, 2}, 0xEB: {MIA, Immediate, 2},
	0xEC: {CPX, Absolute, 4}, 0xED: {SBC, Absolute, 4}, 0xEE: {INC, Absolute, 6}, 0xEF: {MIA, Absolute, 6},
	0xF0: {BEQ, Relative, 2}, 0xF1: {SBC, IndirectIndexed, 5}, 0xF2: {MIA, Implied, 2}, 0xF3: {MIA, IndirectIndexed, 8},
	0xF4: {MIA, ZeroPageX, 4}, 0xF5: {SBC, ZeroPageX, 4}, 0xF6: {INC, ZeroPageX, 6}, 0xF7: {MIA, ZeroPageX, 6},
	0xF8: {SED, Implied, 2}, 0xF9: {SBC, AbsoluteY, 4}, 0xFA: {MIA, Implied, 2}, 0xFB: {MIA, AbsoluteY, 7},
	0xFC: {MIA, AbsoluteX, 4}, 0xFD: {SBC, AbsoluteX, 4}, 0xFE: {INC, AbsoluteX, 7}, 0xFF: {MIA, AbsoluteX, 7},
}

// hasPagePenalty reports, for each opcode, whether crossing a page while
// computing the effective address costs an extra cycle. Only instructions
// that just read their operand pay it, stores and read-modify-write
// instructions have the extra cycle in their base count.
var hasPagePenalty = func() (tbl [256]bool) {
	for code, op := range opcodes {
		switch op.mode {
		case AbsoluteX, AbsoluteY, IndirectIndexed:
		default:
			continue
		}
		switch op.instr {
		case LDA, LDX, LDY, ADC, SBC, AND, ORA, EOR, CMP:
			tbl[code] = true
		case MIA:
			// unofficial reads (NOP/LAX variants) have the same base as LDA.
			tbl[code] = op.cycles == 4 || (op.mode == IndirectIndexed && op.cycles == 5)
		}
	}
	return tbl
}()
