package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// execute runs the current instruction and returns the extra cycles it took
// over its base count (taken branches).
func (c *CPU) execute(code uint8) int {
	switch c.op.instr {
	case ADC:
		c.add(c.fetch())
	case SBC:
		// A - M - (1-C) == A + ^M + C
		c.add(^c.fetch())
	case AND:
		c.A &= c.fetch()
		c.P.checkNZ(c.A)
	case ORA:
		c.A |= c.fetch()
		c.P.checkNZ(c.A)
	case EOR:
		c.A ^= c.fetch()
		c.P.checkNZ(c.A)

	case ASL:
		c.modify(func(v uint8) uint8 {
			c.P.set(Carry, v&0x80 != 0)
			return v << 1
		})
	case LSR:
		c.modify(func(v uint8) uint8 {
			c.P.set(Carry, v&0x01 != 0)
			return v >> 1
		})
	case ROL:
		c.modify(func(v uint8) uint8 {
			carry := uint8(c.P & Carry)
			c.P.set(Carry, v&0x80 != 0)
			return v<<1 | carry
		})
	case ROR:
		c.modify(func(v uint8) uint8 {
			carry := uint8(c.P&Carry) << 7
			c.P.set(Carry, v&0x01 != 0)
			return v>>1 | carry
		})
	case INC:
		c.modify(func(v uint8) uint8 { return v + 1 })
	case DEC:
		c.modify(func(v uint8) uint8 { return v - 1 })

	case BCC:
		return c.branch(!c.P.Carry())
	case BCS:
		return c.branch(c.P.Carry())
	case BNE:
		return c.branch(!c.P.Zero())
	case BEQ:
		return c.branch(c.P.Zero())
	case BPL:
		return c.branch(!c.P.Negative())
	case BMI:
		return c.branch(c.P.Negative())
	case BVC:
		return c.branch(!c.P.Overflow())
	case BVS:
		return c.branch(c.P.Overflow())

	case BIT:
		val := c.fetch()
		c.P.set(Zero, c.A&val == 0)
		c.P.set(Overflow, hwio.GetBit8(val, 6))
		c.P.set(Negative, hwio.GetBit8(val, 7))

	case BRK:
		// BRK has a padding byte, skipped on return.
		c.PC++
		c.push16(c.PC)
		c.push8(uint8(c.P | Break | Reserved))
		c.P.setFlags(Interrupt)
		c.PC = c.Read16(IRQVector)
	case RTI:
		c.P = P(c.pull8())
		c.P.clearFlags(Break | Reserved)
		c.PC = c.pull16()
	case JSR:
		c.push16(c.PC - 1)
		c.PC = c.operand
	case RTS:
		c.PC = c.pull16() + 1
	case JMP:
		c.PC = c.operand

	case CLC:
		c.P.clearFlags(Carry)
	case CLD:
		c.P.clearFlags(Decimal)
	case CLI:
		c.P.clearFlags(Interrupt)
	case CLV:
		c.P.clearFlags(Overflow)
	case SEC:
		c.P.setFlags(Carry)
	case SED:
		c.P.setFlags(Decimal)
	case SEI:
		c.P.setFlags(Interrupt)

	case CMP:
		c.compare(c.A, c.fetch())
	case CPX:
		c.compare(c.X, c.fetch())
	case CPY:
		c.compare(c.Y, c.fetch())

	case DEX:
		c.X--
		c.P.checkNZ(c.X)
	case DEY:
		c.Y--
		c.P.checkNZ(c.Y)
	case INX:
		c.X++
		c.P.checkNZ(c.X)
	case INY:
		c.Y++
		c.P.checkNZ(c.Y)

	case LDA:
		c.A = c.fetch()
		c.P.checkNZ(c.A)
	case LDX:
		c.X = c.fetch()
		c.P.checkNZ(c.X)
	case LDY:
		c.Y = c.fetch()
		c.P.checkNZ(c.Y)
	case STA:
		c.Write8(c.operand, c.A)
	case STX:
		c.Write8(c.operand, c.X)
	case STY:
		c.Write8(c.operand, c.Y)

	case PHA:
		c.push8(c.A)
	case PHP:
		c.push8(uint8(c.P | Break | Reserved))
	case PLA:
		c.A = c.pull8()
		c.P.checkNZ(c.A)
	case PLP:
		c.P = P(c.pull8())
		c.P.clearFlags(Break | Reserved)

	case TAX:
		c.X = c.A
		c.P.checkNZ(c.X)
	case TAY:
		c.Y = c.A
		c.P.checkNZ(c.Y)
	case TSX:
		c.X = c.SP
		c.P.checkNZ(c.X)
	case TXA:
		c.A = c.X
		c.P.checkNZ(c.A)
	case TXS:
		c.SP = c.X
	case TYA:
		c.A = c.Y
		c.P.checkNZ(c.A)

	case NOP:
	case MIA:
		c.IllegalOps++
		log.ModCPU.DebugZ("illegal opcode").
			Hex8("opcode", code).
			Hex16("pc", c.PC).
			Stringer("mode", c.op.mode).
			End()
	}
	return 0
}

// fetch reads the operand of the current instruction.
func (c *CPU) fetch() uint8 {
	if c.op.mode == Accumulator {
		return c.A
	}
	return c.Read8(c.operand)
}

// modify applies a read-modify-write operation to either the accumulator or
// memory, and sets N and Z from the result.
func (c *CPU) modify(f func(uint8) uint8) {
	if c.op.mode == Accumulator {
		c.A = f(c.A)
		c.P.checkNZ(c.A)
		return
	}
	val := f(c.Read8(c.operand))
	c.Write8(c.operand, val)
	c.P.checkNZ(val)
}

// add performs A+val+C. Decimal mode is not supported on the 2A03.
func (c *CPU) add(val uint8) {
	sum := uint16(c.A) + uint16(val) + uint16(c.P&Carry)
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.checkNZ(reg - val)
}

// branch jumps to the relative operand if cond is true, and returns the
// extra cycles: 1 if taken, plus 1 if the target is in another page.
func (c *CPU) branch(cond bool) int {
	if !cond {
		return 0
	}
	extra := 1
	if pagesDiffer(c.PC, c.operand) {
		extra++
	}
	c.PC = c.operand
	return extra
}
