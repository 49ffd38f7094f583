package hw

import (
	"io"

	"nescore/emu/log"
	"nescore/hw/hwio"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request, shared with BRK
)

type CPU struct {
	Bus hwio.BankIO8
	PPU *PPU // non-nil when there's a PPU, only used for tracing.

	// Non-nil when execution tracing is enabled.
	tracer *tracer

	Cycles int64 // CPU cycles
	stall  int   // cycles left before the next instruction

	// IllegalOps counts the executed illegal opcodes.
	IllegalOps uint64

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	// current instruction
	op      opcode
	operand uint16 // effective address
	crossed bool   // page crossed while computing operand
}

// NewCPU creates a new CPU at power-up state.
func NewCPU(bus hwio.BankIO8) *CPU {
	return &CPU{
		Bus: bus,
		SP:  0xFD,
		P:   Interrupt,
	}
}

// Reset puts the CPU in its reset state, PC is read from the reset vector.
func (c *CPU) Reset() {
	c.A = 0x00
	c.X = 0x00
	c.Y = 0x00
	c.SP = 0xFD
	c.P = Interrupt
	c.PC = hwio.Read16(c.Bus, ResetVector)

	// Reset takes 7 cycles before the first instruction.
	c.Cycles = 7
	c.stall = 0

	log.ModCPU.DebugZ("reset").Hex16("pc", c.PC).End()
}

// SetTraceOutput enables execution tracing, or disables it if w is nil.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

// TraceErr returns the error that stopped the execution trace, if any.
func (c *CPU) TraceErr() error {
	if c.tracer == nil {
		return nil
	}
	return c.tracer.err
}

// Clock runs one CPU cycle. An instruction executes entirely on its first
// cycle, the following ones are idle.
func (c *CPU) Clock() {
	if c.stall == 0 {
		c.stall = c.Step()
	}
	c.stall--
}

// Complete reports whether the current instruction is over, that is the
// next Clock fetches a new opcode.
func (c *CPU) Complete() bool {
	return c.stall == 0
}

// Step executes one instruction and returns its cycle count.
func (c *CPU) Step() int {
	c.traceOp()

	code := c.Read8(c.PC)
	c.PC++

	c.op = opcodes[code]
	c.computeOperand(c.op.mode)

	ncycles := int(c.op.cycles) + c.execute(code)
	if c.crossed && hasPagePenalty[code] {
		ncycles++
	}
	c.Cycles += int64(ncycles)
	return ncycles
}

// Run executes instructions until ncycles cycles have elapsed.
func (c *CPU) Run(ncycles int64) {
	until := c.Cycles + ncycles
	for c.Cycles < until {
		c.Step()
	}
}

func (c *CPU) traceOp() {
	if c.tracer == nil {
		return
	}

	state := cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P,
		SP:    c.SP,
		Clock: c.Cycles,
		PC:    c.PC,
	}
	if c.PPU != nil {
		state.Scanline, state.PPUCycle = c.PPU.Position()
	}
	c.tracer.write(state)
}

// NMI runs the non-maskable interrupt sequence.
func (c *CPU) NMI() {
	log.ModCPU.DebugZ("NMI").Hex16("pc", c.PC).End()
	c.interrupt(NMIVector)
}

// IRQ runs the interrupt request sequence, unless interrupts are disabled.
func (c *CPU) IRQ() {
	if c.P.Interrupt() {
		return
	}
	log.ModCPU.DebugZ("IRQ").Hex16("pc", c.PC).End()
	c.interrupt(IRQVector)
}

func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)
	p := c.P
	p.clearFlags(Break)
	p.setFlags(Reserved)
	c.push8(uint8(p))
	c.P.setFlags(Interrupt)
	c.PC = hwio.Read16(c.Bus, vector)

	c.Cycles += 7
	c.stall += 7
}

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	return hwio.Read16(c.Bus, addr)
}

// read16zp reads a 16-bit pointer from the zero page, the high byte wraps
// within the zero page.
func (c *CPU) read16zp(addr uint8) uint16 {
	lo := c.Read8(uint16(addr))
	hi := c.Read8(uint16(addr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// read16bug reproduces the 6502 bug where the high byte of an indirect
// pointer is fetched without carrying into the page.
func (c *CPU) read16bug(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr&0xFF00 | uint16(uint8(addr)+1))
	return uint16(hi)<<8 | uint16(lo)
}

// stack operations

func (c *CPU) push8(val uint8) {
	c.Write8(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.Read8(0x0100 + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// computeOperand computes the effective address of the current instruction
// and advances PC past the operand.
func (c *CPU) computeOperand(mode AddrMode) {
	c.operand = 0
	c.crossed = false

	switch mode {
	case Implied, Accumulator:
	case Immediate:
		c.operand = c.PC
		c.PC++
	case ZeroPage:
		c.operand = uint16(c.Read8(c.PC))
		c.PC++
	case ZeroPageX:
		c.operand = uint16(c.Read8(c.PC) + c.X)
		c.PC++
	case ZeroPageY:
		c.operand = uint16(c.Read8(c.PC) + c.Y)
		c.PC++
	case Absolute:
		c.operand = c.Read16(c.PC)
		c.PC += 2
	case AbsoluteX:
		base := c.Read16(c.PC)
		c.PC += 2
		c.operand = base + uint16(c.X)
		c.crossed = pagesDiffer(base, c.operand)
	case AbsoluteY:
		base := c.Read16(c.PC)
		c.PC += 2
		c.operand = base + uint16(c.Y)
		c.crossed = pagesDiffer(base, c.operand)
	case Relative:
		off := int8(c.Read8(c.PC))
		c.PC++
		c.operand = c.PC + uint16(off)
	case Indirect:
		ptr := c.Read16(c.PC)
		c.PC += 2
		c.operand = c.read16bug(ptr)
	case IndexedIndirect:
		zp := c.Read8(c.PC) + c.X
		c.PC++
		c.operand = c.read16zp(zp)
	case IndirectIndexed:
		zp := c.Read8(c.PC)
		c.PC++
		base := c.read16zp(zp)
		c.operand = base + uint16(c.Y)
		c.crossed = pagesDiffer(base, c.operand)
	}
}
