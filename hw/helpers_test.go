package hw

import (
	"testing"

	"nescore/hw/hwio"
)

// newTestCPU returns a CPU over a flat 64KB RAM, with prog loaded at $8000
// and the reset vector pointing to it.
func newTestCPU(tb testing.TB, prog ...uint8) (*CPU, []byte) {
	tb.Helper()

	mem := &hwio.Mem{Name: "flat", Data: make([]byte, 0x10000)}
	bus := hwio.NewTable("test")
	bus.MapMem(0x0000, mem)

	copy(mem.Data[0x8000:], prog)
	mem.Data[ResetVector] = 0x00
	mem.Data[ResetVector+1] = 0x80

	cpu := NewCPU(bus)
	cpu.Reset()
	return cpu, mem.Data
}

// regs is the part of the CPU state checked by tests.
type regs struct {
	A, X, Y, SP uint8
	PC          uint16
	P           P
}

func cpuRegs(c *CPU) regs {
	return regs{A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P}
}

// steps runs n instructions and returns the total cycles.
func steps(c *CPU, n int) int {
	total := 0
	for range n {
		total += c.Step()
	}
	return total
}

func wantMem8(tb testing.TB, mem []byte, addr uint16, want uint8) {
	tb.Helper()

	if got := mem[addr]; got != want {
		tb.Errorf("$%04X = $%02X want $%02X", addr, got, want)
	}
}
