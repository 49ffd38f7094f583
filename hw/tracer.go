package hw

import (
	"fmt"
	"io"

	"nescore/emu/log"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock    int64
	PPUCycle int
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

// tracer writes an execution trace in the nestest.log format.
type tracer struct {
	d disasmer
	w io.Writer

	err error // first write error, tracing stops after it
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendReg(buf []byte, name string, v uint8) []byte {
	buf = append(buf, name...)
	buf = append(buf, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

// write the execution trace for current instruction.
func (t *tracer) write(state cpuState) {
	if t.err != nil {
		return
	}
	dis := t.d.Disasm(state.PC)
	buf := dis.Bytes()

	buf = appendReg(buf, "A", state.A)
	buf = appendReg(buf, "X", state.X)
	buf = appendReg(buf, "Y", state.Y)
	// bit 5 is always read as set.
	buf = appendReg(buf, "P", uint8(state.P|Reserved))
	buf = appendReg(buf, "SP", state.SP)

	buf = fmt.Appendf(buf, "PPU:%3d,%3d CYC:%d\n", state.Scanline, state.PPUCycle, state.Clock)
	if _, err := t.w.Write(buf); err != nil {
		t.err = err
		log.ModCPU.ErrorZ("execution trace disabled").Error("err", err).End()
	}
}
