package hw

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], d.Opcode)
	buf[off] = ' '
	off++

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) > totalLen {
		buf = append(buf, ' ')
	} else {
		buf = buf[:totalLen]
		for i := off; i < totalLen; i++ {
			buf[i] = ' '
		}
	}

	return buf
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// Disasm decodes the instruction at pc. It only peeks memory and has no
// side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	peek := func(addr uint16) uint8 { return c.Bus.Read8(addr, true) }

	code := peek(pc)
	op := opcodes[code]
	d := DisasmOp{
		PC:     pc,
		Opcode: op.instr.String(),
		Buf:    []byte{code},
	}
	for i := range op.mode.OperandSize() {
		d.Buf = append(d.Buf, peek(pc+1+uint16(i)))
	}

	var oper16 uint16
	if len(d.Buf) == 3 {
		oper16 = uint16(d.Buf[2])<<8 | uint16(d.Buf[1])
	}

	switch op.mode {
	case Accumulator:
		d.Oper = "A"
	case Immediate:
		d.Oper = fmt.Sprintf("#$%02X", d.Buf[1])
	case ZeroPage:
		d.Oper = fmt.Sprintf("$%02X", d.Buf[1])
	case ZeroPageX:
		d.Oper = fmt.Sprintf("$%02X,X", d.Buf[1])
	case ZeroPageY:
		d.Oper = fmt.Sprintf("$%02X,Y", d.Buf[1])
	case Absolute:
		d.Oper = fmt.Sprintf("$%04X", oper16)
	case AbsoluteX:
		d.Oper = fmt.Sprintf("$%04X,X", oper16)
	case AbsoluteY:
		d.Oper = fmt.Sprintf("$%04X,Y", oper16)
	case Relative:
		d.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(d.Buf[1])))
	case Indirect:
		d.Oper = fmt.Sprintf("($%04X)", oper16)
	case IndexedIndirect:
		d.Oper = fmt.Sprintf("($%02X,X)", d.Buf[1])
	case IndirectIndexed:
		d.Oper = fmt.Sprintf("($%02X),Y", d.Buf[1])
	}
	return d
}

// Listing is an address-ordered disassembly.
type Listing []DisasmOp

// Disassemble decodes instructions linearly from start until the end of
// the address space.
func (c *CPU) Disassemble(start uint16) Listing {
	var l Listing
	for addr := uint32(start); addr <= 0xFFFF; {
		op := c.Disasm(uint16(addr))
		l = append(l, op)

		addr += uint32(len(op.Buf))
		if op.Buf[0] == 0x00 {
			// BRK padding byte.
			addr++
		}
	}
	return l
}

// Lookup returns the instruction starting at addr.
func (l Listing) Lookup(addr uint16) (DisasmOp, bool) {
	i, found := slices.BinarySearchFunc(l, addr, func(op DisasmOp, addr uint16) int {
		return int(op.PC) - int(addr)
	})
	if !found {
		return DisasmOp{}, false
	}
	return l[i], true
}

// WriteTo writes the listing, one instruction per line.
func (l Listing) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, op := range l {
		nn, err := bw.WriteString(op.String() + "\n")
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
