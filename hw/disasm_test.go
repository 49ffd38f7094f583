package hw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var disasmProg = []uint8{
	0xA9, 0x01,       // LDA #$01
	0x9D, 0x00, 0x02, // STA $0200,X
	0xD0, 0xF9,       // BNE $8000
	0x6C, 0x34, 0x12, // JMP ($1234)
	0xB1, 0x10,       // LDA ($10),Y
	0x0A,             // ASL A
	0xA1, 0x20,       // LDA ($20,X)
	0xB6, 0x30,       // LDX $30,Y
}

func TestDisasm(t *testing.T) {
	want := []string{
		`8000  A9 01     LDA #$01`,
		`8002  9D 00 02  STA $0200,X`,
		`8005  D0 F9     BNE $8000`,
		`8007  6C 34 12  JMP ($1234)`,
		`800A  B1 10     LDA ($10),Y`,
		`800C  0A        ASL A`,
		`800D  A1 20     LDA ($20,X)`,
		`800F  B6 30     LDX $30,Y`,
	}

	cpu, _ := newTestCPU(t, disasmProg...)

	var got []string
	pc := uint16(0x8000)
	for range want {
		op := cpu.Disasm(pc)
		got = append(got, op.String())
		pc += uint16(len(op.Buf))
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("disassembly mismatch (-want +got):\n%s", diff)
	}
	if cpu.PC != 0x8000 || cpu.Cycles != 7 {
		t.Errorf("disassembly modified the cpu state")
	}
}

func TestDisassemble(t *testing.T) {
	cpu, _ := newTestCPU(t, disasmProg...)

	// $FFF0-$FFFF is filled with BRK, each one followed by its padding byte.
	l := cpu.Disassemble(0xFFF0)
	if len(l) != 8 {
		t.Fatalf("got %d instructions, want 8", len(l))
	}
	if l[7].PC != 0xFFFE {
		t.Errorf("last instruction at $%04X, want $FFFE", l[7].PC)
	}

	l = cpu.Disassemble(0x8000)
	op, ok := l.Lookup(0x800A)
	if !ok {
		t.Fatal("instruction at $800A not found")
	}
	if op.Opcode != "LDA" || op.Oper != "($10),Y" {
		t.Errorf("Lookup($800A) = %s", op)
	}
	if _, ok := l.Lookup(0x800B); ok {
		t.Errorf("found an instruction at $800B, in the middle of LDA")
	}

	var buf bytes.Buffer
	if _, err := l[:3].WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		`8000  A9 01     LDA #$01`,
		`8002  9D 00 02  STA $0200,X`,
		`8005  D0 F9     BNE $8000`,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}
