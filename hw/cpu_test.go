package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCPUReset(t *testing.T) {
	cpu, _ := newTestCPU(t)

	want := regs{SP: 0xFD, PC: 0x8000, P: Interrupt}
	if diff := cmp.Diff(want, cpuRegs(cpu)); diff != "" {
		t.Errorf("registers mismatch (-want +got):\n%s", diff)
	}
	if cpu.Cycles != 7 {
		t.Errorf("Cycles = %d, want 7", cpu.Cycles)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		p    P
		want string
	}{
		{0x00, "nvubdizc"},
		{0xFF, "NVUBDIZC"},
		{Carry | Zero, "nvubdiZC"},
		{Negative | Interrupt, "NvubdIzc"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("P(%02X).String() = %s, want %s", uint8(tt.p), got, tt.want)
		}
	}
}

func TestADC(t *testing.T) {
	tests := []struct {
		a, m  uint8
		carry bool

		want  uint8
		wantP P
	}{
		{a: 0x50, m: 0x10, want: 0x60},
		{a: 0x50, m: 0x50, want: 0xA0, wantP: Overflow | Negative},
		{a: 0xFF, m: 0x01, want: 0x00, wantP: Carry | Zero},
		{a: 0xD0, m: 0x90, want: 0x60, wantP: Carry | Overflow},
		{a: 0x01, m: 0x01, carry: true, want: 0x03},
		{a: 0x7F, m: 0x00, carry: true, want: 0x80, wantP: Overflow | Negative},
	}
	for _, tt := range tests {
		setc := uint8(0x18) // CLC
		if tt.carry {
			setc = 0x38 // SEC
		}
		cpu, _ := newTestCPU(t,
			setc,
			0xA9, tt.a, // LDA #a
			0x69, tt.m, // ADC #m
		)
		cpu.P = 0
		steps(cpu, 3)

		if cpu.A != tt.want || cpu.P != tt.wantP {
			t.Errorf("$%02X+$%02X (C=%t) = $%02X P=%s, want $%02X P=%s",
				tt.a, tt.m, tt.carry, cpu.A, cpu.P, tt.want, tt.wantP)
		}
	}
}

func TestSBC(t *testing.T) {
	tests := []struct {
		a, m  uint8
		want  uint8
		wantP P
	}{
		{a: 0x50, m: 0x30, want: 0x20, wantP: Carry},
		{a: 0x50, m: 0xF0, want: 0x60},
		{a: 0x50, m: 0xB0, want: 0xA0, wantP: Overflow | Negative},
		{a: 0x30, m: 0x30, want: 0x00, wantP: Carry | Zero},
	}
	for _, tt := range tests {
		cpu, _ := newTestCPU(t,
			0x38,       // SEC
			0xA9, tt.a, // LDA #a
			0xE9, tt.m, // SBC #m
		)
		cpu.P = 0
		steps(cpu, 3)

		if cpu.A != tt.want || cpu.P != tt.wantP {
			t.Errorf("$%02X-$%02X = $%02X P=%s, want $%02X P=%s",
				tt.a, tt.m, cpu.A, cpu.P, tt.want, tt.wantP)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, m  uint8
		wantP P
	}{
		{a: 0x40, m: 0x30, wantP: Carry},
		{a: 0x40, m: 0x40, wantP: Carry | Zero},
		{a: 0x30, m: 0x40, wantP: Negative},
	}
	for _, tt := range tests {
		cpu, _ := newTestCPU(t,
			0xA9, tt.a, // LDA #a
			0xC9, tt.m, // CMP #m
		)
		cpu.P = 0
		steps(cpu, 2)

		if cpu.P != tt.wantP {
			t.Errorf("CMP $%02X with A=$%02X: P=%s, want %s", tt.m, tt.a, cpu.P, tt.wantP)
		}
	}
}

func TestShiftAndRotate(t *testing.T) {
	cpu, mem := newTestCPU(t,
		0xA9, 0x81, // LDA #$81
		0x0A,       // ASL A
		0x6A,       // ROR A
		0x46, 0x10, // LSR $10
		0x26, 0x11, // ROL $11
	)
	mem[0x10] = 0x01
	mem[0x11] = 0x80

	steps(cpu, 2)
	if cpu.A != 0x02 || !cpu.P.Carry() {
		t.Fatalf("ASL: A=$%02X P=%s", cpu.A, cpu.P)
	}
	steps(cpu, 1)
	if cpu.A != 0x81 || cpu.P.Carry() || !cpu.P.Negative() {
		t.Fatalf("ROR: A=$%02X P=%s", cpu.A, cpu.P)
	}
	steps(cpu, 1)
	wantMem8(t, mem, 0x10, 0x00)
	if !cpu.P.Carry() || !cpu.P.Zero() {
		t.Fatalf("LSR: P=%s", cpu.P)
	}
	steps(cpu, 1)
	wantMem8(t, mem, 0x11, 0x01)
	if !cpu.P.Carry() || cpu.P.Zero() {
		t.Fatalf("ROL: P=%s", cpu.P)
	}
}

func TestJMPIndirectBug(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	mem[0x02FF] = 0x00
	mem[0x0200] = 0x90
	mem[0x0300] = 0x80

	if n := cpu.Step(); n != 5 {
		t.Errorf("JMP indirect took %d cycles, want 5", n)
	}
	if cpu.PC != 0x9000 {
		t.Errorf("PC = $%04X, want $9000", cpu.PC)
	}
}

func TestJMPAbsolute(t *testing.T) {
	cpu, _ := newTestCPU(t, 0x4C, 0x34, 0x12) // JMP $1234

	if n := cpu.Step(); n != 3 {
		t.Errorf("JMP absolute took %d cycles, want 3", n)
	}
	if cpu.PC != 0x1234 {
		t.Errorf("PC = $%04X, want $1234", cpu.PC)
	}
}

func TestZeroPageWrap(t *testing.T) {
	cpu, mem := newTestCPU(t,
		0xA2, 0x02, // LDX #$02
		0xB5, 0xFF, // LDA $FF,X
		0xA1, 0xFE, // LDA ($FE,X)
	)
	mem[0x0001] = 0x42
	mem[0x0101] = 0x99

	// ($FE+2) wraps to $00, the pointer is read from $00-$01.
	mem[0x0000] = 0x34
	mem[0x4234] = 0x77

	steps(cpu, 2)
	if cpu.A != 0x42 {
		t.Errorf("LDA $FF,X: A = $%02X, want $42", cpu.A)
	}
	steps(cpu, 1)
	if cpu.A != 0x77 {
		t.Errorf("LDA ($FE,X): A = $%02X, want $77", cpu.A)
	}
}

func TestIndirectPointerWrap(t *testing.T) {
	cpu, mem := newTestCPU(t,
		0xA0, 0x00, // LDY #$00
		0xB1, 0xFF, // LDA ($FF),Y
	)
	// pointer high byte is read from $00, not $100.
	mem[0x00FF] = 0x00
	mem[0x0000] = 0x30
	mem[0x0100] = 0x40
	mem[0x3000] = 0x55

	steps(cpu, 2)
	if cpu.A != 0x55 {
		t.Errorf("A = $%02X, want $55", cpu.A)
	}
}

func TestPageCrossPenalty(t *testing.T) {
	tests := []struct {
		name   string
		prog   []uint8
		x, y   uint8
		cycles int
	}{
		{"LDA abs,X same page", []uint8{0xBD, 0xF0, 0x20}, 0x01, 0, 4},
		{"LDA abs,X crossed", []uint8{0xBD, 0xF0, 0x20}, 0x20, 0, 5},
		{"LDA abs,Y crossed", []uint8{0xB9, 0xF0, 0x20}, 0, 0x20, 5},
		{"STA abs,X same page", []uint8{0x9D, 0xF0, 0x20}, 0x01, 0, 5},
		{"STA abs,X crossed", []uint8{0x9D, 0xF0, 0x20}, 0x20, 0, 5},
		{"LDA (zp),Y same page", []uint8{0xB1, 0x10}, 0, 0x01, 5},
		{"LDA (zp),Y crossed", []uint8{0xB1, 0x10}, 0, 0x20, 6},
		// Known discrepancy: written as (addr+Y)&0xFF00 != addr&0xFF00 with C
		// precedence, the check is always false and never adds the cycle.
		// The high bytes of base and base+Y are compared instead.
		{"LDA (zp),Y crossed, C precedence check discrepancy", []uint8{0xB1, 0x10}, 0, 0xFF, 6},
		{"SBC (zp),Y crossed", []uint8{0xF1, 0x10}, 0, 0x20, 6},
		{"STA (zp),Y crossed", []uint8{0x91, 0x10}, 0, 0x20, 6},
		{"INC abs,X crossed", []uint8{0xFE, 0xF0, 0x20}, 0x20, 0, 7},
		{"illegal NOP abs,X crossed", []uint8{0x1C, 0xF0, 0x20}, 0x20, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := newTestCPU(t, tt.prog...)
			mem[0x10] = 0xF0
			mem[0x11] = 0x20
			cpu.X = tt.x
			cpu.Y = tt.y

			if got := cpu.Step(); got != tt.cycles {
				t.Errorf("got %d cycles, want %d", got, tt.cycles)
			}
		})
	}
}

func TestBranchCycles(t *testing.T) {
	tests := []struct {
		name   string
		at     uint16
		prog   []uint8
		cycles int
		pc     uint16
	}{
		{"not taken", 0x8000, []uint8{0xF0, 0x10}, 2, 0x8002},             // BEQ
		{"taken", 0x8000, []uint8{0xD0, 0x10}, 3, 0x8012},                 // BNE
		{"taken backwards", 0x8010, []uint8{0xD0, 0xFC}, 3, 0x800E},       // BNE
		{"taken page cross", 0x80FD, []uint8{0xD0, 0x01}, 4, 0x8100},      // BNE
		{"taken back page cross", 0x8100, []uint8{0xD0, 0xF0}, 4, 0x80F2}, // BNE
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := newTestCPU(t)
			copy(mem[tt.at:], tt.prog)
			cpu.PC = tt.at
			cpu.P = 0

			if got := cpu.Step(); got != tt.cycles {
				t.Errorf("got %d cycles, want %d", got, tt.cycles)
			}
			if cpu.PC != tt.pc {
				t.Errorf("PC = $%04X, want $%04X", cpu.PC, tt.pc)
			}
		})
	}
}

func TestJSRRTS(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x20, 0x00, 0x90) // JSR $9000
	mem[0x9000] = 0x60                          // RTS

	if n := cpu.Step(); n != 6 {
		t.Errorf("JSR took %d cycles, want 6", n)
	}
	if cpu.PC != 0x9000 || cpu.SP != 0xFB {
		t.Fatalf("after JSR: PC=$%04X SP=$%02X", cpu.PC, cpu.SP)
	}
	// return address - 1
	wantMem8(t, mem, 0x01FD, 0x80)
	wantMem8(t, mem, 0x01FC, 0x02)

	cpu.Step()
	if cpu.PC != 0x8003 || cpu.SP != 0xFD {
		t.Fatalf("after RTS: PC=$%04X SP=$%02X", cpu.PC, cpu.SP)
	}
}

func TestBRKRTI(t *testing.T) {
	cpu, mem := newTestCPU(t, 0x00) // BRK
	mem[IRQVector] = 0x00
	mem[IRQVector+1] = 0x90
	mem[0x9000] = 0x40 // RTI
	cpu.P = Carry

	if n := cpu.Step(); n != 7 {
		t.Errorf("BRK took %d cycles, want 7", n)
	}
	if cpu.PC != 0x9000 || !cpu.P.Interrupt() {
		t.Fatalf("after BRK: PC=$%04X P=%s", cpu.PC, cpu.P)
	}
	// PC+2 and P with B and U set.
	wantMem8(t, mem, 0x01FD, 0x80)
	wantMem8(t, mem, 0x01FC, 0x02)
	wantMem8(t, mem, 0x01FB, uint8(Carry|Break|Reserved))

	cpu.Step()
	want := regs{SP: 0xFD, PC: 0x8002, P: Carry}
	if diff := cmp.Diff(want, cpuRegs(cpu)); diff != "" {
		t.Errorf("after RTI (-want +got):\n%s", diff)
	}
}

func TestPHPPLP(t *testing.T) {
	cpu, mem := newTestCPU(t,
		0x08, // PHP
		0x28, // PLP
	)
	cpu.P = Negative | Carry

	steps(cpu, 1)
	wantMem8(t, mem, 0x01FD, uint8(Negative|Carry|Break|Reserved))

	steps(cpu, 1)
	if cpu.P != Negative|Carry {
		t.Errorf("after PLP: P=%s, want %s", cpu.P, Negative|Carry)
	}
}

func TestNMI(t *testing.T) {
	cpu, mem := newTestCPU(t)
	mem[NMIVector] = 0x00
	mem[NMIVector+1] = 0xA0
	cpu.P = Zero

	before := cpu.Cycles
	cpu.NMI()

	if cpu.PC != 0xA000 || !cpu.P.Interrupt() {
		t.Fatalf("after NMI: PC=$%04X P=%s", cpu.PC, cpu.P)
	}
	if got := cpu.Cycles - before; got != 7 {
		t.Errorf("NMI took %d cycles, want 7", got)
	}
	// B clear, U set.
	wantMem8(t, mem, 0x01FB, uint8(Zero|Reserved))
}

func TestIRQMasked(t *testing.T) {
	cpu, mem := newTestCPU(t)
	mem[IRQVector] = 0x00
	mem[IRQVector+1] = 0xA0

	cpu.IRQ()
	if cpu.PC != 0x8000 {
		t.Fatalf("masked IRQ was serviced, PC=$%04X", cpu.PC)
	}

	cpu.P.clearFlags(Interrupt)
	cpu.IRQ()
	if cpu.PC != 0xA000 {
		t.Fatalf("IRQ not serviced, PC=$%04X", cpu.PC)
	}
}

func TestIllegalOpcode(t *testing.T) {
	cpu, _ := newTestCPU(t,
		0x04, 0x10, // NOP zp (illegal)
		0xEA,       // NOP
	)

	if !IsIllegal(0x04) || IsIllegal(0xEA) {
		t.Fatal("IsIllegal mismatch")
	}

	if n := steps(cpu, 2); n != 5 {
		t.Errorf("got %d cycles, want 5", n)
	}
	if cpu.PC != 0x8003 {
		t.Errorf("PC = $%04X, want $8003", cpu.PC)
	}
	if cpu.IllegalOps != 1 {
		t.Errorf("IllegalOps = %d, want 1", cpu.IllegalOps)
	}
}

func TestClock(t *testing.T) {
	cpu, _ := newTestCPU(t,
		0xA9, 0x01,       // LDA #$01 (2 cycles)
		0x8D, 0x00, 0x02, // STA $0200 (4 cycles)
	)

	// The instruction executes on its first cycle.
	cpu.Clock()
	if cpu.A != 0x01 {
		t.Fatalf("A = $%02X, want $01", cpu.A)
	}
	if cpu.Complete() {
		t.Fatal("LDA should still be in progress")
	}
	cpu.Clock()
	if !cpu.Complete() {
		t.Fatal("LDA should be complete")
	}

	for range 4 {
		cpu.Clock()
	}
	if cpu.PC != 0x8005 || !cpu.Complete() {
		t.Fatalf("PC = $%04X, complete = %t", cpu.PC, cpu.Complete())
	}
	if cpu.Cycles != 7+6 {
		t.Errorf("Cycles = %d, want 13", cpu.Cycles)
	}
}
