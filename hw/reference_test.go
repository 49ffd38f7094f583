package hw

import (
	"path/filepath"
	"testing"

	fnes "github.com/fogleman/nes/nes"

	"nescore/tests"
)

// TestCPUAgainstReference steps our CPU and a reference 6502 implementation
// side by side through the official opcodes part of nestest.
func TestCPUAgainstReference(t *testing.T) {
	if testing.Short() {
		t.Skip("long test")
	}

	path := filepath.Join(tests.RomsPath(t), "other", "nestest.nes")

	cart, err := LoadCartridge(path)
	if err != nil {
		t.Fatal(err)
	}
	bus := NewBus(DefaultPalette)
	bus.InsertCartridge(cart)
	bus.CPU.Reset()
	bus.CPU.PC = 0xC000

	ref, err := fnes.NewConsole(path)
	if err != nil {
		t.Fatal(err)
	}
	ref.CPU.PC = 0xC000
	ref.CPU.SP = 0xFD

	type state struct {
		PC          uint16
		SP, A, X, Y uint8
		P           uint8
		Cycles      int
	}

	for i := 0; ; i++ {
		if op := bus.Peek8(bus.CPU.PC); IsIllegal(op) {
			t.Logf("stopped at illegal opcode $%02X after %d instructions", op, i)
			break
		}
		if i > 10000 {
			t.Fatal("no illegal opcode reached")
		}

		pc := bus.CPU.PC
		n := bus.CPU.Step()
		rn := ref.CPU.Step()

		got := state{bus.CPU.PC, bus.CPU.SP, bus.CPU.A, bus.CPU.X, bus.CPU.Y, uint8(bus.CPU.P) & 0xCF, n}
		want := state{ref.CPU.PC, ref.CPU.SP, ref.CPU.A, ref.CPU.X, ref.CPU.Y, ref.CPU.Flags() & 0xCF, int(rn)}
		if got != want {
			t.Fatalf("instruction %d at $%04X ($%02X)\ngot:  %+v\nwant: %+v", i, pc, bus.Peek8(pc), got, want)
		}
	}
}
