package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"

	"nescore/hw/hwio"
	"nescore/tests"
)

type procState struct {
	PC          uint16
	SP, A, X, Y uint8
	P           uint8
	RAM         [][2]int // address, value
}

type procTest struct {
	Name    string
	Initial procState
	Final   procState
	Cycles  int
}

func (s *procState) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		if key == "ram" {
			return d.Arr(func(d *jx.Decoder) error {
				var row [2]int
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					v, err := d.Int()
					if i < len(row) {
						row[i] = v
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, row)
				return err
			})
		}

		v, err := d.Int()
		if err != nil {
			return err
		}
		switch key {
		case "pc":
			s.PC = uint16(v)
		case "s":
			s.SP = uint8(v)
		case "a":
			s.A = uint8(v)
		case "x":
			s.X = uint8(v)
		case "y":
			s.Y = uint8(v)
		case "p":
			s.P = uint8(v)
		}
		return nil
	})
}

func decodeProcTests(buf []byte) ([]procTest, error) {
	var all []procTest
	err := jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var tt procTest
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				s, err := d.Str()
				tt.Name = s
				return err
			case "initial":
				return tt.Initial.decode(d)
			case "final":
				return tt.Final.decode(d)
			case "cycles":
				return d.Arr(func(d *jx.Decoder) error {
					tt.Cycles++
					return d.Skip()
				})
			}
			return d.Skip()
		})
		all = append(all, tt)
		return err
	})
	return all, err
}

func TestDecodeProcTests(t *testing.T) {
	const js = `[{
		"name": "a9 01 00",
		"initial": {"pc": 1000, "s": 253, "a": 0, "x": 1, "y": 2, "p": 36, "ram": [[1000, 169], [1001, 1]]},
		"final": {"pc": 1002, "s": 253, "a": 1, "x": 1, "y": 2, "p": 36, "ram": [[1000, 169], [1001, 1]]},
		"cycles": [[1000, 169, "read"], [1001, 1, "read"]]
	}]`

	got, err := decodeProcTests([]byte(js))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d tests, want 1", len(got))
	}
	tt := got[0]
	if tt.Name != "a9 01 00" || tt.Cycles != 2 {
		t.Errorf("name=%q cycles=%d", tt.Name, tt.Cycles)
	}
	if tt.Initial.PC != 1000 || tt.Final.A != 1 || tt.Initial.Y != 2 || tt.Final.P != 36 {
		t.Errorf("unexpected states: %+v %+v", tt.Initial, tt.Final)
	}
	if len(tt.Final.RAM) != 2 || tt.Final.RAM[0] != [2]int{1000, 169} {
		t.Errorf("unexpected ram: %v", tt.Final.RAM)
	}
}

// TestProcessorTests runs the single step tests of all official opcodes.
func TestProcessorTests(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test")
	}

	var official []uint8
	for code := range 256 {
		if !IsIllegal(uint8(code)) {
			official = append(official, uint8(code))
		}
	}
	dir := tests.TomHarteProcTestsPath(t, official)

	for _, code := range official {
		t.Run(fmt.Sprintf("%02x", code), func(t *testing.T) {
			t.Parallel()

			buf, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("%02x.json", code)))
			if err != nil {
				t.Fatal(err)
			}
			all, err := decodeProcTests(buf)
			if err != nil {
				t.Fatal(err)
			}

			mem := &hwio.Mem{Name: "flat", Data: make([]byte, 0x10000)}
			bus := hwio.NewTable("proctest")
			bus.MapMem(0x0000, mem)
			cpu := NewCPU(bus)

			for _, tt := range all {
				for _, row := range tt.Initial.RAM {
					mem.Data[uint16(row[0])] = uint8(row[1])
				}
				cpu.PC = tt.Initial.PC
				cpu.SP = tt.Initial.SP
				cpu.A = tt.Initial.A
				cpu.X = tt.Initial.X
				cpu.Y = tt.Initial.Y
				cpu.P = P(tt.Initial.P)
				cpu.P.clearFlags(Break | Reserved)

				ncycles := cpu.Step()
				checkProcState(t, tt, cpu, ncycles, mem.Data)
				if t.Failed() {
					t.FailNow()
				}

				// Only the listed addresses are touched.
				for _, row := range tt.Final.RAM {
					mem.Data[uint16(row[0])] = 0
				}
				for _, row := range tt.Initial.RAM {
					mem.Data[uint16(row[0])] = 0
				}
			}
		})
	}
}

func checkProcState(t *testing.T, tt procTest, cpu *CPU, ncycles int, mem []byte) {
	t.Helper()

	// B and U don't exist in the register.
	const pmask = 0xCF

	got := cpuRegs(cpu)
	got.P &= pmask
	fin := tt.Final
	want := regs{PC: fin.PC, SP: fin.SP, A: fin.A, X: fin.X, Y: fin.Y, P: P(fin.P) & pmask}
	if got != want {
		t.Errorf("%s: state mismatch\ngot:  %+v\nwant: %+v", tt.Name, got, want)
	}
	if ncycles != tt.Cycles {
		t.Errorf("%s: got %d cycles, want %d", tt.Name, ncycles, tt.Cycles)
	}
	for _, row := range tt.Final.RAM {
		if v := mem[uint16(row[0])]; v != uint8(row[1]) {
			t.Errorf("%s: ram[$%04X] = $%02X, want $%02X", tt.Name, row[0], v, row[1])
		}
	}
}
