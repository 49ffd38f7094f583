package hw

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nescore/tests"
)

type traceLine struct {
	pc   string
	regs string
	cyc  string
}

// traceFields extracts the fields of a nestest.log line which don't depend
// on the disassembler annotations or the PPU.
func traceFields(line string) traceLine {
	line = strings.TrimRight(line, "\r\n")

	var tl traceLine
	if len(line) >= 4 {
		tl.pc = line[:4]
	}
	a := strings.Index(line, "A:")
	p := strings.Index(line, " PPU:")
	if a >= 0 && p > a {
		tl.regs = line[a:p]
	}
	if c := strings.Index(line, "CYC:"); c >= 0 {
		tl.cyc = line[c+4:]
	}
	return tl
}

func TestTraceFields(t *testing.T) {
	const line = "C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD PPU:  0, 21 CYC:7\r\n"

	want := traceLine{pc: "C000", regs: "A:00 X:00 Y:00 P:24 SP:FD", cyc: "7"}
	if got := traceFields(line); got != want {
		t.Errorf("traceFields() = %+v, want %+v", got, want)
	}
}

func TestNestest(t *testing.T) {
	dir := filepath.Join(tests.RomsPath(t), "other")

	cart, err := LoadCartridge(filepath.Join(dir, "nestest.nes"))
	if err != nil {
		t.Fatal(err)
	}
	flog, err := os.Open(filepath.Join(dir, "nestest.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer flog.Close()

	bus := NewBus(DefaultPalette)
	bus.InsertCartridge(cart)
	bus.CPU.Reset()

	// Automated mode.
	bus.CPU.PC = 0xC000

	var trace bytes.Buffer
	bus.CPU.SetTraceOutput(&trace)

	scan := bufio.NewScanner(flog)
	for lineno := 1; scan.Scan(); lineno++ {
		want := scan.Text()
		if len(want) > 15 && want[15] == '*' {
			// Illegal opcodes tests start here.
			break
		}

		trace.Reset()
		bus.CPU.Step()

		got := trace.String()
		if traceFields(got) != traceFields(want) {
			t.Fatalf("line %d\ngot:  %s\nwant: %s", lineno, strings.TrimSpace(got), want)
		}
	}
	if err := scan.Err(); err != nil {
		t.Fatal(err)
	}
}
