// Package emu drives the console: the master clock, cartridge insertion and
// the snapshots handed to the presentation side.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/snapshot"
)

var ErrNoCartridge = errors.New("no cartridge inserted")

// DisasmStart is where the disassembly dump starts.
const DisasmStart = 0xC000

type NES struct {
	cfg Config
	Bus *hw.Bus
	CPU *hw.CPU
	PPU *hw.PPU

	// mu serializes clocking with cartridge swaps and snapshots.
	mu sync.Mutex

	ticks          uint64
	patternPalette uint8
}

// New creates a console without cartridge.
func New(cfg Config) (*NES, error) {
	pal, err := cfg.Video.LoadPalette()
	if err != nil {
		return nil, err
	}

	bus := hw.NewBus(pal)
	return &NES{
		cfg: cfg,
		Bus: bus,
		CPU: bus.CPU,
		PPU: bus.PPU,
	}, nil
}

// Tick advances the master clock by one PPU dot. The CPU runs one cycle
// every 3 dots, starting with the first one.
func (n *NES) Tick() {
	n.mu.Lock()
	n.tick()
	n.mu.Unlock()
}

func (n *NES) tick() {
	n.PPU.Tick()
	if n.PPU.PollNMI() {
		n.CPU.NMI()
	}
	if n.ticks%3 == 0 {
		n.CPU.Clock()
	}
	n.ticks++
}

// Ticks returns the number of master clock ticks since the last reset.
func (n *NES) Ticks() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ticks
}

// RunFrame runs the clock until the PPU completes the current frame.
func (n *NES) RunFrame() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Bus.Cartridge() == nil {
		return ErrNoCartridge
	}

	frame := n.PPU.FrameCount()
	for n.PPU.FrameCount() == frame {
		n.tick()
	}
	return nil
}

// InsertCartridge loads the rom at path and plugs it, replacing the current
// cartridge, then resets the console.
func (n *NES) InsertCartridge(path string) error {
	cart, err := hw.LoadCartridge(path)
	if err != nil {
		return err
	}
	return n.insert(cart)
}

// LoadCartridge reads a rom from r and plugs it, replacing the current
// cartridge, then resets the console.
func (n *NES) LoadCartridge(r io.Reader) error {
	cart, err := hw.NewCartridge(r)
	if err != nil {
		return err
	}
	return n.insert(cart)
}

func (n *NES) insert(cart *hw.Cartridge) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Bus.InsertCartridge(cart)

	if path := n.cfg.Debug.DisasmOut; path != "" {
		if err := n.writeDisasm(path); err != nil {
			log.ModEmu.WarnZ("failed to write disassembly").
				String("path", path).
				Error("err", err).
				End()
		}
	}

	n.reset()
	return nil
}

func (n *NES) writeDisasm(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := n.CPU.Disassemble(DisasmStart).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Disassemble writes the disassembly of the cartridge program, from
// DisasmStart to the end of the address space.
func (n *NES) Disassemble(w io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Bus.Cartridge() == nil {
		return ErrNoCartridge
	}
	if _, err := n.CPU.Disassemble(DisasmStart).WriteTo(w); err != nil {
		return fmt.Errorf("disassembly: %w", err)
	}
	return nil
}

// Reset resets the CPU and the PPU.
func (n *NES) Reset() {
	n.mu.Lock()
	n.reset()
	n.mu.Unlock()
}

func (n *NES) reset() {
	n.PPU.Reset()
	n.CPU.Reset()
	n.ticks = 0
	log.ModEmu.InfoZ("reset").Hex16("pc", n.CPU.PC).End()
}

// SetTraceOutput enables the CPU execution trace, or disables it if w is nil.
func (n *NES) SetTraceOutput(w io.Writer) {
	n.mu.Lock()
	n.CPU.SetTraceOutput(w)
	n.mu.Unlock()
}

// CyclePatternPalette selects the next working palette used to color the
// pattern tables in snapshots.
func (n *NES) CyclePatternPalette() uint8 {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.patternPalette = (n.patternPalette + 1) % 8
	return n.patternPalette
}

// Snapshot returns a deep copy of the console state.
func (n *NES) Snapshot() *snapshot.NES {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Bus.Snapshot(n.patternPalette)
}
