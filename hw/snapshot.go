package hw

import "nescore/hw/snapshot"

// Snapshot returns a deep copy of the console state. The pattern tables are
// colored with the working palette patternPalette (0-7).
func (b *Bus) Snapshot(patternPalette uint8) *snapshot.NES {
	s := &snapshot.NES{Version: snapshot.Version}
	copy(s.RAM[:], b.ram.Data)

	cpu := b.CPU
	s.CPU = snapshot.CPU{
		PC:         cpu.PC,
		SP:         cpu.SP,
		P:          uint8(cpu.P | Reserved),
		A:          cpu.A,
		X:          cpu.X,
		Y:          cpu.Y,
		Cycles:     cpu.Cycles,
		IllegalOps: cpu.IllegalOps,
	}

	p := b.PPU
	patternPalette &= 0x07
	s.PPU = snapshot.PPU{
		Scanline:       p.Scanline,
		Cycle:          p.Cycle,
		FrameCount:     p.frameCount,
		PPUCTRL:        p.ctrl,
		PPUMASK:        p.mask,
		PPUSTATUS:      p.status,
		VRAMAddr:       p.vramAddr.val(),
		VRAMTemp:       p.vramTmp.val(),
		Finex:          p.finex,
		WriteLatch:     p.writeLatch,
		Palette:        p.palettes,
		Frame:          append([]uint32(nil), p.frame[:]...),
		PatternPalette: patternPalette,
		PatternTables: [2][]uint32{
			p.PatternTable(0, patternPalette),
			p.PatternTable(1, patternPalette),
		},
	}
	for i, c := range p.masterPalette {
		s.PPU.MasterPalette[i] = c.Packed()
	}
	return s
}
