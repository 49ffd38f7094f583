package mappers

import "nescore/hw/hwio"

var NROMDesc = Desc{
	Name: "NROM",
	New:  func(prg, chr [][]byte) Mapper { return NewNROM(prg, chr) },
}

// NROM is the mapper 0 board: 16KB or 32KB of PRG ROM, without bank
// switching, and 8KB of CHR ROM.
type NROM struct {
	PRGROM hwio.Mem
	CHRROM hwio.Mem
}

func NewNROM(prg, chr [][]byte) *NROM {
	m := &NROM{
		// A single 16KB bank is mirrored over $8000-$FFFF by the Mem mask.
		PRGROM: hwio.Mem{
			Name:  "PRG ROM",
			VSize: 0x8000,
			Flags: hwio.MemFlag8ReadOnly | hwio.MemFlagNoROLog,
		},
		// Writes to PRG ROM are common (bus conflicts), writes to CHR ROM
		// are not and get logged.
		CHRROM: hwio.Mem{
			Name:  "CHR ROM",
			VSize: 0x2000,
			Flags: hwio.MemFlag8ReadOnly,
		},
	}
	for _, bank := range prg[:min(len(prg), 2)] {
		m.PRGROM.Data = append(m.PRGROM.Data, bank...)
	}
	if len(chr) > 0 {
		m.CHRROM.Data = chr[0]
	}
	return m
}

// CHRRAM reports whether the board has no CHR ROM. CHR RAM isn't emulated:
// PPU accesses then reach the PPU pattern tables.
func (m *NROM) CHRRAM() bool {
	return len(m.CHRROM.Data) == 0
}

func (m *NROM) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x8000:
		return m.PRGROM.Read8(addr-0x8000, false), true
	case addr >= 0x6000:
		modMapper.DebugZ("read from unimplemented PRG RAM").
			Hex16("addr", addr).
			End()
		return 0, true
	}
	return 0, false
}

func (m *NROM) CPUWrite(addr uint16, val uint8) bool {
	switch {
	case addr >= 0x8000:
		m.PRGROM.Write8(addr-0x8000, val)
		return true
	case addr >= 0x6000:
		modMapper.DebugZ("write to unimplemented PRG RAM").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return true
	}
	return false
}

func (m *NROM) PPURead(addr uint16) (uint8, bool) {
	if addr < 0x2000 && !m.CHRRAM() {
		return m.CHRROM.Read8(addr, false), true
	}
	return 0, false
}

func (m *NROM) PPUWrite(addr uint16, val uint8) bool {
	if addr < 0x2000 && !m.CHRRAM() {
		m.CHRROM.Write8(addr, val)
		return true
	}
	return false
}
