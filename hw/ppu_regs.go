package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// PPU registers, mapped from $2000 to $2007, mirrored up to $3FFF.
const (
	PPUCTRL   = 0x0
	PPUMASK   = 0x1
	PPUSTATUS = 0x2
	OAMADDR   = 0x3
	OAMDATA   = 0x4
	PPUSCROLL = 0x5
	PPUADDR   = 0x6
	PPUDATA   = 0x7
)

// loopy is the layout of the internal v and t VRAM address registers:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

const (
	coarsexMask   = 0b000_00_00000_11111
	coarseyMask   = 0b000_00_11111_00000
	nametableMask = 0b000_11_00000_00000
	ntxMask       = 0b000_01_00000_00000
	ntyMask       = 0b000_10_00000_00000
	fineyMask     = 0b111_00_00000_00000
)

func (l loopy) coarsex() uint16   { return uint16(l) & coarsexMask }
func (l loopy) coarsey() uint16   { return uint16(l) & coarseyMask >> 5 }
func (l loopy) nametable() uint16 { return uint16(l) & nametableMask >> 10 }
func (l loopy) finey() uint16     { return uint16(l) & fineyMask >> 12 }
func (l loopy) high() uint8       { return uint8(l >> 8) }
func (l loopy) low() uint8        { return uint8(l) }
func (l loopy) val() uint16       { return uint16(l) & 0x7FFF }

func (l *loopy) setCoarsex(v uint16) { *l = *l&^coarsexMask | loopy(v&0x1F) }
func (l *loopy) setCoarsey(v uint16) { *l = *l&^coarseyMask | loopy(v&0x1F)<<5 }
func (l *loopy) setFiney(v uint16)   { *l = *l&^fineyMask | loopy(v&0x07)<<12 }

func (l *loopy) setNametable(v uint16) {
	*l = *l&^nametableMask | loopy(v&0b11)<<10
}

// incrementX moves to the next tile horizontally, switching to the
// horizontally adjacent nametable past the last column.
func (l *loopy) incrementX() {
	if l.coarsex() == 31 {
		l.setCoarsex(0)
		*l ^= ntxMask
		return
	}
	l.setCoarsex(l.coarsex() + 1)
}

// incrementY moves to the next pixel row, switching to the vertically
// adjacent nametable past the last tile row (29). Rows 30 and 31 are the
// attribute table, wrapping from 31 stays in the same nametable.
func (l *loopy) incrementY() {
	if fy := l.finey(); fy < 7 {
		l.setFiney(fy + 1)
		return
	}
	l.setFiney(0)

	switch y := l.coarsey(); y {
	case 29:
		l.setCoarsey(0)
		*l ^= ntyMask
	case 31:
		l.setCoarsey(0)
	default:
		l.setCoarsey(y + 1)
	}
}

// copyX copies the horizontal position from t.
func (l *loopy) copyX(t loopy) {
	const mask = coarsexMask | ntxMask
	*l = *l&^mask | t&mask
}

// copyY copies the vertical position from t.
func (l *loopy) copyY(t loopy) {
	const mask = coarseyMask | ntyMask | fineyMask
	*l = *l&^mask | t&mask
}

// ReadRegister reads one of the 8 PPU registers. If peek is true, the read
// has no side effects.
func (p *PPU) ReadRegister(reg uint8, peek bool) uint8 {
	switch reg & 0x07 {
	case PPUSTATUS:
		return p.readPPUSTATUS(peek)
	case OAMDATA:
		return p.oam[p.oamAddr]
	case PPUDATA:
		return p.readPPUDATA(peek)
	}
	// Write-only registers.
	return 0
}

// WriteRegister writes one of the 8 PPU registers.
func (p *PPU) WriteRegister(reg uint8, val uint8) {
	switch reg & 0x07 {
	case PPUCTRL:
		p.writePPUCTRL(val)
	case PPUMASK:
		p.writePPUMASK(val)
	case PPUSTATUS:
		log.ModPPU.DebugZ("Write to read-only PPUSTATUS").Hex8("val", val).End()
	case OAMADDR:
		p.oamAddr = val
	case OAMDATA:
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case PPUSCROLL:
		p.writePPUSCROLL(val)
	case PPUADDR:
		p.writePPUADDR(val)
	case PPUDATA:
		p.writePPUDATA(val)
	}
}

// PPUCTRL: $2000
func (p *PPU) writePPUCTRL(val uint8) {
	if p.ignoreCtrlWrites {
		return
	}
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()

	// Enabling NMI during vblank raises it immediately.
	if !hwio.GetBit8(p.ctrl, nmi) && hwio.GetBit8(val, nmi) && hwio.GetBit8(p.status, vblank) {
		p.nmiPending = true
	}
	p.ctrl = val

	// Transfer the nametable bits.
	p.vramTmp.setNametable(uint16(val & ntselect))
}

// PPUMASK: $2001
func (p *PPU) writePPUMASK(val uint8) {
	if p.ignoreCtrlWrites {
		return
	}
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.mask = val
}

// PPUSTATUS: $2002
func (p *PPU) readPPUSTATUS(peek bool) uint8 {
	ret := p.status&^openbusMask | p.ppuDataRbuf&openbusMask
	if !peek {
		hwio.ClearBit8(&p.status, vblank)
		p.writeLatch = false
	}
	return ret
}

// PPUSCROLL: $2005
func (p *PPU) writePPUSCROLL(val uint8) {
	if p.ignoreCtrlWrites {
		return
	}
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()

	if !p.writeLatch { // first write
		p.finex = val & 0b111
		p.vramTmp.setCoarsex(uint16(val >> 3))
	} else { // second write
		p.vramTmp.setFiney(uint16(val & 0b111))
		p.vramTmp.setCoarsey(uint16(val >> 3))
	}

	p.writeLatch = !p.writeLatch
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) writePPUADDR(val uint8) {
	if p.ignoreCtrlWrites {
		return
	}

	if !p.writeLatch { // first write
		p.vramTmp &^= 0xFF00
		p.vramTmp |= loopy(val&0b11_1111) << 8
	} else { // second write
		p.vramTmp &^= 0x00FF
		p.vramTmp |= loopy(val)
		p.vramAddr = p.vramTmp
	}

	p.writeLatch = !p.writeLatch
}

// PPUDATA: $2007
func (p *PPU) readPPUDATA(peek bool) uint8 {
	addr := p.vramAddr.val() & 0x3FFF
	if peek {
		if addr >= 0x3F00 {
			return p.VRAM.PPURead(addr)
		}
		return p.ppuDataRbuf
	}

	var val uint8
	switch {
	case addr < 0x3F00:
		// Reading VRAM is too slow so the actual data
		// will be returned at the next read.
		val = p.ppuDataRbuf
		p.ppuDataRbuf = p.VRAM.PPURead(addr)
	default: // $3F00-3FFF
		// Reading palette data is immediate.
		val = p.VRAM.PPURead(addr)
		// Still the buffer gets the nametable byte 'under' the palette.
		p.ppuDataRbuf = p.VRAM.PPURead(addr - 0x1000)
	}

	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
	p.incVRAMaddr()
	return val
}

// PPUDATA: $2007
func (p *PPU) writePPUDATA(val uint8) {
	addr := p.vramAddr.val() & 0x3FFF
	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()

	p.VRAM.PPUWrite(addr, val)
	p.incVRAMaddr()
}

// After each i/o on PPUDATA, PPUADDR is incremented.
func (p *PPU) incVRAMaddr() {
	incr := loopy(1)
	if hwio.GetBit8(p.ctrl, vramIncr) {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7FFF
}
