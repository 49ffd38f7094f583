package hw

import "nescore/hw/hwio"

// bgFetcher holds the background rendering pipeline state.
type bgFetcher struct {
	// latches, filled by the 8-dot fetch cycle.
	ntByte uint8
	atByte uint8
	loByte uint8
	hiByte uint8

	// shifters, the pixel being output is selected by fine X.
	patternLo uint16
	patternHi uint16
	attrLo    uint16
	attrHi    uint16
}

// reload loads the next tile in the low byte of the shifters.
func (bg *bgFetcher) reload() {
	bg.patternLo = bg.patternLo&0xFF00 | uint16(bg.loByte)
	bg.patternHi = bg.patternHi&0xFF00 | uint16(bg.hiByte)

	// Expand the 2 palette bits over the 8 pixels of the tile.
	bg.attrLo &= 0xFF00
	if bg.atByte&0b01 != 0 {
		bg.attrLo |= 0x00FF
	}
	bg.attrHi &= 0xFF00
	if bg.atByte&0b10 != 0 {
		bg.attrHi |= 0x00FF
	}
}

func (bg *bgFetcher) shift() {
	bg.patternLo <<= 1
	bg.patternHi <<= 1
	bg.attrLo <<= 1
	bg.attrHi <<= 1
}

// renderLine runs the background pipeline for the current dot of a
// visible or pre-render line.
func (p *PPU) renderLine() {
	cycle := p.Cycle
	if (cycle >= 2 && cycle <= 257) || (cycle >= 321 && cycle <= 337) {
		if hwio.GetBit8(p.mask, showBg) {
			p.bg.shift()
		}

		switch (cycle - 1) % 8 {
		case 0:
			p.bg.reload()
			p.fetchNametableByte()
		case 2:
			p.fetchAttributeByte()
		case 4:
			p.bg.loByte = p.VRAM.PPURead(p.patternAddr())
		case 6:
			p.bg.hiByte = p.VRAM.PPURead(p.patternAddr() + 8)
		case 7:
			if p.renderingEnabled() {
				p.vramAddr.incrementX()
			}
		}
	}

	switch cycle {
	case 256:
		if p.renderingEnabled() {
			p.vramAddr.incrementY()
		}
	case 257:
		p.bg.reload()
		if p.renderingEnabled() {
			p.vramAddr.copyX(p.vramTmp)
		}
	case 338, 340:
		// Unused nametable fetches.
		p.fetchNametableByte()
	}
}

func (p *PPU) fetchNametableByte() {
	p.bg.ntByte = p.VRAM.PPURead(0x2000 | uint16(p.vramAddr)&0x0FFF)
}

func (p *PPU) fetchAttributeByte() {
	v := p.vramAddr
	addr := 0x23C0 | v.nametable()<<10 | (v.coarsey()>>2)<<3 | v.coarsex()>>2
	at := p.VRAM.PPURead(addr)

	// Each attribute byte covers 4x4 tiles, select the 2x2 quadrant.
	if v.coarsey()&0x02 != 0 {
		at >>= 4
	}
	if v.coarsex()&0x02 != 0 {
		at >>= 2
	}
	p.bg.atByte = at & 0b11
}

func (p *PPU) patternAddr() uint16 {
	base := uint16(hwio.GetBiti8(p.ctrl, backgroundAddr)) << 12
	return base + uint16(p.bg.ntByte)<<4 + p.vramAddr.finey()
}

// pixel returns the color of the background pixel at the current dot.
func (p *PPU) pixel() uint32 {
	var pix, pal uint8

	visible := hwio.GetBit8(p.mask, showBg) &&
		(p.Cycle > 8 || hwio.GetBit8(p.mask, leftmostBg))
	if visible {
		bit := uint16(0x8000) >> p.finex
		if p.bg.patternLo&bit != 0 {
			pix |= 0b01
		}
		if p.bg.patternHi&bit != 0 {
			pix |= 0b10
		}
		if p.bg.attrLo&bit != 0 {
			pal |= 0b01
		}
		if p.bg.attrHi&bit != 0 {
			pal |= 0b10
		}
	}

	// Transparent pixels show the universal background color.
	if pix == 0 {
		pal = 0
	}
	return p.color(pal, pix).Packed()
}
