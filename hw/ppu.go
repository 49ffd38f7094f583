package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/ines"
)

const (
	NumScanlines = 262 // Number of scanlines per frame.
	NumCycles    = 341 // Number of PPU cycles per scanline.

	ScreenWidth  = 256
	ScreenHeight = 240

	preRenderLine = 261
	vblankLine    = 241
)

const (
	// PPUCTRL bits
	// $2000

	// Nametable selection mask
	// (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ntselect = 0b11

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 2

	// Background pattern table address (0: $0000; 1: $1000)
	backgroundAddr = 4

	// Generate an NMI at the start of the
	// vertical blanking interval (0: off; 1: on)
	nmi = 7
)

const (
	// PPUMASK bits
	// $2001

	// Greyscale
	// (0: normal color, 1: produce a greyscale display)
	greyscale = 0

	// Show background in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostBg = 1

	// Show background
	showBg = 3

	// Show sprites
	showSprites = 4
)

const (
	// PPUSTATUS bits
	// $2002

	// Returns stale PPU bus contents.
	openbusMask = 0b11111

	// Sprite overflow. Set during sprite evaluation and cleared at dot 1
	// (the second dot) of the pre-render line.
	spriteOverflow = 5

	// Sprite 0 Hit. Set when a nonzero pixel of sprite 0 overlaps
	// a nonzero background pixel; cleared at dot 1 of the pre-render
	// line. Used for raster timing.
	sprite0Hit = 6

	// Vertical blank has started (0: not in vblank; 1: in vblank).
	// Set at dot 1 of line 241 (the line *after* the post-render
	// line); cleared after reading $2002 and at dot 1 of the
	// pre-render line.
	vblank = 7
)

// VRAM is the PPU address space, as seen from the PPU.
type VRAM interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, val uint8)
}

type PPU struct {
	// Bus maps the PPU internal memories:
	//	$0000-$1FFF	Pattern tables
	//	$2000-$2FFF	Nametables (mapped according to mirroring)
	//	$3000-$3EFF	Mirrors of $2000-$2EFF
	//	$3F00-$3F1F	Palette RAM indexes
	//	$3F20-$3FFF	Mirrors of $3F00-$3F1F
	Bus *hwio.Table

	// VRAM is used for all PPU memory accesses. It defaults to Bus, but is
	// replaced by the system bus so that the cartridge can intercept them.
	VRAM VRAM

	Cycle    int // Current cycle/pixel in scanline
	Scanline int // Current scanline being drawn

	frameCount uint64
	oddFrame   bool

	PatternTables hwio.Mem
	nametables    [4][0x400]byte
	palettes      [0x20]byte
	mirroring     ines.Mirroring

	masterPalette Palette
	frame         [ScreenWidth * ScreenHeight]uint32

	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	// VRAM read/write
	vramAddr    loopy
	vramTmp     loopy
	finex       uint8
	writeLatch  bool
	ppuDataRbuf uint8

	// Set to ignore writes to PPUCTRL, PPUMASK, PPUSCROLL and PPUADDR. The
	// register lockout following power-on is not emulated so it's never set.
	ignoreCtrlWrites bool

	nmiPending bool

	bg bgFetcher
}

// NewPPU creates a PPU using the given master palette.
func NewPPU(pal Palette) *PPU {
	p := &PPU{
		Bus:           hwio.NewTable("ppu"),
		masterPalette: pal,
	}
	p.VRAM = tableVRAM{p.Bus}
	p.initBus()
	p.Reset()
	return p
}

type tableVRAM struct{ *hwio.Table }

func (t tableVRAM) PPURead(addr uint16) uint8 { return t.Read8(addr&0x3FFF, false) }

func (t tableVRAM) PPUWrite(addr uint16, val uint8) { t.Write8(addr&0x3FFF, val) }

func (p *PPU) initBus() {
	p.PatternTables = hwio.Mem{
		Name: "patterns",
		Data: make([]byte, 0x2000),
	}
	p.Bus.MapMem(0x0000, &p.PatternTables)
	p.Bus.MapDevice(0x3F00, &hwio.Device{
		Name:    "palettes",
		Size:    0x20,
		VSize:   0x100,
		ReadCb:  p.readPalette,
		PeekCb:  p.readPalette,
		WriteCb: p.writePalette,
	})
	p.SetMirroring(ines.Horizontal)
}

// SetMirroring maps the nametables according to the mirroring arrangement.
func (p *PPU) SetMirroring(m ines.Mirroring) {
	log.ModPPU.DebugZ("set nametable mirroring").Stringer("mode", m).End()

	p.mirroring = m
	p.Bus.Unmap(0x2000, 0x3EFF)

	A := p.nametables[0][:]
	B := p.nametables[1][:]

	var nt [4][]byte
	switch m {
	case ines.Horizontal:
		nt = [4][]byte{A, A, B, B}
	case ines.Vertical:
		nt = [4][]byte{A, B, A, B}
	case ines.FourScreen:
		nt = [4][]byte{A, B, p.nametables[2][:], p.nametables[3][:]}
	}

	for i := range nt {
		base := 0x2000 + uint16(i)*0x400
		p.Bus.MapMem(base, &hwio.Mem{Name: "nametable", Data: nt[i]})

		// Mirrors, $3F00-$3FFF is taken by the palettes.
		mirror := &hwio.Mem{Name: "nametable mirror", Data: nt[i]}
		if i == 3 {
			mirror.VSize = 0x300
		}
		p.Bus.MapMem(base+0x1000, mirror)
	}
}

// Mirroring returns the current nametable arrangement.
func (p *PPU) Mirroring() ines.Mirroring {
	return p.mirroring
}

func (p *PPU) Reset() {
	p.Scanline = 0
	p.Cycle = 0
	p.frameCount = 0
	p.oddFrame = false
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.writeLatch = false
	p.vramAddr = 0
	p.vramTmp = 0
	p.finex = 0
	p.ppuDataRbuf = 0
	p.nmiPending = false
	p.bg = bgFetcher{}
}

// palette RAM indexes $10/$14/$18/$1C are mirrors of $00/$04/$08/$0C.
func paletteIndex(addr uint16) uint16 {
	addr &= 0x1F
	if addr&0x13 == 0x10 {
		addr &^= 0x10
	}
	return addr
}

func (p *PPU) readPalette(addr uint16) uint8 {
	val := p.palettes[paletteIndex(addr)]
	if hwio.GetBit8(p.mask, greyscale) {
		return val & 0x30
	}
	return val & 0x3F
}

func (p *PPU) writePalette(addr uint16, val uint8) {
	p.palettes[paletteIndex(addr)] = val
}

func (p *PPU) renderingEnabled() bool {
	return hwio.GetBit8(p.mask, showBg) || hwio.GetBit8(p.mask, showSprites)
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	switch {
	case p.Scanline < ScreenHeight:
		if p.Scanline == 0 && p.Cycle == 0 && p.oddFrame && p.renderingEnabled() {
			// Odd frames are one dot shorter.
			p.Cycle = 1
		}
		p.renderLine()
	case p.Scanline == vblankLine:
		if p.Cycle == 1 {
			hwio.SetBit8(&p.status, vblank)
			if hwio.GetBit8(p.ctrl, nmi) {
				p.nmiPending = true
			}
		}
	case p.Scanline == preRenderLine:
		if p.Cycle == 1 {
			// Clear vblank, sprite0Hit and spriteOverflow
			p.status &^= 1<<vblank | 1<<sprite0Hit | 1<<spriteOverflow
			p.oddFrame = !p.oddFrame
		}
		p.renderLine()
		if p.Cycle >= 280 && p.Cycle <= 304 && p.renderingEnabled() {
			p.vramAddr.copyY(p.vramTmp)
		}
	}

	if p.Scanline < ScreenHeight && p.Cycle >= 1 && p.Cycle <= ScreenWidth {
		p.frame[(p.Cycle-1)+p.Scanline*ScreenWidth] = p.pixel()
	}

	p.Cycle++
	if p.Cycle >= NumCycles {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline >= NumScanlines {
			p.Scanline = 0
			p.frameCount++
		}
	}
}

// PollNMI reports whether an NMI has been raised since the last call.
func (p *PPU) PollNMI() bool {
	if p.nmiPending {
		p.nmiPending = false
		return true
	}
	return false
}

// Position returns the current scanline and dot.
func (p *PPU) Position() (scanline, dot int) {
	return p.Scanline, p.Cycle
}

// FrameCount returns the number of complete frames.
func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// FrameBuffer returns the 256x240 screen, as 0xRRGGBB pixels. It must not be
// modified.
func (p *PPU) FrameBuffer() []uint32 {
	return p.frame[:]
}

// MasterPalette returns the 64 colors palette.
func (p *PPU) MasterPalette() Palette {
	return p.masterPalette
}

// PaletteRAM returns the content of the 32 bytes palette RAM.
func (p *PPU) PaletteRAM() [0x20]byte {
	return p.palettes
}

// SubPalette returns the colors of one of the 8 working palettes (4 for the
// background, 4 for the sprites).
func (p *PPU) SubPalette(id uint8) [4]RGB {
	var colors [4]RGB
	for i := range colors {
		colors[i] = p.color(id&0x07, uint8(i))
	}
	return colors
}

func (p *PPU) color(palette, pixel uint8) RGB {
	idx := p.VRAM.PPURead(0x3F00 + uint16(palette)<<2 + uint16(pixel))
	return p.masterPalette[idx&0x3F]
}

const PatternTableSize = 128

// PatternTable renders one of the two 4KB pattern tables, as a grid of 16x16
// tiles, colored with the given working palette.
func (p *PPU) PatternTable(i int, palette uint8) []uint32 {
	pixels := make([]uint32, PatternTableSize*PatternTableSize)
	base := uint16(i&1) * 0x1000
	for tileY := range 16 {
		for tileX := range 16 {
			off := base + uint16(tileY*256+tileX*16)
			for row := range 8 {
				lo := p.VRAM.PPURead(off + uint16(row))
				hi := p.VRAM.PPURead(off + uint16(row) + 8)
				for col := range 8 {
					pix := hwio.GetBiti8(lo, uint(7-col)) | hwio.GetBiti8(hi, uint(7-col))<<1
					x := tileX*8 + col
					y := tileY*8 + row
					pixels[y*PatternTableSize+x] = p.color(palette, pix).Packed()
				}
			}
		}
	}
	return pixels
}

// OAM returns the object attribute memory.
func (p *PPU) OAM() [256]uint8 {
	return p.oam
}
