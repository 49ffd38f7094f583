// Package snapshot defines a diagnostic dump of the console state. It's a
// deep copy handed to the presentation side, it can't be restored.
package snapshot

const Version = 1

type NES struct {
	Version int
	CPU     CPU
	RAM     [0x800]uint8
	PPU     PPU
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles     int64
	IllegalOps uint64
}

type PPU struct {
	Scanline   int
	Cycle      int
	FrameCount uint64

	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8

	VRAMAddr   uint16
	VRAMTemp   uint16
	Finex      uint8
	WriteLatch bool

	Palette       [0x20]uint8 // palette RAM
	MasterPalette [64]uint32  // 0xRRGGBB

	// Frame is the last 256x240 frame, 0xRRGGBB pixels.
	Frame []uint32

	// PatternTables are the two 128x128 pattern tables, colored with the
	// working palette PatternPalette.
	PatternTables  [2][]uint32
	PatternPalette uint8
}
