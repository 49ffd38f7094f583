package hw

import (
	"errors"
	"fmt"
	"io"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Packed returns the color as 0xRRGGBB.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func rgb(v uint32) RGB {
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Palette is the 64 colors master palette of the NES.
type Palette [64]RGB

var ErrPaletteTooSmall = errors.New("palette has less than 64 colors")

// LoadPalette reads a palette made of 64 RGB triples. Extra data (color
// emphasis variants) is ignored.
func LoadPalette(r io.Reader) (Palette, error) {
	var (
		pal Palette
		buf [len(pal) * 3]byte
	)
	n, err := io.ReadFull(r, buf[:])
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return pal, fmt.Errorf("%w: got %d", ErrPaletteTooSmall, n/3)
	case err != nil:
		return pal, fmt.Errorf("read palette: %w", err)
	}

	for i := range pal {
		pal[i] = RGB{R: buf[3*i], G: buf[3*i+1], B: buf[3*i+2]}
	}
	return pal, nil
}

// DefaultPalette is the FCEUX palette.
var DefaultPalette = func() Palette {
	colors := [64]uint32{
		0x747474, 0x24188c, 0x0000a8, 0x44009c, 0x8c0074, 0xa80010, 0xa40000, 0x7c0800,
		0x402c00, 0x004400, 0x005000, 0x003c14, 0x183c5c, 0x000000, 0x000000, 0x000000,
		0xbcbcbc, 0x0070ec, 0x2038ec, 0x8000f0, 0xbc00bc, 0xe40058, 0xd82800, 0xc84c0c,
		0x887000, 0x009400, 0x00a800, 0x009038, 0x008088, 0x000000, 0x000000, 0x000000,
		0xfcfcfc, 0x3cbcfc, 0x5c94fc, 0xcc88fc, 0xf478fc, 0xfc74b4, 0xfc7460, 0xfc9838,
		0xf0bc3c, 0x80d010, 0x4cdc48, 0x58f898, 0x00e8d8, 0x787878, 0x000000, 0x000000,
		0xfcfcfc, 0xa8e4fc, 0xc4d4fc, 0xd4c8fc, 0xfcc4fc, 0xfcc4d8, 0xfcbcb0, 0xfcd8a8,
		0xfce4a0, 0xe0fca0, 0xa8f0bc, 0xb0fccc, 0x9cfcf0, 0xc4c4c4, 0x000000, 0x000000,
	}

	var pal Palette
	for i, c := range colors {
		pal[i] = rgb(c)
	}
	return pal
}()
