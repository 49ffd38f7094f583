package snapshot

import (
	"io"

	"github.com/go-faster/jx"
)

// EncodeJSON encodes the snapshot as a JSON object. Memory areas and pixel
// buffers are base64 encoded, pixels as packed RGB triples.
func (s *NES) EncodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
		e.Field("cpu", s.CPU.encodeJSON)
		e.Field("ram", func(e *jx.Encoder) { e.Base64(s.RAM[:]) })
		e.Field("ppu", s.PPU.encodeJSON)
	})
}

func (c *CPU) encodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(c.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(c.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(c.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(c.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(c.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(c.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(c.Cycles) })
		e.Field("illegal_ops", func(e *jx.Encoder) { e.UInt64(c.IllegalOps) })
	})
}

func (p *PPU) encodeJSON(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("scanline", func(e *jx.Encoder) { e.Int(p.Scanline) })
		e.Field("cycle", func(e *jx.Encoder) { e.Int(p.Cycle) })
		e.Field("frame_count", func(e *jx.Encoder) { e.UInt64(p.FrameCount) })
		e.Field("ctrl", func(e *jx.Encoder) { e.UInt8(p.PPUCTRL) })
		e.Field("mask", func(e *jx.Encoder) { e.UInt8(p.PPUMASK) })
		e.Field("status", func(e *jx.Encoder) { e.UInt8(p.PPUSTATUS) })
		e.Field("v", func(e *jx.Encoder) { e.UInt16(p.VRAMAddr) })
		e.Field("t", func(e *jx.Encoder) { e.UInt16(p.VRAMTemp) })
		e.Field("finex", func(e *jx.Encoder) { e.UInt8(p.Finex) })
		e.Field("w", func(e *jx.Encoder) { e.Bool(p.WriteLatch) })
		e.Field("palette", func(e *jx.Encoder) { e.Base64(p.Palette[:]) })
		e.Field("master_palette", func(e *jx.Encoder) { e.Base64(packRGB(p.MasterPalette[:])) })
		e.Field("frame", func(e *jx.Encoder) { e.Base64(packRGB(p.Frame)) })
		e.Field("pattern_palette", func(e *jx.Encoder) { e.UInt8(p.PatternPalette) })
		e.Field("pattern_tables", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, pt := range p.PatternTables {
					e.Base64(packRGB(pt))
				}
			})
		})
	})
}

// packRGB converts 0xRRGGBB pixels into a byte slice of RGB triples.
func packRGB(pixels []uint32) []byte {
	buf := make([]byte, 0, 3*len(pixels))
	for _, px := range pixels {
		buf = append(buf, uint8(px>>16), uint8(px>>8), uint8(px))
	}
	return buf
}

// WriteJSON writes the JSON encoded snapshot to w.
func (s *NES) WriteJSON(w io.Writer) error {
	var e jx.Encoder
	s.EncodeJSON(&e)
	_, err := w.Write(e.Bytes())
	return err
}
