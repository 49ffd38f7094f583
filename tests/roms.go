// Package tests provides helpers shared by tests: in-memory iNES images and
// the download of public test suites.
package tests

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const (
	prgBankSize = 0x4000
	chrBankSize = 0x2000
)

// Image describes an iNES rom image.
type Image struct {
	Mapper     uint8
	Vertical   bool // vertical nametable mirroring
	FourScreen bool
	Battery    bool
	Trainer    []byte // 512 bytes if not nil
	PRG        [][]byte
	CHR        [][]byte
}

// NROM returns a mapper 0 image with prg PRG banks filled with NOPs and chr
// zeroed CHR banks. The reset vector points at $8000.
func NROM(prg, chr int) *Image {
	img := &Image{}
	for range prg {
		bank := bytes.Repeat([]byte{0xEA}, prgBankSize)
		img.PRG = append(img.PRG, bank)
	}
	for range chr {
		img.CHR = append(img.CHR, make([]byte, chrBankSize))
	}
	img.Poke(0xFFFC, 0x00, 0x80)
	return img
}

// Poke writes data into the PRG banks as seen by the CPU on an NROM board:
// $8000-$BFFF is the first bank, $C000-$FFFF the last one.
func (img *Image) Poke(addr uint16, data ...byte) {
	for _, b := range data {
		bank := 0
		if addr >= 0xC000 && len(img.PRG) > 1 {
			bank = len(img.PRG) - 1
		}
		img.PRG[bank][(addr-0x8000)%prgBankSize] = b
		addr++
	}
}

// Header returns the 16-byte iNES header.
func (img *Image) Header() []byte {
	hdr := []byte{'N', 'E', 'S', 0x1A, byte(len(img.PRG)), byte(len(img.CHR)), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	hdr[6] = img.Mapper << 4
	hdr[7] = img.Mapper & 0xF0
	if img.Vertical {
		hdr[6] |= 0x01
	}
	if img.Battery {
		hdr[6] |= 0x02
	}
	if img.Trainer != nil {
		hdr[6] |= 0x04
	}
	if img.FourScreen {
		hdr[6] |= 0x08
	}
	return hdr
}

// Bytes returns the whole image.
func (img *Image) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(img.Header())
	buf.Write(img.Trainer)
	for _, b := range img.PRG {
		buf.Write(b)
	}
	for _, b := range img.CHR {
		buf.Write(b)
	}
	return buf.Bytes()
}

// Reader returns a reader over the image bytes.
func (img *Image) Reader() io.Reader {
	return bytes.NewReader(img.Bytes())
}

// WriteFile writes the image to a temporary file and returns its path.
func (img *Image) WriteFile(tb testing.TB) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.nes")
	if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}
