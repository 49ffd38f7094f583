// Package ines implements a reader for roms in the iNES file format, used
// for the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"nescore/emu/log"
)

const (
	Magic       = "NES\x1a"
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 16 * 1024
	CHRBankSize = 8 * 1024
)

type Rom struct {
	Header
	Trainer []byte   // Trainer, 512 bytes if present, or empty.
	PRG     [][]byte // PRG ROM banks, 16KB each.
	CHR     [][]byte // CHR ROM banks, 8KB each.
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rom: %w", err)
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom. Sections are read sequentially, in
// fixed-size banks. A short read of any section is an error.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	read := func(section string, size int) ([]byte, error) {
		buf := make([]byte, size)
		nn, err := io.ReadFull(r, buf)
		n += int64(nn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("incomplete %s section: %w", section, err)
		}
		return buf, nil
	}

	buf, err := read("header", HeaderSize)
	if err != nil {
		return n, err
	}
	rom.Header.decode(buf)

	if rom.HasTrainer() {
		if rom.Trainer, err = read("trainer", TrainerSize); err != nil {
			return n, err
		}
	}

	rom.PRG = make([][]byte, rom.PRGBanks())
	for i := range rom.PRG {
		if rom.PRG[i], err = read("PRG", PRGBankSize); err != nil {
			return n, err
		}
	}

	rom.CHR = make([][]byte, rom.CHRBanks())
	for i := range rom.CHR {
		if rom.CHR[i], err = read("CHR", CHRBankSize); err != nil {
			return n, err
		}
	}

	return n, nil
}

// PrintInfos writes a human readable summary of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "format:\t%s\n", rom.Format())
	fmt.Fprintf(tw, "mapper:\t%d\n", rom.Mapper())
	fmt.Fprintf(tw, "mirroring:\t%s\n", rom.Mirroring())
	fmt.Fprintf(tw, "PRG:\t%d x 16KB\n", len(rom.PRG))
	fmt.Fprintf(tw, "CHR:\t%d x 8KB\n", len(rom.CHR))
	fmt.Fprintf(tw, "trainer:\t%t\n", rom.HasTrainer())
	fmt.Fprintf(tw, "persistent:\t%t\n", rom.HasPersistent())
	return tw.Flush()
}

// Header is the 16-byte iNES header.
type Header struct {
	raw [HeaderSize]byte
}

func (hdr *Header) decode(p []byte) {
	copy(hdr.raw[:], p)
	if string(hdr.raw[:4]) != Magic {
		log.ModCart.WarnZ("invalid iNES magic number").
			Blob("magic", hdr.raw[:4]).
			End()
	}
}

// Raw returns the header bytes as read.
func (hdr *Header) Raw() [HeaderSize]byte {
	return hdr.raw
}

func (hdr *Header) PRGBanks() int { return int(hdr.raw[4]) }
func (hdr *Header) CHRBanks() int { return int(hdr.raw[5]) }

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *Header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed memory.
func (hdr *Header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// HasFourScreen indicates the cartridge provides its own extra nametables.
func (hdr *Header) HasFourScreen() bool {
	return hdr.raw[6]&0x08 != 0
}

// Mapper returns the mapper number, built from both flags nibbles.
func (hdr *Header) Mapper() uint8 {
	return hdr.raw[7]&0xF0 | hdr.raw[6]>>4
}

// Mirroring returns the nametable arrangement.
func (hdr *Header) Mirroring() Mirroring {
	switch {
	case hdr.HasFourScreen():
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return Vertical
	}
	return Horizontal
}

// IsNES20 reports whether the header uses the NES 2.0 extension. Extended
// fields are not decoded.
func (hdr *Header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

func (hdr *Header) Format() string {
	if hdr.IsNES20() {
		return "NES 2.0"
	}
	return "iNES"
}

// Mirroring is the nametable mirroring arrangement.
type Mirroring uint8

const (
	FourScreen Mirroring = iota
	Vertical
	Horizontal
)

func (m Mirroring) String() string {
	switch m {
	case FourScreen:
		return "four-screen"
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	}
	return fmt.Sprintf("Mirroring(%d)", m)
}
