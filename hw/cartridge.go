package hw

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/mappers"
	"nescore/ines"
)

// A Cartridge is a rom plugged into a mapper board.
type Cartridge struct {
	rom    *ines.Rom
	mapper mappers.Mapper
}

// NewCartridge reads an iNES rom from r and creates its mapper.
func NewCartridge(r io.Reader) (*Cartridge, error) {
	rom := new(ines.Rom)
	if _, err := rom.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}
	return newCartridge(rom)
}

// LoadCartridge reads the iNES rom at path and creates its mapper.
func LoadCartridge(path string) (*Cartridge, error) {
	rom, err := ines.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}
	return newCartridge(rom)
}

func newCartridge(rom *ines.Rom) (*Cartridge, error) {
	m, err := mappers.New(rom.Mapper(), rom.PRG, rom.CHR)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}

	c := &Cartridge{rom: rom, mapper: m}
	for _, gap := range c.Unsupported() {
		log.ModCart.WarnZ("unsupported cartridge feature").String("feature", gap).End()
	}
	log.ModCart.InfoZ("cartridge loaded").
		Uint("mapper", uint(rom.Mapper())).
		Int("prg", len(rom.PRG)).
		Int("chr", len(rom.CHR)).
		Stringer("mirroring", rom.Mirroring()).
		End()
	return c, nil
}

// Unsupported lists the features of the rom that are not emulated.
func (c *Cartridge) Unsupported() []string {
	var gaps []string
	if len(c.rom.CHR) == 0 {
		gaps = append(gaps, "CHR RAM")
	}
	if c.rom.HasPersistent() {
		gaps = append(gaps, "battery-backed PRG RAM")
	}
	if c.rom.HasTrainer() {
		gaps = append(gaps, "trainer")
	}
	return gaps
}

func (c *Cartridge) Header() ines.Header          { return c.rom.Header }
func (c *Cartridge) Mapper() uint8                { return c.rom.Mapper() }
func (c *Cartridge) Mirroring() ines.Mirroring    { return c.rom.Mirroring() }
func (c *Cartridge) PrintInfos(w io.Writer) error { return c.rom.PrintInfos(w) }

func (c *Cartridge) CPURead(addr uint16) (uint8, bool) {
	return c.mapper.CPURead(addr)
}

func (c *Cartridge) CPUWrite(addr uint16, val uint8) bool {
	return c.mapper.CPUWrite(addr, val)
}

func (c *Cartridge) PPURead(addr uint16) (uint8, bool) {
	return c.mapper.PPURead(addr)
}

func (c *Cartridge) PPUWrite(addr uint16, val uint8) bool {
	return c.mapper.PPUWrite(addr, val)
}
