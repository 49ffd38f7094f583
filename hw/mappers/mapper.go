// Package mappers implements the cartridge boards, translating CPU and PPU
// addresses to the cartridge ROM and RAM banks.
package mappers

import (
	"errors"
	"fmt"

	"nescore/emu/log"
)

var modMapper = log.NewModule("mapper")

const (
	PRGBankSize = 0x4000
	CHRBankSize = 0x2000
)

var ErrUnsupportedMapper = errors.New("unsupported mapper")

// A Mapper translates cartridge-relative addresses. Each method reports
// whether the address was claimed; when it's not, the caller falls through
// to its next translation.
type Mapper interface {
	CPURead(addr uint16) (val uint8, hit bool)
	CPUWrite(addr uint16, val uint8) (hit bool)
	PPURead(addr uint16) (val uint8, hit bool)
	PPUWrite(addr uint16, val uint8) (hit bool)
}

type Desc struct {
	Name string
	New  func(prg, chr [][]byte) Mapper
}

var All = map[uint8]Desc{
	0: NROMDesc,
}

// New creates the mapper with the given id, over the given PRG and CHR banks.
func New(id uint8, prg, chr [][]byte) (Mapper, error) {
	desc, ok := All[id]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedMapper, id)
	}
	if len(prg) == 0 {
		return nil, fmt.Errorf("mapper %s: no PRG bank", desc.Name)
	}

	modMapper.DebugZ("new mapper").
		String("name", desc.Name).
		Int("prg", len(prg)).
		Int("chr", len(chr)).
		End()
	return desc.New(prg, chr), nil
}
