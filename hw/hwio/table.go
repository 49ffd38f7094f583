package hwio

import (
	"fmt"

	"nescore/emu/log"
)

// log unmapped accesses (useful for debugging but verbose on NES since many
// games read from open bus)
const logUnmapped = false

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

// Peek16 is Read16 without side effects.
func Peek16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, true)
	hi := b.Read8(addr+1, true)
	return uint16(hi)<<8 | uint16(lo)
}

// A Range is a physical address range [Begin, End] translated to a device.
type Range struct {
	Name       string
	Begin, End uint16
	IO         BankIO8
}

func (r Range) contains(addr uint16) bool {
	return addr >= r.Begin && addr <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%s[$%04X-$%04X]", r.Name, r.Begin, r.End)
}

// Table is an ordered list of address translations. Lookups consider the
// ranges in the order they've been mapped and the first one containing the
// address wins.
type Table struct {
	Name string

	ranges []Range
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Reset() {
	t.ranges = nil
}

// Map translates [begin, end] to io.
func (t *Table) Map(name string, begin, end uint16, io BankIO8) {
	if end < begin {
		panic(fmt.Sprintf("hwio: invalid range $%04X-$%04X for %s", begin, end, name))
	}
	log.ModBus.DebugZ("mapping range").
		String("bus", t.Name).
		String("area", name).
		Hex16("begin", begin).
		Hex16("end", end).
		End()

	t.ranges = append(t.ranges, Range{Name: name, Begin: begin, End: end, IO: io})
}

// MapMem maps mem at addr, over mem.VSize bytes (defaults to the physical
// size).
func (t *Table) MapMem(addr uint16, mem *Mem) {
	if len(mem.Data)&(len(mem.Data)-1) != 0 {
		panic("memory buffer size is not pow2")
	}
	size := mem.VSize
	if size == 0 {
		size = len(mem.Data)
	}
	t.Map(mem.Name, addr, uint16(int(addr)+size-1), mem)
}

// MapDevice maps dev at addr, over dev.VSize bytes (defaults to dev.Size).
func (t *Table) MapDevice(addr uint16, dev *Device) {
	size := dev.VSize
	if size == 0 {
		size = dev.Size
	}
	t.Map(dev.Name, addr, uint16(int(addr)+size-1), dev)
}

// Unmap removes all ranges entirely contained in [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	kept := t.ranges[:0]
	for _, r := range t.ranges {
		if r.Begin >= begin && r.End <= end {
			continue
		}
		kept = append(kept, r)
	}
	t.ranges = kept
}

// Ranges returns a copy of the current translations, in lookup order.
func (t *Table) Ranges() []Range {
	return append([]Range(nil), t.ranges...)
}

// Lookup returns the device mapped at addr.
func (t *Table) Lookup(addr uint16) (BankIO8, bool) {
	for i := range t.ranges {
		if t.ranges[i].contains(addr) {
			return t.ranges[i].IO, true
		}
	}
	return nil, false
}

// Read8 searches in the table for the device mapped at the given address and
// forward the read to it. Unmapped addresses read as 0.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io, ok := t.Lookup(addr)
	if !ok {
		if logUnmapped && !peek {
			log.ModBus.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	return io.Read8(addr, peek)
}

// Peek8 is a convenience function.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

// Write8 forwards the write to the device mapped at addr. Writes to unmapped
// addresses are discarded.
func (t *Table) Write8(addr uint16, val uint8) {
	io, ok := t.Lookup(addr)
	if !ok {
		if logUnmapped {
			log.ModBus.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	io.Write8(addr, val)
}
