package hwio

import "nescore/emu/log"

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
	MemFlagNoROLog                          // skip logging attempts to write when configured to readonly
)

// Mem is a linear memory area that can be mapped into a Table. The physical
// buffer size must be a power of 2: accesses are masked to it, so mapping it
// over a larger virtual size mirrors it.
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	VSize int      // virtual size of the memory (can be bigger than physical size)
	Flags MemFlags // flags determining how the memory can be accessed
}

func (m *Mem) Read8(addr uint16, _ bool) uint8 {
	return m.Data[int(addr)&(len(m.Data)-1)]
}

func (m *Mem) Write8(addr uint16, val uint8) {
	switch {
	case m.Flags&MemFlag8ReadOnly == 0:
		m.Data[int(addr)&(len(m.Data)-1)] = val
	case m.Flags&MemFlagNoROLog != 0:
	default:
		log.ModBus.ErrorZ("Write8 to readonly memory").
			String("name", m.Name).
			Hex8("val", val).
			Hex16("addr", addr).
			End()
	}
}
