package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// Bus connects the CPU, the PPU and the cartridge.
//
// CPU memory map:
//
//	$0000-$07FF	2KB internal RAM
//	$0800-$1FFF	Mirrors of $0000-$07FF
//	$2000-$2007	PPU registers
//	$2008-$3FFF	Mirrors of $2000-$2007
//	$4000-$5FFF	APU and I/O registers (not emulated)
//	$6000-$FFFF	Cartridge space
type Bus struct {
	CPU *CPU
	PPU *PPU

	// Table holds the CPU-side translations not claimed by the cartridge.
	Table *hwio.Table

	ram  hwio.Mem
	cart *Cartridge
}

// NewBus creates the CPU and PPU, connected by a new Bus.
func NewBus(pal Palette) *Bus {
	b := &Bus{
		Table: hwio.NewTable("cpu"),
		ram: hwio.Mem{
			Name:  "RAM",
			Data:  make([]byte, 0x800),
			VSize: 0x2000,
		},
	}

	b.PPU = NewPPU(pal)
	b.PPU.VRAM = b
	b.CPU = NewCPU(b)
	b.CPU.PPU = b.PPU

	b.Table.MapMem(0x0000, &b.ram)
	b.Table.MapDevice(0x2000, &hwio.Device{
		Name:  "PPU registers",
		Size:  8,
		VSize: 0x2000,
		ReadCb: func(addr uint16) uint8 {
			return b.PPU.ReadRegister(uint8(addr), false)
		},
		PeekCb: func(addr uint16) uint8 {
			return b.PPU.ReadRegister(uint8(addr), true)
		},
		WriteCb: func(addr uint16, val uint8) {
			b.PPU.WriteRegister(uint8(addr), val)
		},
	})
	return b
}

// Read8 reads from the CPU address space. If peek is true, the read has no
// side effects.
func (b *Bus) Read8(addr uint16, peek bool) uint8 {
	if b.cart != nil {
		if val, ok := b.cart.CPURead(addr); ok {
			return val
		}
	}
	return b.Table.Read8(addr, peek)
}

// Write8 writes to the CPU address space.
func (b *Bus) Write8(addr uint16, val uint8) {
	if b.cart != nil && b.cart.CPUWrite(addr, val) {
		return
	}
	b.Table.Write8(addr, val)
}

// Peek8 reads from the CPU address space without side effects.
func (b *Bus) Peek8(addr uint16) uint8 {
	return b.Read8(addr, true)
}

// PPURead reads from the PPU address space.
func (b *Bus) PPURead(addr uint16) uint8 {
	addr &= 0x3FFF
	if b.cart != nil {
		if val, ok := b.cart.PPURead(addr); ok {
			return val
		}
	}
	return b.PPU.Bus.Read8(addr, false)
}

// PPUWrite writes to the PPU address space.
func (b *Bus) PPUWrite(addr uint16, val uint8) {
	addr &= 0x3FFF
	if b.cart != nil && b.cart.PPUWrite(addr, val) {
		return
	}
	b.PPU.Bus.Write8(addr, val)
}

// InsertCartridge plugs c, replacing the current cartridge if any. The PPU
// nametables are remapped according to the cartridge mirroring.
func (b *Bus) InsertCartridge(c *Cartridge) {
	b.RemoveCartridge()
	b.cart = c
	b.PPU.SetMirroring(c.Mirroring())
	log.ModBus.InfoZ("cartridge inserted").Uint("mapper", uint(c.Mapper())).End()
}

// RemoveCartridge unplugs the current cartridge, if any.
func (b *Bus) RemoveCartridge() {
	if b.cart == nil {
		return
	}
	b.cart = nil
	log.ModBus.InfoZ("cartridge removed").End()
}

// Cartridge returns the current cartridge, or nil.
func (b *Bus) Cartridge() *Cartridge {
	return b.cart
}

// RAM returns the internal RAM. It must not be modified.
func (b *Bus) RAM() []byte {
	return b.ram.Data
}
