package hwio

// Device is a BankIO8 implementation that allows manual management of an
// entire range of memory. Callbacks receive the address masked to Size, which
// must be a power of 2, so a device mapped over a larger virtual size is
// mirrored.
type Device struct {
	Name  string // name of the memory area (for debugging)
	Size  int    // size of the memory area
	VSize int    // virtual size, defaults to Size

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) offset(addr uint16) uint16 {
	return addr & uint16(d.Size-1)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if peek {
		if d.PeekCb != nil {
			return d.PeekCb(d.offset(addr))
		}
		return 0
	}

	if d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(d.offset(addr))
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb == nil {
		return
	}
	d.WriteCb(d.offset(addr), val)
}
