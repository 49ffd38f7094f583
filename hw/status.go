package hw

// P is the processor status register.
type P uint8

const (
	Carry P = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		ibit := (uint8(p) & (1 << (7 - i))) >> (7 - i)
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) Carry() bool     { return p&Carry != 0 }
func (p P) Zero() bool      { return p&Zero != 0 }
func (p P) Interrupt() bool { return p&Interrupt != 0 }
func (p P) Decimal() bool   { return p&Decimal != 0 }
func (p P) Break() bool     { return p&Break != 0 }
func (p P) Overflow() bool  { return p&Overflow != 0 }
func (p P) Negative() bool  { return p&Negative != 0 }
func (p P) Has(flag P) bool { return p&flag == flag }

func (p *P) setFlags(flags P) {
	*p |= flags
}

func (p *P) clearFlags(flags P) {
	*p &^= flags
}

func (p *P) set(flags P, on bool) {
	if on {
		p.setFlags(flags)
	} else {
		p.clearFlags(flags)
	}
}

// checkNZ sets N and Z according to val.
func (p *P) checkNZ(val uint8) {
	p.set(Zero, val == 0)
	p.set(Negative, val&0x80 != 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.set(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.set(Overflow, v != 0)
}
