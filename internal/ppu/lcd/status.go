package lcd

// Status is the LCD status register (STAT, 0xFF41).
//
//	Bit 6 - LYC=LY coincidence interrupt enable
//	Bit 5 - Mode 2 (OAM scan) interrupt enable
//	Bit 4 - Mode 1 (V-blank) interrupt enable
//	Bit 3 - Mode 0 (H-blank) interrupt enable
//	Bit 2 - Coincidence flag, read-only (1 when LYC=LY)
//	Bit 1-0 - Mode flag, read-only
type Status struct {
	CoincidenceInterrupt bool
	OAMInterrupt         bool
	VBlankInterrupt      bool
	HBlankInterrupt      bool
	Coincidence          bool
	Mode                 Mode
}

func NewStatus() *Status {
	return &Status{Mode: OAMScan}
}

// Write accepts the writable bits (6-3); bits 2-0 are read-only and
// unaffected by a CPU write.
func (s *Status) Write(value uint8) {
	s.CoincidenceInterrupt = value&0x40 != 0
	s.OAMInterrupt = value&0x20 != 0
	s.VBlankInterrupt = value&0x10 != 0
	s.HBlankInterrupt = value&0x08 != 0
}

func (s *Status) Read() uint8 {
	var v uint8 = 0x80
	if s.CoincidenceInterrupt {
		v |= 0x40
	}
	if s.OAMInterrupt {
		v |= 0x20
	}
	if s.VBlankInterrupt {
		v |= 0x10
	}
	if s.HBlankInterrupt {
		v |= 0x08
	}
	if s.Coincidence {
		v |= 0x04
	}
	v |= uint8(s.Mode) & 0x03
	return v
}

// InterruptLine reports whether any of the STAT interrupt sources
// currently enabled is asserted; the caller is responsible for requesting
// the interrupt only on the rising edge of this OR'd line.
func (s *Status) InterruptLine() bool {
	return (s.Mode == HBlank && s.HBlankInterrupt) ||
		(s.Mode == VBlank && s.VBlankInterrupt) ||
		(s.Mode == OAMScan && s.OAMInterrupt) ||
		(s.Coincidence && s.CoincidenceInterrupt)
}
