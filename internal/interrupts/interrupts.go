// Package interrupts provides the Game Boy's interrupt-enable and
// interrupt-flag registers along with the fixed vector table, shared by
// the CPU (dispatch), timer, PPU and joypad (request).
package interrupts

import "github.com/a-box31/Gameboy/internal/state"

// Address is the entry vector of a pending interrupt.
type Address = uint16

const (
	VBlank Address = 0x0040
	LCD    Address = 0x0048
	Timer  Address = 0x0050
	Serial Address = 0x0058
	Joypad Address = 0x0060
)

// Flag identifies one of the five interrupt sources by bit index.
type Flag = uint8

const (
	VBlankFlag Flag = 0
	LCDFlag    Flag = 1
	TimerFlag  Flag = 2
	SerialFlag Flag = 3
	JoypadFlag Flag = 4
)

// vectors is indexed by Flag and gives dispatch priority, lowest index first.
var vectors = [5]Address{VBlank, LCD, Timer, Serial, Joypad}

const (
	// FlagRegister is the I/O address of IF (0xFF0F).
	FlagRegister uint16 = 0xFF0F
	// EnableRegister is the address of IE (0xFFFF).
	EnableRegister uint16 = 0xFFFF
)

// Service holds the IE/IF registers and the interrupt-master-enable flag.
type Service struct {
	Flag   uint8
	Enable uint8
	IME    bool
}

// NewService returns a freshly reset interrupt service.
func NewService() *Service {
	return &Service{}
}

// Reset returns the service to its post-boot state.
func (s *Service) Reset() {
	s.Flag = 0
	s.Enable = 0
	s.IME = false
}

// Request raises the given interrupt flag.
func (s *Service) Request(flag Flag) {
	s.Flag |= 1 << flag
}

// Clear lowers the given interrupt flag.
func (s *Service) Clear(flag Flag) {
	s.Flag &^= 1 << flag
}

// Read returns the value of IF or IE; bits 5-7 of both registers are
// unused and always read back as 1.
func (s *Service) Read(address uint16) uint8 {
	switch address {
	case FlagRegister:
		return s.Flag&0x1F | 0xE0
	case EnableRegister:
		return s.Enable&0x1F | 0xE0
	}
	return 0xFF
}

// Write stores a value to IF or IE; only bits 0-4 are meaningful.
func (s *Service) Write(address uint16, value uint8) {
	switch address {
	case FlagRegister:
		s.Flag = value & 0x1F
	case EnableRegister:
		s.Enable = value & 0x1F
	}
}

// Pending returns the bits that are both requested and enabled, masked to
// the five valid interrupt sources.
func (s *Service) Pending() uint8 {
	return s.Enable & s.Flag & 0x1F
}

// HasPending reports whether any interrupt is both requested and enabled.
func (s *Service) HasPending() bool {
	return s.Pending() != 0
}

// NextVector returns the vector and flag of the highest-priority pending
// interrupt. It must only be called when HasPending() is true.
func (s *Service) NextVector() (Address, Flag) {
	pending := s.Pending()
	for flag := Flag(0); flag < 5; flag++ {
		if pending&(1<<flag) != 0 {
			return vectors[flag], flag
		}
	}
	// unreachable if HasPending() was checked first
	return VBlank, VBlankFlag
}

func (s *Service) Save(st *state.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
}

func (s *Service) Load(st *state.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
	s.IME = st.ReadBool()
}
