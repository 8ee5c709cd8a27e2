package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// MBC3 adds a real-time clock alongside classic ROM/RAM banking. The
// RAM-bank-select register doubles as an RTC-register-select when its
// value is 0x08-0x0C; a 0-then-1 write to the latch register snapshots
// the live clock for the CPU to read.
type MBC3 struct {
	rom []byte
	ram []byte
	rtc rtc

	ramEnabled bool
	romBank    uint8 // 7 bits, never 0
	ramOrRTC   uint8 // 0-3 selects RAM bank, 0x08-0x0C selects an RTC register

	latchPending bool // saw a 0x00 write, waiting for the 0x01 that latches

	romBanks uint8
}

// NewMBC3 returns an MBC3 wrapping rom, with ramSize bytes of external RAM.
// advanceRTC controls whether the clock ticks forward on Advance calls, or
// is stubbed as a non-advancing clock (still fully readable/writable via
// the latch path) per spec.md §4.2.
func NewMBC3(rom []byte, ramSize uint, advanceRTC bool) *MBC3 {
	m := &MBC3{
		rom:      rom,
		ram:      make([]byte, ramSize),
		romBank:  1,
		romBanks: uint8(len(rom) / 0x4000),
	}
	m.rtc.running = advanceRTC
	return m
}

// AdvanceRTC ticks the real-time clock by cycles CPU clock cycles.
func (m *MBC3) AdvanceRTC(cycles uint32) {
	m.rtc.Advance(cycles)
}

func (m *MBC3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	case address < 0x8000:
		bank := m.romBank
		if m.romBanks > 0 {
			bank %= m.romBanks
		}
		offset := uint32(bank)*0x4000 + uint32(address-0x4000)
		if int(offset) < len(m.rom) {
			return m.rom[offset]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramOrRTC >= 0x08 {
			return m.rtc.readLatched(m.ramOrRTC)
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		offset := uint32(m.ramOrRTC)*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		return m.ram[offset]
	}
	return 0xFF
}

func (m *MBC3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x7F
		if value == 0 {
			value = 1
		}
		m.romBank = value
	case address < 0x6000:
		m.ramOrRTC = value
	case address < 0x8000:
		if value == 0x00 {
			m.latchPending = true
		} else if value == 0x01 && m.latchPending {
			m.rtc.Latch()
			m.latchPending = false
		} else {
			m.latchPending = false
		}
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled {
			return
		}
		if m.ramOrRTC >= 0x08 {
			m.rtc.write(m.ramOrRTC, value)
			return
		}
		if len(m.ram) == 0 {
			return
		}
		offset := uint32(m.ramOrRTC)*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		m.ram[offset] = value
	}
}

func (m *MBC3) RAM() []byte         { return m.ram }
func (m *MBC3) LoadRAM(data []byte) { copy(m.ram, data) }

func (m *MBC3) Save(s *state.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
	s.Write8(m.ramOrRTC)
	s.WriteBool(m.latchPending)
	s.Write32(uint32(len(m.ram)))
	s.WriteData(m.ram)
	m.rtc.save(s)
}

func (m *MBC3) Load(s *state.State) {
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
	m.ramOrRTC = s.Read8()
	m.latchPending = s.ReadBool()
	n := s.Read32()
	m.ram = make([]byte, n)
	s.ReadData(m.ram)
	m.rtc.load(s)
}
