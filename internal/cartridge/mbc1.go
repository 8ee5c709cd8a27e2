package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// MBC1 implements the most common banking scheme: a 5-bit primary ROM
// bank register (never zero — writing zero remaps to 1), a 2-bit
// secondary register that is either the upper ROM bank bits or the RAM
// bank number depending on mode, and a mode-select bit.
//
// Grounded on spec.md §4.2 and the teacher's internal/cartridge/mbc1.go
// register layout (ramg/bank1/bank2/mode), reimplemented with direct
// index-into-slice reads (see other_examples ernesto27 mbc.go) instead of
// the teacher's bus-memcpy banking, since this core doesn't map cartridge
// memory directly onto the bus's backing array.
type MBC1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	bank1      uint8 // 5 bits, never 0
	bank2      uint8 // 2 bits
	mode       bool  // false = ROM banking mode, true = RAM banking mode

	romBanks uint8 // total 16KiB ROM banks, used for wraparound
}

// NewMBC1 returns an MBC1 wrapping rom, with ramSize bytes of external RAM.
func NewMBC1(rom []byte, ramSize uint) *MBC1 {
	return &MBC1{
		rom:      rom,
		ram:      make([]byte, ramSize),
		bank1:    1,
		romBanks: uint8(len(rom) / 0x4000),
	}
}

func (m *MBC1) romBank() uint8 {
	bank := m.bank1 | (m.bank2 << 5)
	if m.romBanks > 0 {
		bank %= m.romBanks
	}
	return bank
}

func (m *MBC1) lowBank() uint8 {
	if !m.mode {
		return 0
	}
	return (m.bank2 << 5) % maxU8(m.romBanks, 1)
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func (m *MBC1) ramBank() uint8 {
	if !m.mode {
		return 0
	}
	return m.bank2
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		offset := uint32(m.lowBank())*0x4000 + uint32(address)
		return m.readROM(offset)
	case address < 0x8000:
		offset := uint32(m.romBank())*0x4000 + uint32(address-0x4000)
		return m.readROM(offset)
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := uint32(m.ramBank())*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		return m.ram[offset]
	}
	return 0xFF
}

func (m *MBC1) readROM(offset uint32) uint8 {
	if int(offset) < len(m.rom) {
		return m.rom[offset]
	}
	return 0xFF
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x1F
		if value == 0 {
			value = 1
		}
		m.bank1 = value
	case address < 0x6000:
		m.bank2 = value & 0x03
	case address < 0x8000:
		m.mode = value&0x01 == 1
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := uint32(m.ramBank())*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		m.ram[offset] = value
	}
}

func (m *MBC1) RAM() []byte         { return m.ram }
func (m *MBC1) LoadRAM(data []byte) { copy(m.ram, data) }

func (m *MBC1) Save(s *state.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
	s.Write32(uint32(len(m.ram)))
	s.WriteData(m.ram)
}

func (m *MBC1) Load(s *state.State) {
	m.ramEnabled = s.ReadBool()
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.ReadBool()
	n := s.Read32()
	m.ram = make([]byte, n)
	s.ReadData(m.ram)
}
