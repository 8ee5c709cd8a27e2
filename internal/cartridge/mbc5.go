package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// MBC5 has a full 9-bit ROM bank register split across two write
// windows and, unlike MBC1/MBC3, does not remap bank 0 to bank 1.
type MBC5 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBankLo  uint8 // 0x2000-0x2FFF
	romBankHi  uint8 // 0x3000-0x3FFF, bit 8 only
	ramBank    uint8 // 4 bits

	romBanks uint16
}

// NewMBC5 returns an MBC5 wrapping rom, with ramSize bytes of external RAM.
func NewMBC5(rom []byte, ramSize uint) *MBC5 {
	return &MBC5{rom: rom, ram: make([]byte, ramSize), romBanks: uint16(len(rom) / 0x4000)}
}

func (m *MBC5) romBank() uint16 {
	bank := uint16(m.romBankLo) | uint16(m.romBankHi)<<8
	if m.romBanks > 0 {
		bank %= m.romBanks
	}
	return bank
}

func (m *MBC5) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	case address < 0x8000:
		offset := uint32(m.romBank())*0x4000 + uint32(address-0x4000)
		if int(offset) < len(m.rom) {
			return m.rom[offset]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		offset := uint32(m.ramBank)*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		return m.ram[offset]
	}
	return 0xFF
}

func (m *MBC5) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		m.romBankLo = value
	case address < 0x4000:
		m.romBankHi = value & 0x01
	case address < 0x6000:
		m.ramBank = value & 0x0F
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := uint32(m.ramBank)*0x2000 + uint32(address-0xA000)
		if int(offset) >= len(m.ram) {
			offset %= uint32(len(m.ram))
		}
		m.ram[offset] = value
	}
}

func (m *MBC5) RAM() []byte         { return m.ram }
func (m *MBC5) LoadRAM(data []byte) { copy(m.ram, data) }

func (m *MBC5) Save(s *state.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBankLo)
	s.Write8(m.romBankHi)
	s.Write8(m.ramBank)
	s.Write32(uint32(len(m.ram)))
	s.WriteData(m.ram)
}

func (m *MBC5) Load(s *state.State) {
	m.ramEnabled = s.ReadBool()
	m.romBankLo = s.Read8()
	m.romBankHi = s.Read8()
	m.ramBank = s.Read8()
	n := s.Read32()
	m.ram = make([]byte, n)
	s.ReadData(m.ram)
}
