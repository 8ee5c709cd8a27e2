package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// MBC2 has a built-in 512x4-bit RAM array and chooses between RAM-enable
// and ROM-bank-select writes in 0x0000-0x3FFF by bit 8 of the address,
// per spec.md §4.2.
type MBC2 struct {
	rom []byte
	ram [512]byte // only the low nibble of each byte is meaningful

	ramEnabled bool
	romBank    uint8 // 4 bits, never 0

	romBanks uint8
}

// NewMBC2 returns an MBC2 wrapping rom.
func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBank: 1, romBanks: uint8(len(rom) / 0x4000)}
}

func (m *MBC2) Read(address uint16) uint8 {
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
		return m.ram[address&0x1FF] | 0xF0
	}
	return 0xFF
}

func (m *MBC2) Write(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		if address&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case address >= 0xA000 && address < 0xC000:
		if m.ramEnabled {
			m.ram[address&0x1FF] = value & 0x0F
		}
	}
}

func (m *MBC2) RAM() []byte {
	return m.ram[:]
}

func (m *MBC2) LoadRAM(data []byte) {
	copy(m.ram[:], data)
}

func (m *MBC2) Save(s *state.State) {
	s.WriteBool(m.ramEnabled)
	s.Write8(m.romBank)
	s.WriteData(m.ram[:])
}

func (m *MBC2) Load(s *state.State) {
	m.ramEnabled = s.ReadBool()
	m.romBank = s.Read8()
	s.ReadData(m.ram[:])
}
