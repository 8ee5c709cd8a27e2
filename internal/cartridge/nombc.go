package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// NoMBC is the plain ROM-only cartridge: no banking, at most a single
// fixed RAM region, writes to ROM are ignored.
type NoMBC struct {
	rom []byte
	ram []byte
}

// NewNoMBC returns a NoMBC wrapping rom, with ramSize bytes of external
// RAM (zero for cartridges without any).
func NewNoMBC(rom []byte, ramSize uint) *NoMBC {
	return &NoMBC{rom: rom, ram: make([]byte, ramSize)}
}

func (m *NoMBC) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	case address >= 0xA000 && address < 0xC000:
		if len(m.ram) == 0 {
			return 0xFF
		}
		idx := int(address-0xA000) % len(m.ram)
		return m.ram[idx]
	}
	return 0xFF
}

func (m *NoMBC) Write(address uint16, value uint8) {
	if address >= 0xA000 && address < 0xC000 && len(m.ram) > 0 {
		m.ram[int(address-0xA000)%len(m.ram)] = value
	}
	// writes to the ROM range are silently ignored: there is no banking
	// control to interpret them as.
}

func (m *NoMBC) RAM() []byte          { return m.ram }
func (m *NoMBC) LoadRAM(data []byte)  { copy(m.ram, data) }

func (m *NoMBC) Save(s *state.State) {
	s.Write32(uint32(len(m.ram)))
	s.WriteData(m.ram)
}

func (m *NoMBC) Load(s *state.State) {
	n := s.Read32()
	m.ram = make([]byte, n)
	s.ReadData(m.ram)
}
