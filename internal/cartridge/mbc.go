package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// MBC is the interface every memory bank controller variant implements.
// A tagged-union-by-interface approach per spec.md §9: a small trait
// covering read/write/RAM access/state-persistence, implemented once per
// variant (NoMBC, MBC1, MBC2, MBC3, MBC5).
type MBC interface {
	// Read returns a byte from ROM (0x0000-0x7FFF) or external RAM
	// (0xA000-0xBFFF), as banked by the variant's current state.
	Read(address uint16) uint8
	// Write interprets a write to the ROM range as a banking control
	// write, and a write to the external-RAM range as a RAM write
	// (ignored when RAM is disabled or absent).
	Write(address uint16, value uint8)
	// RAM returns the external RAM backing store, for battery snapshot.
	RAM() []byte
	// LoadRAM replaces the external RAM contents (battery restore).
	LoadRAM(data []byte)

	state.Stater
}
