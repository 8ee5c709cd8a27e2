package cartridge

import "testing"

// newBankedROM returns a ROM of romBanks 16KiB banks, each filled with
// its own bank index so a read can be traced back to the bank it came
// from.
func newBankedROM(romBanks int) []byte {
	rom := make([]byte, romBanks*0x4000)
	for bank := 0; bank < romBanks; bank++ {
		for i := 0; i < 0x4000; i++ {
			rom[bank*0x4000+i] = uint8(bank)
		}
	}
	return rom
}

// TestMBC1Banking exercises spec scenario 4: on a 128KiB (8-bank) ROM,
// selecting bank 5 via the 0x2000 register makes reads at 0x4000-0x7FFF
// come from bank 5, and writing 0 remaps to bank 1.
func TestMBC1Banking(t *testing.T) {
	rom := newBankedROM(8)
	m := NewMBC1(rom, 0)

	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 5 {
		t.Fatalf("bank 5 selected: Read(0x4000) = %d, want 5", got)
	}
	if got := m.Read(0x7FFF); got != 5 {
		t.Fatalf("bank 5 selected: Read(0x7FFF) = %d, want 5", got)
	}

	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 1 {
		t.Fatalf("bank 0 remapped to 1: Read(0x4000) = %d, want 1", got)
	}
}

func TestMBC1LowBankFixedUnlessRAMMode(t *testing.T) {
	rom := newBankedROM(8)
	m := NewMBC1(rom, 0)

	m.Write(0x2000, 0x05)
	if got := m.Read(0x0000); got != 0 {
		t.Fatalf("bank 0 region should stay fixed at bank 0 in ROM mode, got %d", got)
	}
}

func TestMBC1RAMEnableGatesAccess(t *testing.T) {
	rom := newBankedROM(2)
	m := NewMBC1(rom, 0x2000)

	m.Write(0xA000, 0x55) // write while disabled: ignored
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read = 0x%02X, want 0xFF", got)
	}

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("enabled RAM read = 0x%02X, want 0x55", got)
	}
}

func TestMBC1SaveLoadRoundTrip(t *testing.T) {
	rom := newBankedROM(8)
	m := NewMBC1(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x42)
	m.Write(0x2000, 0x03)

	st := newCartState()
	m.Save(st)

	loaded := NewMBC1(rom, 0)
	loaded.Load(readCartState(st))

	if got := loaded.Read(0xA000); got != 0x42 {
		t.Fatalf("restored RAM byte = 0x%02X, want 0x42", got)
	}
	if got := loaded.Read(0x4000); got != 3 {
		t.Fatalf("restored bank selection: Read(0x4000) = %d, want 3", got)
	}
}
