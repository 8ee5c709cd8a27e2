package gameboy

import (
	"testing"

	"github.com/a-box31/Gameboy/internal/cartridge"
	"github.com/a-box31/Gameboy/internal/config"
	"github.com/a-box31/Gameboy/internal/interrupts"
)

// newTestROM returns a minimal valid ROM image: a correct header for the
// given cartridge type and RAM-size code, whose code at 0x0100 is an
// infinite JP loop so the CPU never runs off the end of a blank ROM.
func newTestROM(romBanks int, cartType cartridge.Type, ramCode uint8) []byte {
	size := romBanks * 0x4000
	if size < 0x8000 {
		size = 0x8000
	}
	rom := make([]byte, size)

	// JP 0x0100 at the entry point: an infinite loop.
	rom[0x100] = 0xC3
	rom[0x101] = 0x00
	rom[0x102] = 0x01

	rom[0x147] = uint8(cartType)
	shift := uint8(0)
	for banks := 2; banks < romBanks; banks *= 2 {
		shift++
	}
	rom[0x148] = shift
	rom[0x149] = ramCode

	var sum uint8
	for i := 0x134; i <= 0x14C; i++ {
		sum = sum - rom[i] - 1
	}
	rom[0x14D] = sum
	return rom
}

func newTestSystem(t *testing.T, rom []byte) *System {
	t.Helper()
	sys := New(config.Default(), nil)
	if err := sys.LoadCartridge(rom); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	return sys
}

// TestFrameCadence exercises spec scenario 6: ten calls to RunFrame
// consume 702,240 total cycles and latch the V-Blank interrupt flag each
// time.
func TestFrameCadence(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.ROM, 0))

	var total uint16
	vblanks := 0
	for i := 0; i < 10; i++ {
		sys.irq.Clear(interrupts.VBlankFlag)
		total += sys.RunFrame()
		if sys.irq.Flag&(1<<interrupts.VBlankFlag) != 0 {
			vblanks++
		}
	}

	if total != 10*CyclesPerFrame {
		t.Fatalf("total cycles = %d, want %d", total, 10*CyclesPerFrame)
	}
	if vblanks != 10 {
		t.Fatalf("observed %d V-Blank IF latches, want 10", vblanks)
	}
}

func TestEchoRAMAliasesWorkRAM(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.ROM, 0))

	sys.mmu.Write(0xC005, 0x42)
	if got := sys.mmu.Read(0xE005); got != 0x42 {
		t.Fatalf("echo read = 0x%02X, want 0x42", got)
	}

	sys.mmu.Write(0xE010, 0x99)
	if got := sys.mmu.Read(0xC010); got != 0x99 {
		t.Fatalf("work RAM read after echo write = 0x%02X, want 0x99", got)
	}
}

// TestLYCCoincidence advances the PPU to a known scanline and checks that
// the STAT coincidence bit tracks LY==LYC exactly.
func TestLYCCoincidence(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.ROM, 0))

	const lineCycles = 456
	for i := 0; i < 5; i++ {
		sys.vid.Advance(lineCycles)
	}
	if ly := sys.vid.ReadRegister(0xFF44); ly != 5 {
		t.Fatalf("LY = %d, want 5 after 5 scanlines", ly)
	}

	sys.vid.WriteRegister(0xFF45, 5) // LYC = 5, matches LY
	if stat := sys.vid.ReadRegister(0xFF41); stat&0x04 == 0 {
		t.Fatalf("STAT = 0x%02X, expected coincidence bit set for LY==LYC==5", stat)
	}

	sys.vid.WriteRegister(0xFF45, 6) // LYC = 6, no longer matches
	if stat := sys.vid.ReadRegister(0xFF41); stat&0x04 != 0 {
		t.Fatalf("STAT = 0x%02X, expected coincidence bit clear for LY=5, LYC=6", stat)
	}
}

func TestBatteryRoundTrip(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.MBC1RAMBATT, 2)) // 1 bank, 8KiB RAM

	sys.mmu.Write(0x0000, 0x0A) // enable external RAM
	sys.mmu.Write(0xA123, 0x7E)

	snapshot := sys.BatterySnapshot()
	if snapshot == nil {
		t.Fatal("expected a non-nil battery snapshot for a battery-backed cartridge")
	}

	fresh := newTestSystem(t, newTestROM(2, cartridge.MBC1RAMBATT, 2))
	fresh.RestoreBattery(snapshot)
	fresh.mmu.Write(0x0000, 0x0A)
	if got := fresh.mmu.Read(0xA123); got != 0x7E {
		t.Fatalf("restored RAM byte = 0x%02X, want 0x7E", got)
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.ROM, 0))

	sys.mmu.Write(0xC000, 0xAB)
	sys.RunFrame()

	raw, err := sys.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	sys.mmu.Write(0xC000, 0x00)
	if err := sys.LoadState(raw); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got := sys.mmu.Read(0xC000); got != 0xAB {
		t.Fatalf("restored WRAM byte = 0x%02X, want 0xAB", got)
	}
}

func TestSaveStateRejectsMismatchedCartridge(t *testing.T) {
	sys := newTestSystem(t, newTestROM(2, cartridge.ROM, 0))
	raw, err := sys.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	otherROM := newTestROM(2, cartridge.ROM, 0)
	copy(otherROM[0x134:0x144], "DIFFERENT")
	var sum uint8
	for i := 0x134; i <= 0x14C; i++ {
		sum = sum - otherROM[i] - 1
	}
	otherROM[0x14D] = sum

	other := newTestSystem(t, otherROM)
	if err := other.LoadState(raw); err == nil {
		t.Fatal("expected LoadState to reject a save state from a different cartridge")
	}
}
