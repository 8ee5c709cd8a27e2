package cartridge

import (
	"fmt"

	"github.com/a-box31/Gameboy/internal/state"
	"github.com/a-box31/Gameboy/pkg/log"
)

// ErrUnsupportedFeature is returned (or just logged, depending on Quirks)
// when a cartridge declares an MBC extension this core does not fully
// emulate (e.g. rumble motors).
var ErrUnsupportedFeature = fmt.Errorf("cartridge: unsupported feature")

// Quirks controls host-configurable policy for ambiguous or optional
// behavior, distinct from the cartridge's own header data.
type Quirks struct {
	// AdvanceRTC, when true, makes an MBC3 real-time clock tick forward
	// during Advance calls instead of being stubbed as static.
	AdvanceRTC bool
	// StrictUnsupportedFeature, when true, turns a recognized-but-partial
	// feature (e.g. rumble) into a load error rather than a warning.
	StrictUnsupportedFeature bool
}

// Cartridge owns the ROM image, parsed header and the constructed MBC
// for the loaded game.
type Cartridge struct {
	Header Header
	mbc    MBC
	log    log.Logger
}

// Load validates rom's header and constructs the appropriate MBC. If the
// header declares a feature this core only partially emulates (rumble),
// it is surfaced as ErrUnsupportedFeature when quirks.StrictUnsupportedFeature
// is set, and merely logged otherwise.
func Load(rom []byte, quirks Quirks, logger log.Logger) (*Cartridge, error) {
	if logger == nil {
		logger = log.NewNull()
	}
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	if isRumble(header.CartridgeType) {
		if quirks.StrictUnsupportedFeature {
			return nil, fmt.Errorf("%w: cartridge type 0x%02X declares a rumble motor", ErrUnsupportedFeature, header.CartridgeType)
		}
		logger.Errorf("cartridge declares a rumble motor (type 0x%02X); motor is not emulated, continuing", header.CartridgeType)
	}

	mbc, err := newMBC(rom, header, quirks)
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded cartridge %q (type 0x%02X, %d ROM banks, %d bytes RAM)",
		header.Title, header.CartridgeType, header.ROMBankCount, len(mbc.RAM()))

	return &Cartridge{Header: header, mbc: mbc, log: logger}, nil
}

func isRumble(t Type) bool {
	return t == MBC5RUMBLE || t == MBC5RUMBLERAM || t == MBC5RUMBLERAMBATT
}

func newMBC(rom []byte, header Header, quirks Quirks) (MBC, error) {
	ramSize := header.RAMBankCount * 8192
	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		return NewNoMBC(rom, ramSize), nil
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return NewMBC1(rom, ramSize), nil
	case MBC2, MBC2BATT:
		return NewMBC2(rom), nil
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		return NewMBC3(rom, ramSize, quirks.AdvanceRTC), nil
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return NewMBC5(rom, ramSize), nil
	}
	return nil, fmt.Errorf("%w: no MBC implementation for cartridge type 0x%02X", ErrInvalidCartridge, header.CartridgeType)
}

// Read dispatches a ROM or external-RAM read to the MBC.
func (c *Cartridge) Read(address uint16) uint8 {
	return c.mbc.Read(address)
}

// Write dispatches a ROM-range banking write or external-RAM write to the MBC.
func (c *Cartridge) Write(address uint16, value uint8) {
	c.mbc.Write(address, value)
}

// HasBattery reports whether this cartridge persists external RAM.
func (c *Cartridge) HasBattery() bool {
	return c.Header.CartridgeType.HasBattery()
}

// BatterySnapshot returns a copy of the external RAM contents, valid only
// when HasBattery() is true.
func (c *Cartridge) BatterySnapshot() []byte {
	ram := c.mbc.RAM()
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

// RestoreBattery loads previously-saved external RAM contents.
func (c *Cartridge) RestoreBattery(data []byte) {
	c.mbc.LoadRAM(data)
}

// AdvanceRTC advances the MBC3 real-time clock, if present, by cycles CPU
// clock cycles. It is a no-op for every other MBC variant.
func (c *Cartridge) AdvanceRTC(cycles uint32) {
	if m3, ok := c.mbc.(*MBC3); ok {
		m3.AdvanceRTC(cycles)
	}
}

func (c *Cartridge) Save(s *state.State) {
	c.mbc.Save(s)
}

func (c *Cartridge) Load(s *state.State) {
	c.mbc.Load(s)
}
