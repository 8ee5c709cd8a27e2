// Package cartridge owns the ROM image, parses the cartridge header, and
// dispatches reads/writes of the ROM and external-RAM regions to the
// appropriate memory bank controller.
package cartridge

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// Type is the cartridge-type byte at 0x0147, used to select the MBC.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC2              Type = 0x05
	MBC2BATT          Type = 0x06
	ROMRAM            Type = 0x08
	ROMRAMBATT        Type = 0x09
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
)

// HasBattery reports whether this cartridge type persists external RAM.
func (t Type) HasBattery() bool {
	switch t {
	case MBC1RAMBATT, MBC2BATT, ROMRAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT,
		MBC3RAMBATT, MBC5RAMBATT, MBC5RUMBLERAMBATT:
		return true
	}
	return false
}

// HasRTC reports whether this cartridge type carries a real-time clock.
func (t Type) HasRTC() bool {
	return t == MBC3TIMERBATT || t == MBC3TIMERRAMBATT
}

// known reports whether t is a cartridge-type byte this core recognizes.
func (t Type) known() bool {
	switch t {
	case ROM, MBC1, MBC1RAM, MBC1RAMBATT, MBC2, MBC2BATT, ROMRAM, ROMRAMBATT,
		MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3, MBC3RAM, MBC3RAMBATT,
		MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return true
	}
	return false
}

// ramBankCounts maps the RAM-size code at 0x0149 to a bank count.
var ramBankCounts = [6]uint{0, 1, 1, 4, 16, 8}

// Header is the parsed contents of the cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string
	CartridgeType  Type
	ROMBankCount   uint
	RAMBankCount   uint
	HeaderChecksum uint8
}

// ErrInvalidCartridge is the sentinel wrapped by every header validation
// failure returned from ParseHeader.
var ErrInvalidCartridge = fmt.Errorf("cartridge: invalid cartridge")

// ParseHeader validates and parses the header embedded in rom. All
// detected problems (undersized image, checksum mismatch, unrecognized
// MBC type) are aggregated into a single returned error rather than
// stopping at the first one, so a host gets the full diagnostic at once.
func ParseHeader(rom []byte) (Header, error) {
	var errs *multierror.Error
	var h Header

	if len(rom) < 0x8000 {
		errs = multierror.Append(errs, fmt.Errorf("%w: rom is %d bytes, need at least 32768", ErrInvalidCartridge, len(rom)))
		return h, errs.ErrorOrNil()
	}

	h.Title = parseTitle(rom[0x134:0x144])
	h.CartridgeType = Type(rom[0x147])
	h.ROMBankCount = 2 << rom[0x148]

	ramCode := rom[0x149]
	if int(ramCode) < len(ramBankCounts) {
		h.RAMBankCount = ramBankCounts[ramCode]
	} else {
		errs = multierror.Append(errs, fmt.Errorf("%w: unrecognized ram size code 0x%02X", ErrInvalidCartridge, ramCode))
	}

	h.HeaderChecksum = rom[0x14D]

	var sum uint8
	for i := 0x134; i <= 0x14C; i++ {
		sum = sum - rom[i] - 1
	}
	if sum != h.HeaderChecksum {
		errs = multierror.Append(errs, fmt.Errorf("%w: header checksum mismatch: computed 0x%02X, stored 0x%02X", ErrInvalidCartridge, sum, h.HeaderChecksum))
	}

	if !h.CartridgeType.known() {
		errs = multierror.Append(errs, fmt.Errorf("%w: unrecognized cartridge type byte 0x%02X", ErrInvalidCartridge, rom[0x147]))
	}

	return h, errs.ErrorOrNil()
}

func parseTitle(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}
