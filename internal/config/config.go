// Package config holds host-configurable quirk toggles that are distinct
// from per-ROM header data: documented behavioral choices the spec leaves
// to the implementation (RTC stubbing, strict VRAM-access enforcement,
// unsupported-MBC-feature policy). Grounded on spec.md §3's "the core MAY
// either enforce this or leave it permissive" and §4.2's RTC stub
// allowance, both phrased as implementation choices a host should be able
// to toggle without a recompile.
package config

import (
	"os"

	"github.com/a-box31/Gameboy/internal/cartridge"
	"gopkg.in/yaml.v3"
)

// Quirks mirrors cartridge.Quirks, plus the PPU-side strictness toggle
// that isn't a cartridge concern.
type Quirks struct {
	// StrictVRAMAccess enforces that CPU writes to VRAM/OAM during PPU
	// modes 2 and 3 are ignored, matching real hardware. Defaults to true
	// ("enforcement is preferred for correctness tests" per spec.md §3).
	StrictVRAMAccess bool `yaml:"strict_vram_access"`
	// AdvanceRTC makes an MBC3 real-time clock tick forward instead of
	// staying static.
	AdvanceRTC bool `yaml:"advance_rtc"`
	// StrictUnsupportedFeature turns a recognized-but-partially-emulated
	// cartridge feature (e.g. rumble) into a load error instead of a
	// logged warning.
	StrictUnsupportedFeature bool `yaml:"strict_unsupported_feature"`
}

// Default returns the recommended quirk configuration.
func Default() Quirks {
	return Quirks{StrictVRAMAccess: true}
}

// CartridgeQuirks projects the cartridge-relevant subset of Quirks.
func (q Quirks) CartridgeQuirks() cartridge.Quirks {
	return cartridge.Quirks{
		AdvanceRTC:               q.AdvanceRTC,
		StrictUnsupportedFeature: q.StrictUnsupportedFeature,
	}
}

// Load reads a YAML quirk configuration from path, falling back to
// Default() for any field not present in the file.
func Load(path string) (Quirks, error) {
	q := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Quirks{}, err
	}
	if err := yaml.Unmarshal(raw, &q); err != nil {
		return Quirks{}, err
	}
	return q, nil
}
