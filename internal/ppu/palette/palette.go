// Package palette maps the Game Boy's 2-bit colour indices to the four
// canonical DMG shades used when writing framebuffer pixels.
package palette

// Palette is a set of four RGBA shades, indexed by a 2-bit colour index.
type Palette struct {
	Colors [4][4]uint8 // R, G, B, A
}

// Greyscale is the default DMG shade set used when a host has not selected
// a different one.
var Greyscale = Palette{
	Colors: [4][4]uint8{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xCC, 0xCC, 0xCC, 0xFF},
		{0x77, 0x77, 0x77, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	},
}

// Green approximates the original Game Boy's LCD tint.
var Green = Palette{
	Colors: [4][4]uint8{
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0x8B, 0xAC, 0x0F, 0xFF},
		{0x30, 0x62, 0x30, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
	},
}

// Apply looks up the RGBA shade for a 2-bit colour index (0-3).
func (p Palette) Apply(index uint8) [4]uint8 {
	return p.Colors[index&0x03]
}

// Decode splits a DMG palette byte (BGP/OBP0/OBP1) into the four 2-bit
// colour-index mappings it encodes, one per source colour index 0-3.
func Decode(register uint8) [4]uint8 {
	return [4]uint8{
		register & 0x03,
		(register >> 2) & 0x03,
		(register >> 4) & 0x03,
		(register >> 6) & 0x03,
	}
}
