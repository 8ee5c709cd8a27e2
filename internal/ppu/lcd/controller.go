package lcd

import "github.com/a-box31/Gameboy/pkg/bits"

// Controller is the LCD control register (LCDC, 0xFF40).
//
//	Bit 7 - LCD/PPU enable
//	Bit 6 - Window tile map select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 5 - Window enable
//	Bit 4 - BG/window tile data select (0=8800-97FF signed, 1=8000-8FFF)
//	Bit 3 - BG tile map select (0=9800-9BFF, 1=9C00-9FFF)
//	Bit 2 - OBJ size (0=8x8, 1=8x16)
//	Bit 1 - OBJ enable
//	Bit 0 - BG/window enable/priority
type Controller struct {
	Enabled                  bool
	WindowTileMapAddress     uint16
	WindowEnabled            bool
	TileDataAddress          uint16
	BackgroundTileMapAddress uint16
	SpriteHeight             uint8
	SpriteEnabled            bool
	BackgroundEnabled        bool
}

// NewController returns the LCDC power-on state (display on, all the
// classic tile-map/tile-data bases at their 0 positions).
func NewController() *Controller {
	return &Controller{
		Enabled:                  true,
		WindowTileMapAddress:     0x9800,
		BackgroundTileMapAddress: 0x9800,
		TileDataAddress:          0x8800,
		SpriteHeight:             8,
		SpriteEnabled:            true,
		WindowEnabled:            true,
		BackgroundEnabled:        true,
	}
}

func (c *Controller) Write(value uint8) {
	c.Enabled = bits.Test(value, 7)
	if bits.Test(value, 6) {
		c.WindowTileMapAddress = 0x9C00
	} else {
		c.WindowTileMapAddress = 0x9800
	}
	c.WindowEnabled = bits.Test(value, 5)
	if bits.Test(value, 4) {
		c.TileDataAddress = 0x8000
	} else {
		c.TileDataAddress = 0x8800
	}
	if bits.Test(value, 3) {
		c.BackgroundTileMapAddress = 0x9C00
	} else {
		c.BackgroundTileMapAddress = 0x9800
	}
	c.SpriteHeight = 8 + uint8(bits.Val(value, 2))*8
	c.SpriteEnabled = bits.Test(value, 1)
	c.BackgroundEnabled = bits.Test(value, 0)
}

func (c *Controller) Read() uint8 {
	var v uint8
	if c.Enabled {
		v |= 1 << 7
	}
	if c.WindowTileMapAddress == 0x9C00 {
		v |= 1 << 6
	}
	if c.WindowEnabled {
		v |= 1 << 5
	}
	if c.TileDataAddress == 0x8000 {
		v |= 1 << 4
	}
	if c.BackgroundTileMapAddress == 0x9C00 {
		v |= 1 << 3
	}
	if c.SpriteHeight == 16 {
		v |= 1 << 2
	}
	if c.SpriteEnabled {
		v |= 1 << 1
	}
	if c.BackgroundEnabled {
		v |= 1 << 0
	}
	return v
}

// UsesSignedTileData reports whether tile index 0 sits at 0x9000 (signed
// addressing) rather than 0x8000.
func (c *Controller) UsesSignedTileData() bool {
	return c.TileDataAddress == 0x8800
}
