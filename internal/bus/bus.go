// Package bus implements the Game Boy's memory-mapped bus: address-range
// decoding, work/high RAM, OAM DMA, and I/O register dispatch to the
// cartridge, PPU, APU, timer and joypad. The MMU is unaware of any
// component's internals beyond the small interfaces declared here.
package bus

import (
	"github.com/a-box31/Gameboy/internal/interrupts"
	"github.com/a-box31/Gameboy/internal/state"
	"github.com/a-box31/Gameboy/pkg/log"
)

const (
	wramSize = 0x2000
	hramSize = 0x7F
)

// Cartridge is the subset of cartridge.Cartridge the bus depends on.
type Cartridge interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// VideoUnit is the subset of ppu.PPU the bus dispatches VRAM/OAM/register
// accesses to.
type VideoUnit interface {
	ReadVRAM(address uint16) uint8
	WriteVRAM(address uint16, value uint8)
	ReadOAM(address uint16) uint8
	WriteOAM(address uint16, value uint8)
	DMAWriteOAM(index int, value uint8)
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// SoundUnit is the subset of apu.APU the bus dispatches sound-register
// accesses to.
type SoundUnit interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// TimerUnit is the subset of timer.Controller the bus dispatches the
// DIV/TIMA/TMA/TAC registers to.
type TimerUnit interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// JoypadUnit is the subset of joypad.State the bus dispatches the P1
// register to.
type JoypadUnit interface {
	Read() uint8
	Write(value uint8)
}

// Bus owns work RAM, high RAM and the raw I/O register backing store, and
// routes every other address to its owning component.
type Bus struct {
	cart Cartridge
	ppu  VideoUnit
	apu  SoundUnit
	tmr  TimerUnit
	pad  JoypadUnit
	irq  *interrupts.Service

	wram [wramSize]byte
	hram [hramSize]byte
	// io backs any 0xFF00-0xFF7F register this bus does not special-case,
	// so unused/undocumented registers remain readable/writable.
	io [0x80]byte

	log log.Logger
}

// New wires a bus to its component dependencies. cart, ppu, apu, tmr and
// pad must all be non-nil; every address range they own is dispatched to
// them unconditionally.
func New(cart Cartridge, ppu VideoUnit, apu SoundUnit, tmr TimerUnit, pad JoypadUnit, irq *interrupts.Service, logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNull()
	}
	return &Bus{cart: cart, ppu: ppu, apu: apu, tmr: tmr, pad: pad, irq: irq, log: logger}
}

// Reset clears work RAM, high RAM and the raw I/O file. The cartridge,
// PPU, APU, timer, joypad and interrupt service are reset independently
// by their owners.
func (b *Bus) Reset() {
	b.wram = [wramSize]byte{}
	b.hram = [hramSize]byte{}
	b.io = [0x80]byte{}
}

// Read services a CPU memory read.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		return b.cart.Read(address)
	case address <= 0x9FFF:
		return b.ppu.ReadVRAM(address)
	case address <= 0xBFFF:
		return b.cart.Read(address)
	case address <= 0xDFFF:
		return b.wram[address-0xC000]
	case address <= 0xFDFF:
		return b.wram[(address-0xE000)&0x1FFF]
	case address <= 0xFE9F:
		return b.ppu.ReadOAM(address)
	case address <= 0xFEFF:
		return 0xFF
	case address == 0xFF00:
		return b.pad.Read()
	case address == interrupts.FlagRegister:
		return b.irq.Read(address)
	case address >= 0xFF10 && address <= 0xFF3F:
		return b.apu.ReadRegister(address)
	case address >= 0xFF04 && address <= 0xFF07:
		return b.tmr.Read(address)
	case address == 0xFF46:
		return b.io[address-0xFF00]
	case address >= 0xFF40 && address <= 0xFF4B:
		return b.ppu.ReadRegister(address)
	case address <= 0xFF7F:
		return b.io[address-0xFF00]
	case address <= 0xFFFE:
		return b.hram[address-0xFF80]
	case address == interrupts.EnableRegister:
		return b.irq.Read(address)
	}
	return 0xFF
}

// Write services a CPU memory write.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		b.cart.Write(address, value)
	case address <= 0x9FFF:
		b.ppu.WriteVRAM(address, value)
	case address <= 0xBFFF:
		b.cart.Write(address, value)
	case address <= 0xDFFF:
		b.wram[address-0xC000] = value
	case address <= 0xFDFF:
		b.wram[(address-0xE000)&0x1FFF] = value
	case address <= 0xFE9F:
		b.ppu.WriteOAM(address, value)
	case address <= 0xFEFF:
		// unusable region, writes ignored
	case address == 0xFF00:
		b.pad.Write(value)
	case address >= 0xFF04 && address <= 0xFF07:
		b.tmr.Write(address, value)
	case address == interrupts.FlagRegister:
		b.irq.Write(address, value)
	case address >= 0xFF10 && address <= 0xFF3F:
		b.apu.WriteRegister(address, value)
	case address == 0xFF46:
		b.runDMA(value)
	case address >= 0xFF40 && address <= 0xFF4B:
		b.ppu.WriteRegister(address, value)
	case address == 0xFF50:
		// boot ROM disable: no-op, this core skips the boot ROM
	case address <= 0xFF7F:
		b.io[address-0xFF00] = value
	case address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	case address == interrupts.EnableRegister:
		b.irq.Write(address, value)
	}
}

// runDMA copies 160 bytes from (src<<8) into the sprite attribute table,
// modeled as instantaneous per spec.md's timing model.
func (b *Bus) runDMA(src uint8) {
	b.io[0xFF46-0xFF00] = src
	base := uint16(src) << 8
	for i := 0; i < 0xA0; i++ {
		b.ppu.DMAWriteOAM(i, b.Read(base+uint16(i)))
	}
}

func (b *Bus) Save(s *state.State) {
	s.WriteData(b.wram[:])
	s.WriteData(b.hram[:])
	s.WriteData(b.io[:])
}

func (b *Bus) Load(s *state.State) {
	s.ReadData(b.wram[:])
	s.ReadData(b.hram[:])
	s.ReadData(b.io[:])
}
