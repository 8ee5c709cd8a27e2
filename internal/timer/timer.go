// Package timer implements the Game Boy's DIV/TIMA/TMA/TAC timer,
// clocked by accumulated CPU cycles rather than a naive modulus check
// (spec.md §9 calls out that `totalCycles % N == 0` silently drops
// events when N does not divide the instruction cost).
package timer

import (
	"github.com/a-box31/Gameboy/internal/interrupts"
	"github.com/a-box31/Gameboy/internal/state"
)

const (
	DIV  uint16 = 0xFF04
	TIMA uint16 = 0xFF05
	TMA  uint16 = 0xFF06
	TAC  uint16 = 0xFF07
)

// divPeriod is the number of CPU cycles per DIV increment (16384 Hz at
// the DMG's 4.194304 MHz clock).
const divPeriod = 256

// timaPeriods maps TAC's clock-select bits to the number of CPU cycles
// per TIMA increment: {4096, 262144, 65536, 16384} Hz.
var timaPeriods = [4]uint16{1024, 16, 64, 256}

// Controller emulates DIV/TIMA/TMA/TAC and requests the timer interrupt
// on TIMA overflow.
type Controller struct {
	div  uint16 // internal 16-bit divider; DIV register is its high byte
	tima uint8
	tma  uint8
	tac  uint8

	divResidual  uint32 // cycles accumulated since the last DIV tick
	timaResidual uint32 // cycles accumulated since the last TIMA tick

	irq *interrupts.Service
}

// New returns a timer wired to request interrupts through irq.
func New(irq *interrupts.Service) *Controller {
	return &Controller{irq: irq}
}

// Reset returns the timer to its post-boot state.
func (c *Controller) Reset() {
	c.div, c.tima, c.tma, c.tac = 0, 0, 0, 0
	c.divResidual, c.timaResidual = 0, 0
}

// Read returns the value of one of the four timer registers.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case DIV:
		return uint8(c.div >> 8)
	case TIMA:
		return c.tima
	case TMA:
		return c.tma
	case TAC:
		return c.tac | 0xF8
	}
	return 0xFF
}

// Write stores a value to one of the four timer registers. A write to DIV
// always resets the divider; this also resets the TIMA accumulation
// window so a subsequent overflow isn't miscounted against stale residual
// cycles.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case DIV:
		c.div = 0
		c.divResidual = 0
		c.timaResidual = 0
	case TIMA:
		c.tima = value
	case TMA:
		c.tma = value
	case TAC:
		c.tac = value & 0x07
	}
}

// Advance consumes cycles CPU clock ticks, incrementing DIV and, when
// enabled, TIMA; TIMA overflow reloads from TMA and requests the timer
// interrupt. Residual cycles are carried across calls so that no tick is
// ever lost to truncation.
func (c *Controller) Advance(cycles uint16) {
	c.divResidual += uint32(cycles)
	divTicks := c.divResidual / divPeriod
	c.divResidual %= divPeriod
	c.div += uint16(divTicks) * divPeriod

	if c.tac&0x04 == 0 {
		return
	}
	period := uint32(timaPeriods[c.tac&0x03])
	c.timaResidual += uint32(cycles)
	for c.timaResidual >= period {
		c.timaResidual -= period
		c.step()
	}
}

func (c *Controller) step() {
	if c.tima == 0xFF {
		c.tima = c.tma
		c.irq.Request(interrupts.TimerFlag)
	} else {
		c.tima++
	}
}

func (c *Controller) Save(s *state.State) {
	s.Write16(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
	s.Write32(c.divResidual)
	s.Write32(c.timaResidual)
}

func (c *Controller) Load(s *state.State) {
	c.div = s.Read16()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
	c.divResidual = s.Read32()
	c.timaResidual = s.Read32()
}
