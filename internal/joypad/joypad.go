// Package joypad emulates the Game Boy's P1 joypad register and the
// logical button state behind it.
package joypad

import (
	"github.com/a-box31/Gameboy/internal/state"
	"github.com/a-box31/Gameboy/pkg/bits"
)

// Button identifies a physical button by its bit in the internal state
// byte (distinct from the P1 register's own column-multiplexed layout).
type Button = uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

// Register is the address of the P1 joypad register.
const Register uint16 = 0xFF00

// State holds the P1 register (column select, written by the CPU) and the
// logical pressed/released state of all eight buttons.
type State struct {
	p1        uint8 // only bits 4-5 are meaningful (column select)
	pressed   uint8 // bitmask of currently-pressed buttons
	requested bool  // latched by an interrupt-requesting press; cleared only by Reset or Load
}

// New returns a joypad with no buttons pressed and both columns deselected.
func New() *State {
	return &State{p1: 0x30}
}

// Reset returns the joypad to its post-boot state.
func (s *State) Reset() {
	s.p1 = 0x30
	s.pressed = 0
	s.requested = false
}

// Read returns the current value of the P1 register: the column select
// bits the CPU wrote, OR'd with the unselected lines pulled high and the
// selected column's buttons pulled low where pressed.
func (s *State) Read() uint8 {
	low := uint8(0x0F)
	if !bits.Test(s.p1, 4) { // direction keys selected (active low)
		low &^= (s.pressed >> 4) & 0x0F
	}
	if !bits.Test(s.p1, 5) { // action keys selected (active low)
		low &^= s.pressed & 0x0F
	}
	return s.p1&0x30 | 0xC0 | low
}

// Write stores the column-select bits; the low nibble is read-only from
// the CPU's perspective (it reflects button state, not storage).
func (s *State) Write(value uint8) {
	s.p1 = (s.p1 & 0xCF) | (value & 0x30)
}

// SetButton updates the logical state of a button. It returns true if this
// is a fresh release-to-press edge on a currently selected column, which
// the caller should turn into a joypad interrupt request.
func (s *State) SetButton(button Button, pressed bool) bool {
	wasPressed := s.pressed&button != 0
	if pressed {
		s.pressed |= button
	} else {
		s.pressed &^= button
	}

	if pressed && !wasPressed {
		actionSelected := !bits.Test(s.p1, 5)
		directionSelected := !bits.Test(s.p1, 4)
		isAction := button <= ButtonStart
		if (isAction && actionSelected) || (!isAction && directionSelected) {
			s.requested = true
			return true
		}
	}
	return false
}

// ButtonsState returns the bitmask of currently pressed buttons.
func (s *State) ButtonsState() uint8 {
	return s.pressed
}

// Advance is a no-op hook kept for symmetry with the other devices that
// consume a cycle count each frame; the joypad has no cycle-driven state.
func (s *State) Advance(cycles uint16) {}

func (s *State) Save(st *state.State) {
	st.Write8(s.p1)
	st.Write8(s.pressed)
	st.WriteBool(s.requested)
}

func (s *State) Load(st *state.State) {
	s.p1 = st.Read8()
	s.pressed = st.Read8()
	s.requested = st.ReadBool()
}
