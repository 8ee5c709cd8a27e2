// Package cpu implements the Sharp LR35902 instruction set: fetch/decode/
// execute, interrupt dispatch, and the HALT bug. Timing is instruction
// granular: Step returns the number of cycles the instruction consumed and
// the caller advances every other subsystem by that count, rather than
// ticking peripherals inline on every memory access.
package cpu

import (
	"fmt"

	"github.com/a-box31/Gameboy/internal/interrupts"
	"github.com/a-box31/Gameboy/internal/state"
)

// Bus is the subset of bus.Bus the CPU depends on.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

const interruptDispatchCycles = 20

// CPU is the Sharp LR35902 core.
type CPU struct {
	Registers
	PC, SP uint16

	halt           bool
	haltBugPending bool
	stopped        bool
	pendingIME     bool

	// Fault latches a fatal condition (an illegal opcode). Once set, Step
	// is a no-op; the host must reset to clear it.
	Fault error

	bus Bus
	irq *interrupts.Service
}

// New returns a CPU wired to the given bus and interrupt service, in its
// post-boot-ROM state.
func New(bus Bus, irq *interrupts.Service) *CPU {
	c := &CPU{bus: bus, irq: irq}
	c.Reset()
	return c
}

// Reset returns the CPU to its post-boot-ROM register state, as if the
// DMG boot ROM had just handed off control at 0x0100.
func (c *CPU) Reset() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.halt = false
	c.haltBugPending = false
	c.stopped = false
	c.Fault = nil
}

func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.bus.Write(c.SP, uint8(v>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.bus.Read(c.SP)
	c.SP++
	hi := c.bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one instruction, or services a pending interrupt,
// and returns the number of cycles consumed. Once Fault is set by an
// illegal opcode, Step returns 0 immediately without touching state.
func (c *CPU) Step() uint16 {
	if c.Fault != nil {
		return 0
	}

	if cycles, serviced := c.serviceInterrupt(); serviced {
		return cycles
	}

	if c.halt {
		if c.irq.HasPending() {
			c.halt = false
		} else {
			return 4
		}
	}

	applyEI := c.pendingIME
	c.pendingIME = false

	var cycles uint16
	if c.haltBugPending {
		c.haltBugPending = false
		opcode := c.bus.Read(c.PC)
		cycles = c.execute(opcode)
	} else {
		opcode := c.fetch8()
		cycles = c.execute(opcode)
	}

	// EI's effect is delayed until after the instruction that follows it,
	// so an interrupt can never fire immediately after EI itself.
	if applyEI {
		c.irq.IME = true
	}
	return cycles
}

// serviceInterrupt dispatches the highest-priority pending interrupt when
// IME is set, consuming two wait states, a PUSH PC and a jump (20 cycles
// total). It also wakes the CPU from HALT regardless of IME, since a
// pending interrupt ends HALT even when it won't be serviced.
func (c *CPU) serviceInterrupt() (uint16, bool) {
	if !c.irq.HasPending() {
		return 0, false
	}
	if c.halt && !c.irq.IME {
		c.halt = false
	}
	if !c.irq.IME {
		return 0, false
	}

	vector, flag := c.irq.NextVector()
	c.irq.IME = false
	c.irq.Clear(flag)
	c.halt = false
	c.push16(c.PC)
	c.PC = vector
	return interruptDispatchCycles, true
}

// illegal latches a fatal fault for an undefined opcode. Real DMG hardware
// locks up on these; this core treats the condition as unrecoverable
// rather than guessing at behavior.
func (c *CPU) illegal(opcode uint8) uint16 {
	c.Fault = fmt.Errorf("illegal opcode 0x%02X at 0x%04X", opcode, c.PC-1)
	return 0
}

func (c *CPU) Save(s *state.State) {
	s.Write8(c.A)
	s.Write8(c.F)
	s.Write8(c.B)
	s.Write8(c.C)
	s.Write8(c.D)
	s.Write8(c.E)
	s.Write8(c.H)
	s.Write8(c.L)
	s.Write16(c.PC)
	s.Write16(c.SP)
	s.WriteBool(c.halt)
	s.WriteBool(c.haltBugPending)
	s.WriteBool(c.stopped)
	s.WriteBool(c.pendingIME)
}

func (c *CPU) Load(s *state.State) {
	c.A = s.Read8()
	c.F = s.Read8()
	c.B = s.Read8()
	c.C = s.Read8()
	c.D = s.Read8()
	c.E = s.Read8()
	c.H = s.Read8()
	c.L = s.Read8()
	c.PC = s.Read16()
	c.SP = s.Read16()
	c.halt = s.ReadBool()
	c.haltBugPending = s.ReadBool()
	c.stopped = s.ReadBool()
	c.pendingIME = s.ReadBool()
}
