// Package gameboy wires the cartridge, bus, CPU, PPU, APU, timer and
// joypad into a runnable system and exposes the host-facing operations:
// loading a ROM, stepping a frame, reading the framebuffer and audio
// samples, button input, and save-state/battery persistence.
package gameboy

import (
	"fmt"

	"github.com/a-box31/Gameboy/internal/apu"
	"github.com/a-box31/Gameboy/internal/bus"
	"github.com/a-box31/Gameboy/internal/cartridge"
	"github.com/a-box31/Gameboy/internal/config"
	"github.com/a-box31/Gameboy/internal/cpu"
	"github.com/a-box31/Gameboy/internal/interrupts"
	"github.com/a-box31/Gameboy/internal/joypad"
	"github.com/a-box31/Gameboy/internal/ppu"
	"github.com/a-box31/Gameboy/internal/state"
	"github.com/a-box31/Gameboy/internal/timer"
	"github.com/a-box31/Gameboy/pkg/log"
)

// CyclesPerFrame is the number of CPU T-cycles in one 59.7 Hz DMG frame
// (154 scanlines * 456 cycles).
const CyclesPerFrame = 154 * 456

// System owns every emulated component and coordinates a frame's worth of
// execution.
type System struct {
	quirks config.Quirks
	log    log.Logger

	cart *cartridge.Cartridge
	irq  *interrupts.Service
	tmr  *timer.Controller
	pad  *joypad.State
	vid  *ppu.PPU
	snd  *apu.APU
	mmu  *bus.Bus
	cpu  *cpu.CPU

	// fault latches the CPU's illegal-opcode fault; once set, Step and
	// RunFrame become no-ops until Reset or LoadCartridge.
	fault error
}

// New returns a System with no cartridge loaded. LoadCartridge must be
// called before stepping.
func New(quirks config.Quirks, logger log.Logger) *System {
	if logger == nil {
		logger = log.NewNull()
	}
	sys := &System{quirks: quirks, log: logger}
	sys.irq = interrupts.NewService()
	sys.tmr = timer.New(sys.irq)
	sys.pad = joypad.New()
	sys.vid = ppu.New(sys.irq, quirks.StrictVRAMAccess)
	sys.snd = apu.New()
	return sys
}

// LoadCartridge parses and installs rom as the running cartridge,
// resetting every subsystem to its post-boot-ROM state. Battery RAM from
// a previously loaded cartridge is not preserved across this call; use
// BatterySnapshot/RestoreBattery for that.
func (s *System) LoadCartridge(rom []byte) error {
	cart, err := cartridge.Load(rom, s.quirks.CartridgeQuirks(), s.log)
	if err != nil {
		return fmt.Errorf("gameboy: load cartridge: %w", err)
	}
	s.cart = cart
	s.mmu = bus.New(s.cart, s.vid, s.snd, s.tmr, s.pad, s.irq, s.log)
	s.cpu = cpu.New(s.mmu, s.irq)
	s.fault = nil
	s.resetSubsystems()
	return nil
}

// Reset returns the CPU, bus, PPU, APU, timer, joypad and interrupt state
// to post-boot-ROM values without reloading the cartridge image. The
// cartridge is not reset: its MBC bank and RAM-enable registers, external
// RAM and any RTC state keep their current values.
func (s *System) Reset() error {
	if s.cart == nil {
		return fmt.Errorf("gameboy: reset: no cartridge loaded")
	}
	s.fault = nil
	s.resetSubsystems()
	return nil
}

func (s *System) resetSubsystems() {
	s.irq.Reset()
	s.tmr.Reset()
	s.pad.Reset()
	s.vid.Reset()
	s.snd.Reset()
	s.mmu.Reset()
	s.cpu.Reset()
}

// Fault reports the latched illegal-opcode error, if any. Once set it
// persists until Reset or LoadCartridge.
func (s *System) Fault() error {
	return s.fault
}

// Step executes exactly one CPU instruction (or interrupt dispatch) and
// advances every other subsystem by the same number of cycles, in the
// fixed order CPU, timer, joypad, PPU, APU. It returns the cycle count
// consumed, or 0 if a fault is already latched.
func (s *System) Step() uint16 {
	if s.fault != nil {
		return 0
	}
	cycles := s.cpu.Step()
	if s.cpu.Fault != nil {
		s.fault = s.cpu.Fault
		return cycles
	}
	if cycles == 0 {
		return 0
	}
	s.tmr.Advance(cycles)
	s.pad.Advance(cycles)
	s.vid.Advance(cycles)
	s.snd.Advance(cycles)
	if s.quirks.AdvanceRTC {
		s.cart.AdvanceRTC(uint32(cycles))
	}
	return cycles
}

// RunFrame steps the system until a full frame (CyclesPerFrame cycles, or
// the PPU's own frame-complete signal, whichever comes first) has been
// produced, and returns the total cycles executed. It stops early if a
// fault becomes latched mid-frame.
func (s *System) RunFrame() uint16 {
	var total uint16
	for total < CyclesPerFrame {
		cycles := s.Step()
		if cycles == 0 {
			break
		}
		total += cycles
		if s.vid.FrameReady() {
			break
		}
	}
	return total
}

// Framebuffer returns the most recently completed frame as packed RGBA8888,
// 160x144 pixels, and clears the frame-ready flag.
func (s *System) Framebuffer() []byte {
	defer s.vid.ConsumeFrame()
	return s.vid.Framebuffer()
}

// AudioSamples pops up to n interleaved stereo sample pairs (2n int16
// values) generated since the last call.
func (s *System) AudioSamples(n int) []int16 {
	return s.snd.AudioSamples(n)
}

// SetButton updates one joypad button's pressed state.
func (s *System) SetButton(button joypad.Button, pressed bool) {
	if s.pad.SetButton(button, pressed) {
		s.irq.Request(interrupts.JoypadFlag)
	}
}

// ButtonsState returns the current pressed/released state of all eight
// buttons, one bit per button (1 = pressed).
func (s *System) ButtonsState() uint8 {
	return s.pad.ButtonsState()
}

// BatterySnapshot returns a copy of the cartridge's battery-backed external
// RAM, or nil if the cartridge has no battery. MBC3 RTC registers are not
// included.
func (s *System) BatterySnapshot() []byte {
	if s.cart == nil || !s.cart.HasBattery() {
		return nil
	}
	return s.cart.BatterySnapshot()
}

// RestoreBattery installs previously captured battery-backed RAM.
func (s *System) RestoreBattery(data []byte) {
	if s.cart == nil {
		return
	}
	s.cart.RestoreBattery(data)
}

// SaveState captures a full, self-describing snapshot of every
// subsystem, tagged with the loaded cartridge's identity.
func (s *System) SaveState() ([]byte, error) {
	if s.cart == nil {
		return nil, fmt.Errorf("gameboy: save state: no cartridge loaded")
	}
	payload := state.New()
	s.cpu.Save(payload)
	s.irq.Save(payload)
	s.tmr.Save(payload)
	s.pad.Save(payload)
	s.vid.Save(payload)
	s.snd.Save(payload)
	s.mmu.Save(payload)
	s.cart.Save(payload)

	return state.EncodeEnvelope(state.Envelope{
		CartridgeTitle: s.cart.Header.Title,
		HeaderChecksum: s.cart.Header.HeaderChecksum,
		Payload:        payload.Bytes(),
	}), nil
}

// LoadState restores a snapshot previously produced by SaveState for the
// currently loaded cartridge. It refuses a snapshot captured against a
// different ROM.
func (s *System) LoadState(raw []byte) error {
	if s.cart == nil {
		return fmt.Errorf("gameboy: load state: no cartridge loaded")
	}
	env, err := state.DecodeEnvelope(raw, s.cart.Header.Title, s.cart.Header.HeaderChecksum)
	if err != nil {
		return err
	}
	payload := state.FromBytes(env.Payload)
	s.cpu.Load(payload)
	s.irq.Load(payload)
	s.tmr.Load(payload)
	s.pad.Load(payload)
	s.vid.Load(payload)
	s.snd.Load(payload)
	s.mmu.Load(payload)
	s.cart.Load(payload)
	s.fault = nil
	return nil
}
