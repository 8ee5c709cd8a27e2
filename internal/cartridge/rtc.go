package cartridge

import "github.com/a-box31/Gameboy/internal/state"

// rtc holds the MBC3 real-time-clock register file. Per spec.md §4.2 the
// core may stub the clock as non-advancing; Advance only does work when
// running is true (controlled by the host's Quirks.AdvanceRTC), but the
// latch/unlatch snapshot path always behaves correctly regardless.
type rtc struct {
	seconds, minutes, hours uint8
	days                    uint16 // 9-bit day counter; bit 8 sits in the high byte
	halt                    bool
	dayCarry                bool

	latched rtcSnapshot
	running bool

	subSecondResidual uint32 // CPU cycles accumulated toward the next second
}

type rtcSnapshot struct {
	seconds, minutes, hours uint8
	days                    uint16
	halt, dayCarry          bool
}

func (r *rtc) snapshot() rtcSnapshot {
	return rtcSnapshot{r.seconds, r.minutes, r.hours, r.days, r.halt, r.dayCarry}
}

// Latch copies the live registers into the latched snapshot, as if the
// host wrote 0x00 then 0x01 to the latch-clock register.
func (r *rtc) Latch() {
	r.latched = r.snapshot()
}

// Advance ticks the clock forward by the given number of CPU cycles, at
// the DMG clock rate, only if the clock is running and not halted.
func (r *rtc) Advance(cycles uint32) {
	if !r.running || r.halt {
		return
	}
	const cyclesPerSecond = 4194304
	r.subSecondResidual += cycles
	for r.subSecondResidual >= cyclesPerSecond {
		r.subSecondResidual -= cyclesPerSecond
		r.tickSecond()
	}
}

func (r *rtc) tickSecond() {
	r.seconds++
	if r.seconds < 60 {
		return
	}
	r.seconds = 0
	r.minutes++
	if r.minutes < 60 {
		return
	}
	r.minutes = 0
	r.hours++
	if r.hours < 24 {
		return
	}
	r.hours = 0
	r.days++
	if r.days > 0x1FF {
		r.days = 0
		r.dayCarry = true
	}
}

// registerIndex is 0x08-0x0C as selected by the RAM-bank/RTC-select write.
func (r *rtc) readLatched(registerIndex uint8) uint8 {
	s := r.latched
	switch registerIndex {
	case 0x08:
		return s.seconds
	case 0x09:
		return s.minutes
	case 0x0A:
		return s.hours
	case 0x0B:
		return uint8(s.days)
	case 0x0C:
		v := uint8(s.days>>8) & 0x01
		if s.halt {
			v |= 0x40
		}
		if s.dayCarry {
			v |= 0x80
		}
		return v
	}
	return 0xFF
}

func (r *rtc) write(registerIndex uint8, value uint8) {
	switch registerIndex {
	case 0x08:
		r.seconds = value % 60
	case 0x09:
		r.minutes = value % 60
	case 0x0A:
		r.hours = value % 24
	case 0x0B:
		r.days = r.days&0x100 | uint16(value)
	case 0x0C:
		r.days = r.days&0xFF | uint16(value&0x01)<<8
		r.halt = value&0x40 != 0
		r.dayCarry = value&0x80 != 0
	}
}

func (r *rtc) save(s *state.State) {
	s.Write8(r.seconds)
	s.Write8(r.minutes)
	s.Write8(r.hours)
	s.Write16(r.days)
	s.WriteBool(r.halt)
	s.WriteBool(r.dayCarry)
	s.WriteBool(r.running)
	s.Write32(r.subSecondResidual)
	l := r.latched
	s.Write8(l.seconds)
	s.Write8(l.minutes)
	s.Write8(l.hours)
	s.Write16(l.days)
	s.WriteBool(l.halt)
	s.WriteBool(l.dayCarry)
}

func (r *rtc) load(s *state.State) {
	r.seconds = s.Read8()
	r.minutes = s.Read8()
	r.hours = s.Read8()
	r.days = s.Read16()
	r.halt = s.ReadBool()
	r.dayCarry = s.ReadBool()
	r.running = s.ReadBool()
	r.subSecondResidual = s.Read32()
	r.latched.seconds = s.Read8()
	r.latched.minutes = s.Read8()
	r.latched.hours = s.Read8()
	r.latched.days = s.Read16()
	r.latched.halt = s.ReadBool()
	r.latched.dayCarry = s.ReadBool()
}
