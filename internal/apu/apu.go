package apu

import "github.com/a-box31/Gameboy/internal/state"

const (
	cpuClockHz           = 4194304
	frameSequencerPeriod = cpuClockHz / 512 // 8192 cycles
	defaultSampleRate    = 44100
	sampleBufferCapacity = defaultSampleRate // ~1s of headroom
)

// APU mixes the four DMG sound channels into a stereo PCM stream, clocked
// by a 512 Hz frame sequencer that drives length, sweep and envelope.
type APU struct {
	enabled bool

	ch1 *pulse
	ch2 *pulse
	ch3 *wave
	ch4 *noise

	frameSeqResidual int32
	frameSeqStep     uint8

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8

	// panning[channel][0]=left, [1]=right
	panning [4][2]bool

	sampleRate     uint32
	sampleResidual uint32

	samples []int16 // interleaved L,R pairs
}

// New returns an APU in its post-boot, powered-on state.
func New() *APU {
	return &APU{
		enabled:    true,
		ch1:        newPulse(true),
		ch2:        newPulse(false),
		ch3:        newWave(),
		ch4:        newNoise(),
		sampleRate: defaultSampleRate,
		samples:    make([]int16, 0, sampleBufferCapacity*2),
	}
}

// Reset returns the APU to its post-boot state.
func (a *APU) Reset() {
	rate := a.sampleRate
	*a = *New()
	a.sampleRate = rate
}

// SetSampleRate configures the host's desired output sample rate.
func (a *APU) SetSampleRate(rate uint32) {
	if rate == 0 {
		rate = defaultSampleRate
	}
	a.sampleRate = rate
}

func (a *APU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0xFF10:
		return a.ch1.readNRx0()
	case 0xFF11:
		return a.ch1.readNRx1()
	case 0xFF12:
		return a.ch1.readNRx2()
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return a.ch1.readNRx4()
	case 0xFF16:
		return a.ch2.readNRx1()
	case 0xFF17:
		return a.ch2.readNRx2()
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return a.ch2.readNRx4()
	case 0xFF1A:
		return a.ch3.readNR30()
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return a.ch3.readNR32()
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return a.ch3.readNR34()
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return a.ch4.readNR42()
	case 0xFF22:
		return a.ch4.readNR43()
	case 0xFF23:
		return a.ch4.readNR44()
	case 0xFF24:
		return a.readNR50()
	case 0xFF25:
		return a.readNR51()
	case 0xFF26:
		return a.readNR52()
	}
	if address >= 0xFF30 && address <= 0xFF3F {
		return a.ch3.readRAM(uint8(address - 0xFF30))
	}
	return 0xFF
}

func (a *APU) WriteRegister(address uint16, value uint8) {
	// Wave RAM and NR52 remain writable even while powered off.
	if address >= 0xFF30 && address <= 0xFF3F {
		a.ch3.writeRAM(uint8(address-0xFF30), value)
		return
	}
	if address == 0xFF26 {
		a.writeNR52(value)
		return
	}
	if !a.enabled {
		return
	}

	switch address {
	case 0xFF10:
		a.ch1.writeNRx0(value)
	case 0xFF11:
		a.ch1.writeNRx1(value)
	case 0xFF12:
		a.ch1.writeNRx2(value)
	case 0xFF13:
		a.ch1.writeNRx3(value)
	case 0xFF14:
		a.ch1.writeNRx4(value)
	case 0xFF16:
		a.ch2.writeNRx1(value)
	case 0xFF17:
		a.ch2.writeNRx2(value)
	case 0xFF18:
		a.ch2.writeNRx3(value)
	case 0xFF19:
		a.ch2.writeNRx4(value)
	case 0xFF1A:
		a.ch3.writeNR30(value)
	case 0xFF1B:
		a.ch3.writeNR31(value)
	case 0xFF1C:
		a.ch3.writeNR32(value)
	case 0xFF1D:
		a.ch3.writeNR33(value)
	case 0xFF1E:
		a.ch3.writeNR34(value)
	case 0xFF20:
		a.ch4.writeNR41(value)
	case 0xFF21:
		a.ch4.writeNR42(value)
	case 0xFF22:
		a.ch4.writeNR43(value)
	case 0xFF23:
		a.ch4.writeNR44(value)
	case 0xFF24:
		a.writeNR50(value)
	case 0xFF25:
		a.writeNR51(value)
	}
}

func (a *APU) writeNR50(v uint8) {
	a.vinRight = v&0x80 != 0
	a.volumeRight = (v >> 4) & 0x7
	a.vinLeft = v&0x08 != 0
	a.volumeLeft = v & 0x7
}

func (a *APU) readNR50() uint8 {
	v := a.volumeLeft | a.volumeRight<<4
	if a.vinLeft {
		v |= 0x08
	}
	if a.vinRight {
		v |= 0x80
	}
	return v
}

func (a *APU) writeNR51(v uint8) {
	for ch := 0; ch < 4; ch++ {
		a.panning[ch][1] = v&(1<<ch) != 0     // right
		a.panning[ch][0] = v&(1<<(ch+4)) != 0 // left
	}
}

func (a *APU) readNR51() uint8 {
	var v uint8
	for ch := 0; ch < 4; ch++ {
		if a.panning[ch][1] {
			v |= 1 << ch
		}
		if a.panning[ch][0] {
			v |= 1 << (ch + 4)
		}
	}
	return v
}

// writeNR52 handles the global power switch. Clearing bit 7 zeroes every
// sound register except the length counters and wave RAM, per spec.
func (a *APU) writeNR52(v uint8) {
	wasEnabled := a.enabled
	a.enabled = v&0x80 != 0
	if wasEnabled && !a.enabled {
		ch1Length, ch2Length, ch3Length, ch4Length := a.ch1.length, a.ch2.length, a.ch3.length, a.ch4.length
		wave := a.ch3.ram
		a.ch1 = newPulse(true)
		a.ch2 = newPulse(false)
		a.ch3 = newWave()
		a.ch4 = newNoise()
		a.ch1.length, a.ch2.length, a.ch3.length, a.ch4.length = ch1Length, ch2Length, ch3Length, ch4Length
		a.ch3.ram = wave
		a.volumeLeft, a.volumeRight, a.vinLeft, a.vinRight = 0, 0, false, false
		a.panning = [4][2]bool{}
	}
}

func (a *APU) readNR52() uint8 {
	var v uint8 = 0x70
	if a.enabled {
		v |= 0x80
	}
	if a.ch1.enabled {
		v |= 0x01
	}
	if a.ch2.enabled {
		v |= 0x02
	}
	if a.ch3.enabled {
		v |= 0x04
	}
	if a.ch4.enabled {
		v |= 0x08
	}
	return v
}

// Advance runs the APU forward by cycles CPU clock cycles: steps each
// channel's frequency timer, the 512 Hz frame sequencer, and accumulates
// output samples at the host's configured sample rate.
func (a *APU) Advance(cycles uint16) {
	if !a.enabled {
		return
	}
	remaining := int32(cycles)
	a.ch1.advance(remaining)
	a.ch2.advance(remaining)
	a.ch3.advance(remaining)
	a.ch4.advance(remaining)

	a.frameSeqResidual += remaining
	for a.frameSeqResidual >= frameSequencerPeriod {
		a.frameSeqResidual -= frameSequencerPeriod
		a.stepFrameSequencer()
	}

	a.sampleResidual += uint32(cycles)
	cyclesPerSample := cpuClockHz / a.sampleRate
	for a.sampleResidual >= cyclesPerSample {
		a.sampleResidual -= cyclesPerSample
		a.generateSample()
	}
}

func (a *APU) stepFrameSequencer() {
	switch a.frameSeqStep {
	case 0, 4:
		a.ch1.lengthStep()
		a.ch2.lengthStep()
		a.ch3.lengthStep()
		a.ch4.lengthStep()
	case 2, 6:
		a.ch1.lengthStep()
		a.ch2.lengthStep()
		a.ch3.lengthStep()
		a.ch4.lengthStep()
		a.ch1.sweepStep()
	case 7:
		a.ch1.envelopeStep()
		a.ch2.envelopeStep()
		a.ch4.envelopeStep()
	}
	a.frameSeqStep = (a.frameSeqStep + 1) & 0x7
}

func (a *APU) generateSample() {
	c1, c2, c3, c4 := a.ch1.amplitude(), a.ch2.amplitude(), a.ch3.amplitude(), a.ch4.amplitude()

	var left, right int32
	amps := [4]int16{c1, c2, c3, c4}
	for ch, amp := range amps {
		if a.panning[ch][0] {
			left += int32(amp)
		}
		if a.panning[ch][1] {
			right += int32(amp)
		}
	}

	// Scale each channel's 0-15 DAC range and the 4-channel sum up to a
	// comfortable 16-bit headroom, then apply the 0-7 master volumes.
	const perChannelScale = 1024
	left = left * perChannelScale * int32(a.volumeLeft+1) / 8
	right = right * perChannelScale * int32(a.volumeRight+1) / 8

	a.samples = append(a.samples, clampSample(left), clampSample(right))
	if len(a.samples) > sampleBufferCapacity*2 {
		a.samples = a.samples[len(a.samples)-sampleBufferCapacity*2:]
	}
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// AudioSamples pulls up to n stereo frames (2n int16 values, L,R
// interleaved) of pending output, removing them from the internal buffer.
func (a *APU) AudioSamples(n int) []int16 {
	want := n * 2
	if want > len(a.samples) {
		want = len(a.samples)
	}
	out := make([]int16, want)
	copy(out, a.samples[:want])
	a.samples = a.samples[want:]
	return out
}

func (a *APU) Save(s *state.State) {
	s.WriteBool(a.enabled)
	savePulse(s, a.ch1)
	savePulse(s, a.ch2)
	saveWave(s, a.ch3)
	saveNoise(s, a.ch4)
	s.Write16(uint16(a.frameSeqResidual))
	s.Write8(a.frameSeqStep)
	s.WriteBool(a.vinLeft)
	s.WriteBool(a.vinRight)
	s.Write8(a.volumeLeft)
	s.Write8(a.volumeRight)
	for ch := 0; ch < 4; ch++ {
		s.WriteBool(a.panning[ch][0])
		s.WriteBool(a.panning[ch][1])
	}
}

func (a *APU) Load(s *state.State) {
	a.enabled = s.ReadBool()
	loadPulse(s, a.ch1)
	loadPulse(s, a.ch2)
	loadWave(s, a.ch3)
	loadNoise(s, a.ch4)
	a.frameSeqResidual = int32(s.Read16())
	a.frameSeqStep = s.Read8()
	a.vinLeft = s.ReadBool()
	a.vinRight = s.ReadBool()
	a.volumeLeft = s.Read8()
	a.volumeRight = s.Read8()
	for ch := 0; ch < 4; ch++ {
		a.panning[ch][0] = s.ReadBool()
		a.panning[ch][1] = s.ReadBool()
	}
}

func savePulse(s *state.State, p *pulse) {
	s.WriteBool(p.enabled)
	s.Write16(p.length.counter)
	s.WriteBool(p.length.enabled)
	s.Write8(p.env.initialVolume)
	s.WriteBool(p.env.addMode)
	s.Write8(p.env.period)
	s.Write8(p.env.volume)
	s.Write8(p.env.timer)
	s.Write8(p.duty)
	s.Write8(p.dutyPos)
	s.Write16(p.frequency)
	s.Write32(uint32(p.freqTimer))
	s.Write8(p.sweepPeriod)
	s.WriteBool(p.sweepNegate)
	s.Write8(p.sweepShift)
	s.Write8(p.sweepTimer)
	s.WriteBool(p.sweepEnabled)
	s.Write16(p.sweepShadowFreq)
}

func loadPulse(s *state.State, p *pulse) {
	p.enabled = s.ReadBool()
	p.length.counter = s.Read16()
	p.length.enabled = s.ReadBool()
	p.env.initialVolume = s.Read8()
	p.env.addMode = s.ReadBool()
	p.env.period = s.Read8()
	p.env.volume = s.Read8()
	p.env.timer = s.Read8()
	p.duty = s.Read8()
	p.dutyPos = s.Read8()
	p.frequency = s.Read16()
	p.freqTimer = int32(s.Read32())
	p.sweepPeriod = s.Read8()
	p.sweepNegate = s.ReadBool()
	p.sweepShift = s.Read8()
	p.sweepTimer = s.Read8()
	p.sweepEnabled = s.ReadBool()
	p.sweepShadowFreq = s.Read16()
}

func saveWave(s *state.State, w *wave) {
	s.WriteBool(w.enabled)
	s.WriteBool(w.dacPower)
	s.Write16(w.length.counter)
	s.WriteBool(w.length.enabled)
	s.Write8(w.volumeCode)
	s.Write16(w.frequency)
	s.Write32(uint32(w.freqTimer))
	s.Write8(w.samplePos)
	s.WriteData(w.ram[:])
}

func loadWave(s *state.State, w *wave) {
	w.enabled = s.ReadBool()
	w.dacPower = s.ReadBool()
	w.length.counter = s.Read16()
	w.length.enabled = s.ReadBool()
	w.volumeCode = s.Read8()
	w.frequency = s.Read16()
	w.freqTimer = int32(s.Read32())
	w.samplePos = s.Read8()
	s.ReadData(w.ram[:])
}

func saveNoise(s *state.State, n *noise) {
	s.WriteBool(n.enabled)
	s.Write16(n.length.counter)
	s.WriteBool(n.length.enabled)
	s.Write8(n.env.initialVolume)
	s.WriteBool(n.env.addMode)
	s.Write8(n.env.period)
	s.Write8(n.env.volume)
	s.Write8(n.env.timer)
	s.Write8(n.shift)
	s.WriteBool(n.widthMode)
	s.Write8(n.divisorIdx)
	s.Write16(n.lfsr)
	s.Write32(uint32(n.freqTimer))
}

func loadNoise(s *state.State, n *noise) {
	n.enabled = s.ReadBool()
	n.length.counter = s.Read16()
	n.length.enabled = s.ReadBool()
	n.env.initialVolume = s.Read8()
	n.env.addMode = s.ReadBool()
	n.env.period = s.Read8()
	n.env.volume = s.Read8()
	n.env.timer = s.Read8()
	n.shift = s.Read8()
	n.widthMode = s.ReadBool()
	n.divisorIdx = s.Read8()
	n.lfsr = s.Read16()
	n.freqTimer = int32(s.Read32())
}
