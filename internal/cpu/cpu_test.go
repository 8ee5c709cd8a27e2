package cpu

import (
	"testing"

	"github.com/a-box31/Gameboy/internal/interrupts"
)

// flatBus is a 64KiB byte-addressable bus used to drive the CPU in
// isolation, without the full memory map's register dispatch.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(address uint16) uint8        { return b.mem[address] }
func (b *flatBus) Write(address uint16, value uint8) { b.mem[address] = value }

func (b *flatBus) loadAt(pc uint16, program ...uint8) {
	copy(b.mem[pc:], program)
}

func newTestCPU(program ...uint8) (*CPU, *flatBus) {
	bus := &flatBus{}
	irq := interrupts.NewService()
	c := New(bus, irq)
	bus.loadAt(c.PC, program...)
	return c, bus
}

// TestADDAB exercises spec scenario 1: ADD A,B with A=0x3A, B=0xC6 wraps
// to zero and sets Z, H and C but not N.
func TestADDAB(t *testing.T) {
	c, _ := newTestCPU(0x80) // ADD A,B
	c.A = 0x3A
	c.F = 0x00
	c.B = 0xC6

	c.Step()

	if c.A != 0x00 {
		t.Fatalf("A = 0x%02X, want 0x00", c.A)
	}
	if c.F != 0xB0 {
		t.Fatalf("F = 0x%02X, want 0xB0", c.F)
	}
}

// TestDAAAfterSubtraction exercises spec scenario 2: DAA following a
// subtraction whose correction amount underflows A even though the
// original instruction's carry flag was clear.
func TestDAAAfterSubtraction(t *testing.T) {
	c, _ := newTestCPU(0x27) // DAA
	c.A = 0x05
	c.F = 0x60 // N set, H set, C clear

	c.Step()

	if c.A != 0xFF {
		t.Fatalf("A = 0x%02X, want 0xFF", c.A)
	}
	if c.F != 0x50 {
		t.Fatalf("F = 0x%02X, want 0x50", c.F)
	}
}

// TestDAAAfterAddition covers the ordinary BCD-addition path through the
// same routine, to guard against a fix for the subtraction edge case
// regressing the common case.
func TestDAAAfterAddition(t *testing.T) {
	c, _ := newTestCPU(0x27)
	// 0x45 + 0x38 = 0x7D pre-DAA. The low nibble 0xD exceeds 9, so DAA
	// adds 0x06; H is set here as well, which calls for the same correction.
	c.A = 0x7D
	c.F = 0x20 // H set, N/C clear

	c.Step()

	if c.A != 0x83 {
		t.Fatalf("A = 0x%02X, want 0x83", c.A)
	}
	if c.F&FlagCarry != 0 {
		t.Fatalf("F = 0x%02X, carry should be clear", c.F)
	}
}

// TestDAAOverflowSetsCarry covers the addition branch's full-byte BCD
// overflow, which must set the carry flag even though the input carry
// was clear.
func TestDAAOverflowSetsCarry(t *testing.T) {
	c, _ := newTestCPU(0x27)
	c.A = 0x9A
	c.F = 0x00

	c.Step()

	if c.A != 0x00 {
		t.Fatalf("A = 0x%02X, want 0x00", c.A)
	}
	if c.F&FlagCarry == 0 {
		t.Fatal("carry should be set on BCD overflow")
	}
	if c.F&FlagZero == 0 {
		t.Fatal("zero should be set")
	}
}

// TestAddHLBC exercises spec scenario 3: ADD HL,BC sets H and C from the
// 16-bit addition while clearing N and leaving Z untouched.
func TestAddHLBC(t *testing.T) {
	c, _ := newTestCPU(0x09) // ADD HL,BC
	c.SetHL(0x8A23)
	c.SetBC(0x0605)
	c.F = 0x80 // Z set beforehand, must be preserved

	c.Step()

	if c.HL() != 0x9028 {
		t.Fatalf("HL = 0x%04X, want 0x9028", c.HL())
	}
	if c.F != 0xA0 {
		t.Fatalf("F = 0x%02X, want 0xA0", c.F)
	}
}

// TestFlagLowNibbleAlwaysZero asserts the invariant that F's low nibble
// never carries a bit regardless of how it is written.
func TestFlagLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU()
	c.SetAF(0x12FF)
	if c.F&0x0F != 0 {
		t.Fatalf("F low nibble = 0x%X, want 0", c.F&0x0F)
	}
	if c.AF() != 0x12F0 {
		t.Fatalf("AF() = 0x%04X, want 0x12F0", c.AF())
	}
}

// TestPureReadIdempotence asserts that reading the same address twice in
// a row without an intervening write returns the same value (bus.Read
// here is a flat array so this is really exercising that Step never
// mutates memory as a side effect of decode).
func TestPureReadIdempotence(t *testing.T) {
	c, bus := newTestCPU(0x00) // NOP
	bus.mem[0xC000] = 0x42
	first := bus.Read(0xC000)
	c.Step()
	second := bus.Read(0xC000)
	if first != second {
		t.Fatalf("read value changed from 0x%02X to 0x%02X", first, second)
	}
}

func TestHaltWakesWithoutServiceWhenIMEClear(t *testing.T) {
	c, _ := newTestCPU(0x76, 0x00) // HALT, NOP
	c.irq.IME = false
	c.Step() // executes HALT
	if !c.halt {
		t.Fatal("expected CPU to be halted")
	}

	c.irq.Enable = 0x01
	c.irq.Flag = 0x01 // V-Blank pending, but IME is clear

	cycles := c.Step()
	if c.halt {
		t.Fatal("expected HALT to end on pending interrupt even without IME")
	}
	if cycles != 4 {
		t.Fatalf("expected a normal HALT-tick cycle count of 4 on the waking step, got %d", cycles)
	}
}

func TestEIDelaysOneInstruction(t *testing.T) {
	c, _ := newTestCPU(0xFB, 0x00, 0x00) // EI, NOP, NOP
	c.irq.Enable = 0x01
	c.irq.Flag = 0x01

	c.Step() // EI: IME not yet set
	if c.irq.IME {
		t.Fatal("IME should not be set immediately after EI")
	}
	c.Step() // NOP: IME becomes set only now, interrupt not yet dispatched this step
	if !c.irq.IME {
		t.Fatal("IME should be set after the instruction following EI")
	}
}

func TestIllegalOpcodeLatchesFault(t *testing.T) {
	c, _ := newTestCPU(0xD3) // illegal
	c.Step()
	if c.Fault == nil {
		t.Fatal("expected Fault to be set for an illegal opcode")
	}
	cycles := c.Step()
	if cycles != 0 {
		t.Fatal("Step should be a no-op once Fault is latched")
	}
}
