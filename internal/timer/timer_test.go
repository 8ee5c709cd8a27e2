package timer

import (
	"testing"

	"github.com/a-box31/Gameboy/internal/interrupts"
)

func TestDIVIncrementsAtFixedPeriod(t *testing.T) {
	irq := interrupts.NewService()
	c := New(irq)

	c.Advance(256)
	if got := c.Read(DIV); got != 1 {
		t.Fatalf("DIV = %d, want 1 after 256 cycles", got)
	}
	c.Advance(256 * 3)
	if got := c.Read(DIV); got != 4 {
		t.Fatalf("DIV = %d, want 4 after 1024 total cycles", got)
	}
}

func TestDIVResidualNeverDropsAnIncrement(t *testing.T) {
	irq := interrupts.NewService()
	c := New(irq)

	// Advancing by odd, non-dividing chunks must not lose any ticks to
	// truncation: 100 calls of 7 cycles = 700 cycles = 2 DIV ticks
	// (512) with 188 residual, not zero.
	for i := 0; i < 100; i++ {
		c.Advance(7)
	}
	if got := c.Read(DIV); got != 2 {
		t.Fatalf("DIV = %d, want 2 after 700 cycles in odd increments", got)
	}
}

func TestTIMAOverflowReloadsFromTMAAndRequestsInterrupt(t *testing.T) {
	irq := interrupts.NewService()
	c := New(irq)

	c.Write(TAC, 0x05) // enabled, clock-select 1 -> every 16 cycles
	c.Write(TMA, 0xF0)
	c.Write(TIMA, 0xFF)

	c.Advance(16) // one TIMA tick: overflow

	if got := c.Read(TIMA); got != 0xF0 {
		t.Fatalf("TIMA = 0x%02X, want 0x%02X (reloaded from TMA)", got, 0xF0)
	}
	if irq.Flag&(1<<interrupts.TimerFlag) == 0 {
		t.Fatal("expected the timer interrupt flag to be requested on overflow")
	}
}

func TestTIMADisabledByTAC(t *testing.T) {
	irq := interrupts.NewService()
	c := New(irq)

	c.Write(TAC, 0x00) // disabled
	c.Write(TIMA, 0x00)
	c.Advance(100000)

	if got := c.Read(TIMA); got != 0 {
		t.Fatalf("TIMA = %d, want 0 while disabled", got)
	}
}

func TestTACReadMasksUnusedBits(t *testing.T) {
	irq := interrupts.NewService()
	c := New(irq)
	c.Write(TAC, 0x07)
	if got := c.Read(TAC); got != 0xFF {
		t.Fatalf("TAC = 0x%02X, want 0xFF", got)
	}
}
