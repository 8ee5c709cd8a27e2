package joypad

import "testing"

func TestReadReflectsSelectedColumn(t *testing.T) {
	s := New()
	s.SetButton(ButtonA, true)
	s.SetButton(ButtonUp, true)

	s.Write(0x10) // select action buttons (bit 5 = 0)
	if got := s.Read(); got&0x01 != 0 {
		t.Fatalf("P1 = 0x%02X, button A should read low (pressed)", got)
	}

	s.Write(0x20) // select direction buttons (bit 4 = 0)
	if got := s.Read(); got&0x04 != 0 {
		t.Fatalf("P1 = 0x%02X, Up should read low (pressed) on the direction column", got)
	}
}

func TestSetButtonRequestsInterruptOnlyOnPressEdge(t *testing.T) {
	s := New()
	s.Write(0x10) // action column selected

	if requested := s.SetButton(ButtonA, true); !requested {
		t.Fatal("expected a fresh press on a selected column to request an interrupt")
	}
	if requested := s.SetButton(ButtonA, true); requested {
		t.Fatal("holding the button should not request a second interrupt")
	}
	s.SetButton(ButtonA, false)
	if requested := s.SetButton(ButtonA, false); requested {
		t.Fatal("a release should never request an interrupt")
	}
}

func TestSetButtonIgnoresUnselectedColumn(t *testing.T) {
	s := New()
	s.Write(0x20) // direction column selected, action deselected

	if requested := s.SetButton(ButtonA, true); requested {
		t.Fatal("pressing an action button while only the direction column is selected should not interrupt")
	}
}

func TestWriteOnlyAffectsColumnSelectBits(t *testing.T) {
	s := New()
	s.Write(0xFF)
	if got := s.Read(); got&0x30 != 0x30 {
		t.Fatalf("P1 = 0x%02X, column-select bits should both read back set", got)
	}
}
