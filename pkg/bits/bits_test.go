package bits

import "testing"

func TestSetResetTest(t *testing.T) {
	var b uint8 = 0

	b = Set(b, 3)
	if !Test(b, 3) {
		t.Fatal("expected bit 3 to be set")
	}
	if Val(b, 3) != 1 {
		t.Fatalf("Val(b, 3) = %d, want 1", Val(b, 3))
	}

	b = Reset(b, 3)
	if Test(b, 3) {
		t.Fatal("expected bit 3 to be clear")
	}
	if Val(b, 3) != 0 {
		t.Fatalf("Val(b, 3) = %d, want 0", Val(b, 3))
	}
}

func TestHalfCarryAdd8(t *testing.T) {
	cases := []struct {
		a, b uint8
		want bool
	}{
		{0x0F, 0x01, true},
		{0x0E, 0x01, false},
		{0xFF, 0xFF, true},
		{0x00, 0x00, false},
	}
	for _, c := range cases {
		if got := HalfCarryAdd8(c.a, c.b); got != c.want {
			t.Errorf("HalfCarryAdd8(0x%02X, 0x%02X) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestHalfCarrySub8(t *testing.T) {
	cases := []struct {
		a, b uint8
		want bool
	}{
		{0x10, 0x01, true},
		{0x11, 0x01, false},
		{0x00, 0x01, true},
	}
	for _, c := range cases {
		if got := HalfCarrySub8(c.a, c.b); got != c.want {
			t.Errorf("HalfCarrySub8(0x%02X, 0x%02X) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
