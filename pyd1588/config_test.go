package pyd1588

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	cfgs := []Config{
		DefaultConfig,
		{CountMode: 1, HPFCutoff: 1, SignalSource: 3, OperatingMode: 2, WindowTime: 3, PulseCounter: 3, BlindTime: 15, Threshold: 255},
		{Threshold: 200, BlindTime: 3, PulseCounter: 2, WindowTime: 1, OperatingMode: OperatingModeForcedReadout, SignalSource: SignalSourceBPF},
	}
	for _, c := range cfgs {
		w := Pack(c)
		if w&^wordMask != 0 {
			t.Fatalf("Pack(%+v) set bits outside the 25-bit word: %#x", c, w)
		}
		got := Unpack(w)
		if got != c {
			t.Fatalf("round trip mismatch: packed %+v, unpacked %+v (word %#x)", c, got, w)
		}
	}
}

func TestPackFixesReservedFields(t *testing.T) {
	w := Pack(Config{})
	// reserved_A (bit 1) must be 0, reserved_B (bits 3-4) must be 2.
	if (w>>offReservedA)&0x1 != fixedReservedA {
		t.Errorf("reserved_A not fixed to %d", fixedReservedA)
	}
	if (w>>offReservedB)&0x3 != fixedReservedB {
		t.Errorf("reserved_B not fixed to %d", fixedReservedB)
	}
}

func TestDefaultConfigThreshold(t *testing.T) {
	w := Pack(DefaultConfig)
	got := Unpack(w)
	if got.Threshold != 20 {
		t.Errorf("default threshold = %d, want 20", got.Threshold)
	}
}
