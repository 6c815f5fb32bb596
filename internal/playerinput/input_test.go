package playerinput

import (
	"bytes"
	"testing"
)

func TestClampDuration(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"negative clamps to zero", -5, 0},
		{"over ceiling clamps to max", 10, MaxDurationS},
		{"in range unchanged", 0.3, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimedPlayerInput{DurationS: tt.in}.Clamp()
			if got.DurationS != tt.want {
				t.Errorf("got %v want %v", got.DurationS, tt.want)
			}
		})
	}
}

func TestClampMasksUnknownBits(t *testing.T) {
	garbage := Bit(0xFFFF)
	got := TimedPlayerInput{Input: garbage}.Clamp()
	if got.Input != knownBits {
		t.Errorf("unknown bits should be masked off: got %016b want %016b", got.Input, knownBits)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := TimedPlayerInput{DurationS: 0.1, Input: Forward | Dash}
	var buf bytes.Buffer
	in.Encode(&buf)
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, in)
	}
}

func TestHeld(t *testing.T) {
	in := TimedPlayerInput{Input: Forward | Dash}
	if !in.Held(Forward) || !in.Held(Dash) {
		t.Fatal("expected Forward and Dash held")
	}
	if in.Held(Back) || in.Held(Flip) {
		t.Fatal("expected Back and Flip not held")
	}
}
