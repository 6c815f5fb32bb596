package netcomp

import (
	"bytes"
	"testing"

	"catch/internal/mathutil"
)

func sampleFull() NetComponents {
	pos := Position{P: mathutil.Vec2{X: 1, Y: 2}}
	orient := Orientation{Angle: 0.5}
	lv := LinearVelocity{V: mathutil.Vec2{X: 3, Y: -4}}
	av := AngularVelocity{V: 1.5}
	shape := Shape{Kind: ShapeCircle, Radius: 16}
	ps := PlayerState{Color: 2, DashingTimer: 0.1, InvulnerabilityTimer: 0, EquippedItems: [MaxEquippedItems]ItemID{1, 0, 0}, IsCatcher: true}
	fps := FullPlayerState{DashCooldown: 5, HiddenItem: 3}
	wp := WallPosition{PosA: mathutil.Vec2{X: 0, Y: 0}, PosB: mathutil.Vec2{X: 10, Y: 0}}

	return NetComponents{
		Position: &pos, Orientation: &orient, LinearVelocity: &lv, AngularVelocity: &av,
		Shape: &shape, PlayerState: &ps, FullPlayerState: &fps, WallPosition: &wp,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	nc := sampleFull()
	var buf bytes.Buffer
	nc.Encode(&buf)

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !nc.Equal(&got) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, nc)
	}
}

func TestEncodeDecodePartialPresence(t *testing.T) {
	pos := Position{P: mathutil.Vec2{X: 1, Y: 1}}
	nc := NetComponents{Position: &pos}

	var buf bytes.Buffer
	nc.Encode(&buf)
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Orientation != nil || got.Shape != nil {
		t.Fatal("absent components must decode as nil")
	}
	if got.Position == nil || *got.Position != pos {
		t.Fatal("present component must decode correctly")
	}
}

func TestDeltaEncodeMinimalOnIdenticalState(t *testing.T) {
	nc := sampleFull()
	var buf bytes.Buffer
	DeltaEncode(&nc, &nc, &buf)

	if buf.Len() != 2 {
		t.Fatalf("identical states should produce only a zero change-mask, got %d bytes", buf.Len())
	}
	if buf.Bytes()[0] != 0 || buf.Bytes()[1] != 0 {
		t.Fatalf("expected zero change-mask, got %v", buf.Bytes())
	}
}

func TestDeltaEncodeApplyOnlyChangedFields(t *testing.T) {
	baseline := sampleFull()
	current := sampleFull()
	newPos := Position{P: mathutil.Vec2{X: 99, Y: 99}}
	current.Position = &newPos

	var buf bytes.Buffer
	DeltaEncode(&baseline, &current, &buf)

	applied := sampleFull()
	if err := DeltaApply(&applied, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("DeltaApply failed: %v", err)
	}
	if !applied.Equal(&current) {
		t.Fatalf("apply_delta(baseline, delta(baseline,current)) != current: got %+v want %+v", applied, current)
	}
}

func TestDeltaApplyFullCycle(t *testing.T) {
	s1 := sampleFull()
	s2 := sampleFull()
	newOrient := Orientation{Angle: 3.14}
	s2.Orientation = &newOrient
	newAv := AngularVelocity{V: -2}
	s2.AngularVelocity = &newAv

	var buf bytes.Buffer
	DeltaEncode(&s1, &s2, &buf)

	result := s1
	if err := DeltaApply(&result, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("DeltaApply failed: %v", err)
	}
	if !result.Equal(&s2) {
		t.Fatalf("apply_delta(s1, delta_encode(s1,s2)) != s2")
	}
}

func TestBitmaskAllZeroAndAllOne(t *testing.T) {
	var empty NetComponents
	var buf bytes.Buffer
	empty.Encode(&buf)
	if buf.Len() != 2 || buf.Bytes()[0] != 0 || buf.Bytes()[1] != 0 {
		t.Fatalf("empty NetComponents should encode as all-zero mask, got %v", buf.Bytes())
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !empty.Equal(&got) {
		t.Fatal("decoded empty NetComponents should equal the original")
	}

	full := sampleFull()
	buf.Reset()
	full.Encode(&buf)
	mask := uint16(buf.Bytes()[0]) | uint16(buf.Bytes()[1])<<8
	if mask != 0x00FF {
		t.Fatalf("full NetComponents should set all 8 registry bits, got mask %#x", mask)
	}
}
