package event

import (
	"bytes"
	"testing"

	"catch/internal/mathutil"
)

func TestEventEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ev   GameEvent
	}{
		{"player join", NewPlayerJoin(7)},
		{"player leave", NewPlayerLeave(7)},
		{"player died with killer", NewPlayerDied(3, mathutil.Vec2{X: 1, Y: 2}, 9)},
		{"player died without killer", NewPlayerDied(3, mathutil.Vec2{X: 1, Y: 2}, NoKiller)},
		{"create entity", NewCreateEntity(42, 1, 5)},
		{"remove entity", NewRemoveEntity(42)},
		{"player flip", NewPlayerFlip(1)},
		{"player dash", NewPlayerDash(1)},
		{"player take item", NewPlayerTakeItem(1)},
		{"enemy died", NewEnemyDied(11)},
		{"projectile impact", NewProjectileImpact(11, mathutil.Vec2{X: -3, Y: 4})},
		{"play sound", NewPlaySound(2, mathutil.Vec2{X: 0, Y: 0})},
		{"correct state", NewCorrectState(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.ev.Encode(&buf)
			got, err := DecodeEvent(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if got != tt.ev {
				t.Fatalf("round trip mismatch: got %+v want %+v", got, tt.ev)
			}
		})
	}
}

func TestEncodeEventsPreservesOrder(t *testing.T) {
	events := []GameEvent{
		NewCreateEntity(1, 0, 1),
		NewCreateEntity(2, 0, 1),
		NewRemoveEntity(1),
	}
	var buf bytes.Buffer
	EncodeEvents(events, &buf)

	got, err := DecodeEvents(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i] != events[i] {
			t.Fatalf("event %d mismatch: got %+v want %+v", i, got[i], events[i])
		}
	}
}

func TestEncodeEventsEmpty(t *testing.T) {
	var buf bytes.Buffer
	EncodeEvents(nil, &buf)
	got, err := DecodeEvents(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeEvents failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected 0 events, got %d", len(got))
	}
}
