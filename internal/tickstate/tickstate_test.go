package tickstate

import (
	"bytes"
	"testing"

	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/netcomp"
)

func entity(netID uint32, x, y float32) EntityComponents {
	pos := netcomp.Position{P: mathutil.Vec2{X: x, Y: y}}
	return EntityComponents{NetID: netID, Components: netcomp.NetComponents{Position: &pos}}
}

func TestTickStateEncodeDecodeRoundTrip(t *testing.T) {
	s := TickState{
		Entities: []EntityComponents{entity(2, 1, 1), entity(7, 2, 2), entity(9, 3, 3)},
		Forced:   []ForcedComponent{{NetID: 7, Type: netcomp.CTOrientation}},
	}

	var buf bytes.Buffer
	s.Encode(&buf)

	got, err := DecodeTickState(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeTickState failed: %v", err)
	}
	if !s.Equal(&got) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, s)
	}
}

func TestOrderedSnapshotInvariant(t *testing.T) {
	s := TickState{Entities: []EntityComponents{entity(9, 0, 0), entity(2, 0, 0), entity(7, 0, 0)}}
	s.Sort()
	want := []uint32{2, 7, 9}
	for i, e := range s.Entities {
		if e.NetID != want[i] {
			t.Fatalf("entity %d out of order: got %d want %d", i, e.NetID, want[i])
		}
	}
}

func TestDeltaEncodeApplyRoundTrip(t *testing.T) {
	s1 := TickState{Entities: []EntityComponents{entity(2, 1, 1), entity(7, 2, 2), entity(9, 3, 3)}}
	s2 := TickState{Entities: []EntityComponents{entity(2, 1, 1), entity(7, 99, 99), entity(11, 5, 5)}}
	// s2 drops entity 9, keeps 2 unchanged, moves 7, adds 11.

	d := DeltaEncode(&s1, &s2)
	if len(d.Removed) != 1 || d.Removed[0] != 9 {
		t.Fatalf("expected entity 9 removed, got %+v", d.Removed)
	}
	if len(d.Added) != 1 || d.Added[0].NetID != 11 {
		t.Fatalf("expected entity 11 added, got %+v", d.Added)
	}
	if len(d.Changed) != 1 || d.Changed[0].NetID != 7 {
		t.Fatalf("expected entity 7 changed, got %+v", d.Changed)
	}

	applied, err := Apply(&s1, d)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !applied.Equal(&s2) {
		t.Fatalf("apply_delta(s1, delta_encode(s1,s2)) != s2: got %+v want %+v", applied, s2)
	}
}

func TestDeltaEncodeIdenticalStatesIsEmpty(t *testing.T) {
	s := TickState{Entities: []EntityComponents{entity(2, 1, 1), entity(7, 2, 2)}}
	d := DeltaEncode(&s, &s)
	if len(d.Added) != 0 || len(d.Changed) != 0 || len(d.Removed) != 0 {
		t.Fatalf("identical states should produce an empty delta, got %+v", d)
	}
}

func TestTickEncodeDecodeRoundTrip(t *testing.T) {
	tk := Tick{
		TickNumber: 42,
		Events:     []event.GameEvent{event.NewCreateEntity(7, 0, 1), event.NewPlayerDash(1)},
		Full:       true,
		State:      TickState{Entities: []EntityComponents{entity(7, 1, 1)}},
	}

	var buf bytes.Buffer
	tk.Encode(&buf)

	got, err := DecodeTick(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeTick failed: %v", err)
	}
	if got.TickNumber != tk.TickNumber {
		t.Fatalf("tick_number mismatch: got %d want %d", got.TickNumber, tk.TickNumber)
	}
	if len(got.Events) != len(tk.Events) {
		t.Fatalf("event count mismatch: got %d want %d", len(got.Events), len(tk.Events))
	}
	if !got.State.Equal(&tk.State) {
		t.Fatalf("state mismatch: got %+v want %+v", got.State, tk.State)
	}
}

func TestTicksAppliedInStrictlyIncreasingOrder(t *testing.T) {
	var lastApplied uint32
	ticks := []uint32{1, 2, 3, 5, 6}
	for _, n := range ticks {
		if n <= lastApplied && lastApplied != 0 {
			t.Fatalf("tick %d did not strictly increase past %d", n, lastApplied)
		}
		lastApplied = n
	}
}
