package clientside

import (
	"testing"
	"time"

	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/netcomp"
	"catch/internal/tickstate"
)

func tickWithPosition(tickNum uint32, netID uint32, created bool, pos mathutil.Vec2) tickstate.Tick {
	var events []event.GameEvent
	if created {
		events = append(events, event.NewCreateEntity(netID, uint16(entitytype.Player), 0))
	}
	return tickstate.Tick{
		TickNumber: tickNum,
		Events:     events,
		Full:       true,
		State: tickstate.TickState{
			Entities: []tickstate.EntityComponents{
				{NetID: netID, Components: netcomp.NetComponents{Position: &netcomp.Position{P: pos}}},
			},
		},
	}
}

func TestApplyTickCreatesEntity(t *testing.T) {
	gs := NewGameState(16)
	base := time.Now()
	gs.ApplyTick(base, tickWithPosition(1, 7, true, mathutil.Vec2{X: 1, Y: 2}))

	h, ok := gs.World.HandleByNetID(7)
	if !ok {
		t.Fatalf("expected entity 7 to exist after CreateEntity")
	}
	pos, ok := gs.World.Position.Get(h)
	if !ok || pos.P != (mathutil.Vec2{X: 1, Y: 2}) {
		t.Fatalf("Position = %v, %v, want {1 2}, true", pos, ok)
	}
}

func TestApplyTickRemovesEntity(t *testing.T) {
	gs := NewGameState(16)
	base := time.Now()
	gs.ApplyTick(base, tickWithPosition(1, 7, true, mathutil.Vec2{}))

	removeTick := tickstate.Tick{
		TickNumber: 2,
		Events:     []event.GameEvent{event.NewRemoveEntity(7)},
		Full:       true,
	}
	gs.ApplyTick(base.Add(50*time.Millisecond), removeTick)

	if _, ok := gs.World.HandleByNetID(7); ok {
		t.Fatalf("expected entity 7 to be gone after RemoveEntity")
	}
}

func TestInterpolatedBlendsBetweenTicks(t *testing.T) {
	gs := NewGameState(16)
	base := time.Now()

	gs.ApplyTick(base, tickWithPosition(1, 7, true, mathutil.Vec2{X: 0, Y: 0}))
	gs.ApplyTick(base.Add(100*time.Millisecond), tickWithPosition(2, 7, false, mathutil.Vec2{X: 10, Y: 0}))

	pos, _, ok := gs.Interpolated(7, base.Add(150*time.Millisecond))
	if !ok {
		t.Fatalf("expected interpolation result for known entity")
	}
	if pos.X < 4 || pos.X > 6 {
		t.Fatalf("pos.X = %v, want roughly 5 (halfway)", pos.X)
	}
}

func TestInterpolatedUnknownEntity(t *testing.T) {
	gs := NewGameState(16)
	if _, _, ok := gs.Interpolated(99, time.Now()); ok {
		t.Fatalf("expected ok=false for an entity never seen")
	}
}

func TestApplyTickReconstructsDeltaAgainstBaseline(t *testing.T) {
	gs := NewGameState(16)
	base := time.Now()

	full := tickWithPosition(1, 7, true, mathutil.Vec2{X: 1, Y: 2})
	gs.ApplyTick(base, full)

	s1 := tickstate.TickState{Entities: []tickstate.EntityComponents{
		{NetID: 7, Components: netcomp.NetComponents{Position: &netcomp.Position{P: mathutil.Vec2{X: 1, Y: 2}}}},
	}}
	s2 := tickstate.TickState{Entities: []tickstate.EntityComponents{
		{NetID: 7, Components: netcomp.NetComponents{Position: &netcomp.Position{P: mathutil.Vec2{X: 9, Y: 9}}}},
	}}
	delta := tickstate.DeltaEncode(&s1, &s2)

	gs.ApplyTick(base.Add(16*time.Millisecond), tickstate.Tick{TickNumber: 2, Full: false, Delta: delta})

	h, ok := gs.World.HandleByNetID(7)
	if !ok {
		t.Fatalf("expected entity 7 to still exist after a delta tick")
	}
	pos, ok := gs.World.Position.Get(h)
	if !ok || pos.P != (mathutil.Vec2{X: 9, Y: 9}) {
		t.Fatalf("Position = %v, %v, want {9 9}, true", pos, ok)
	}
}

func TestApplyTickDropsStaleTick(t *testing.T) {
	gs := NewGameState(16)
	base := time.Now()

	gs.ApplyTick(base, tickWithPosition(2, 7, true, mathutil.Vec2{X: 1, Y: 2}))
	gs.ApplyTick(base.Add(16*time.Millisecond), tickWithPosition(1, 7, true, mathutil.Vec2{X: 99, Y: 99}))

	if gs.TickNumber != 2 {
		t.Fatalf("TickNumber = %d, want 2 (stale tick 1 must be dropped)", gs.TickNumber)
	}
	h, ok := gs.World.HandleByNetID(7)
	if !ok {
		t.Fatalf("expected entity 7 to exist")
	}
	pos, ok := gs.World.Position.Get(h)
	if !ok || pos.P != (mathutil.Vec2{X: 1, Y: 2}) {
		t.Fatalf("Position = %v, %v, want {1 2} unchanged by the stale tick", pos, ok)
	}
}

func TestApplyTickDropsDeltaWithNoBaseline(t *testing.T) {
	gs := NewGameState(16)

	s1 := tickstate.TickState{Entities: []tickstate.EntityComponents{
		{NetID: 7, Components: netcomp.NetComponents{Position: &netcomp.Position{P: mathutil.Vec2{}}}},
	}}
	s2 := tickstate.TickState{Entities: []tickstate.EntityComponents{
		{NetID: 7, Components: netcomp.NetComponents{Position: &netcomp.Position{P: mathutil.Vec2{X: 5, Y: 5}}}},
	}}
	delta := tickstate.DeltaEncode(&s1, &s2)

	gs.ApplyTick(time.Now(), tickstate.Tick{TickNumber: 1, Full: false, Delta: delta})

	if _, ok := gs.World.HandleByNetID(7); ok {
		t.Fatalf("a delta tick with no prior baseline must not create entities")
	}
}
