package clientside

import (
	"time"

	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/netcomp"
	"catch/internal/tickstate"
)

// interpPair is a replicated entity's Position/Orientation as of one tick,
// kept around only long enough to interpolate into the next.
type interpPair struct {
	hasPosition bool
	position    mathutil.Vec2
	hasOrient   bool
	orientation float32
}

// GameState owns the client's replicated World and the two most recent
// ticks' Position/Orientation pairs used to interpolate between them.
// Driven by the caller's render/update loop, one ApplyTick call per
// dequeued Tick.
type GameState struct {
	World      *World
	TickNumber uint32

	prevTime time.Time
	currTime time.Time
	prev     map[uint32]interpPair
	curr     map[uint32]interpPair

	baseline *tickstate.TickState
}

// NewGameState builds an empty GameState over a fresh World.
func NewGameState(capacity int) *GameState {
	return &GameState{
		World: NewWorld(capacity),
		prev:  make(map[uint32]interpPair),
		curr:  make(map[uint32]interpPair),
	}
}

// ApplyTick processes one dequeued Tick: events first (materializing or
// removing entities), a store flush, then component overwrites — matching
// the server's own per-tick write order so client and server component
// tables agree after application. recvTime anchors the interpolation clock.
//
// A delta tick is reconstructed against the last applied TickState (keyframe
// or previously reconstructed delta) before its components are applied; a
// full tick both applies directly and replaces that baseline.
//
// Ticks must be applied in strictly increasing TickNumber order; one at or
// behind the last applied tick is a stale/reordered delivery and is dropped.
func (gs *GameState) ApplyTick(recvTime time.Time, t tickstate.Tick) {
	if t.TickNumber <= gs.TickNumber {
		return
	}

	for _, ev := range t.Events {
		switch ev.Kind {
		case event.KindCreateEntity:
			gs.World.Create(ev.NetID, entitytype.ID(ev.TypeID))
		case event.KindRemoveEntity:
			gs.World.Remove(ev.NetID)
		}
	}

	gs.World.Store.Flush()

	state := t.State
	if !t.Full {
		if gs.baseline == nil {
			return
		}
		reconstructed, err := tickstate.Apply(gs.baseline, t.Delta)
		if err != nil {
			return
		}
		state = reconstructed
	}
	baseline := state
	gs.baseline = &baseline

	forced := make(map[uint32]map[uint8]bool, len(state.Forced))
	for _, f := range state.Forced {
		if forced[f.NetID] == nil {
			forced[f.NetID] = make(map[uint8]bool)
		}
		forced[f.NetID][uint8(f.Type)] = true
	}

	next := make(map[uint32]interpPair, len(state.Entities))
	for _, ec := range state.Entities {
		h, ok := gs.World.HandleByNetID(ec.NetID)
		if !ok {
			continue
		}
		gs.World.ApplyComponents(h, ec.Components)

		pair := interpPair{}
		if ec.Components.Position != nil {
			pair.hasPosition = !forced[ec.NetID][uint8(netcomp.CTPosition)]
			pair.position = ec.Components.Position.P
		}
		if ec.Components.Orientation != nil {
			pair.hasOrient = !forced[ec.NetID][uint8(netcomp.CTOrientation)]
			pair.orientation = ec.Components.Orientation.Angle
		}
		next[ec.NetID] = pair
	}

	gs.prev = gs.curr
	gs.prevTime = gs.currTime
	gs.curr = next
	gs.currTime = recvTime
	gs.TickNumber = t.TickNumber
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Interpolated returns netID's rendered Position/Orientation, blended
// between the previous and current tick by the wall-clock fraction elapsed
// since the current tick arrived. Falls back to the current tick's raw
// value when no prior pair exists (new entity, or the field was forced).
func (gs *GameState) Interpolated(netID uint32, now time.Time) (mathutil.Vec2, float32, bool) {
	cur, ok := gs.curr[netID]
	if !ok {
		return mathutil.Vec2{}, 0, false
	}
	prev, havePrev := gs.prev[netID]
	if !havePrev || gs.currTime.Equal(gs.prevTime) || gs.currTime.Before(gs.prevTime) {
		return cur.position, cur.orientation, true
	}

	span := gs.currTime.Sub(gs.prevTime).Seconds()
	elapsed := now.Sub(gs.currTime).Seconds()
	t := float32(0)
	if span > 0 {
		t = float32(elapsed / span)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := cur.position
	if cur.hasPosition && prev.hasPosition {
		pos = mathutil.Vec2{X: lerp(prev.position.X, cur.position.X, t), Y: lerp(prev.position.Y, cur.position.Y, t)}
	}
	angle := cur.orientation
	if cur.hasOrient && prev.hasOrient {
		angle = lerp(prev.orientation, cur.orientation, t)
	}
	return pos, angle, true
}

// PredictLocalPlayer is a documented no-op: client-side prediction of the
// local player is out of scope for this core. Reserved for a future
// extension that would feed local input into the movement core between
// server ticks and reconcile on CorrectState.
func (gs *GameState) PredictLocalPlayer(localNetID uint32, dt float32) {
}
