package movement

import (
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/netcomp"
)

// Wall is a static line segment a MoverState can collide with.
type Wall struct {
	A, B mathutil.Vec2
}

// MoverState is the subset of an entity's replicated components the movement
// core reads and writes.
type MoverState struct {
	Position    mathutil.Vec2
	Velocity    mathutil.Vec2
	Orientation float32
	Shape       netcomp.Shape
}

// Outcome is the wall-interaction classification for a contact: whether the
// mover slides along the wall, flips its orientation and bounces, or stops
// dead.
type Outcome uint8

const (
	Slide Outcome = iota
	Flip
	Stop
)

// PolicyKind selects a WallInteraction policy as a closed tagged union
// (a trait-object-style dispatch re-expressed as a closed tagged union),
// dispatched by the switch in classify.
type PolicyKind uint8

const (
	PolicyPlayer PolicyKind = iota
	PolicyBouncyEnemy
	PolicyProjectile
)

// PolicyContext carries the policy-specific state classify needs. Only the
// fields relevant to the active PolicyKind are read.
type PolicyContext struct {
	// PolicyPlayer
	WallFlipRequested bool
	DashingTimer      *float32 // non-nil and >0 while dashing
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float32) float32 {
	const twoPi = 2 * 3.14159265
	for a > 3.14159265 {
		a -= twoPi
	}
	for a <= -3.14159265 {
		a += twoPi
	}
	return a
}

func stepback(t, deltaLen float32) float32 {
	if deltaLen == 0 {
		return 0
	}
	v := (t*deltaLen - StepbackUnits) / deltaLen
	if v < 0 {
		return 0
	}
	return v
}

// contact is the earliest wall intersection found against a swept shape.
type contact struct {
	t      float32
	normal mathutil.Vec2
}

// findEarliestContact finds the smallest t in [0,1] at which state's swept
// shape first touches any wall: circles use swept-circle-vs-segment, other
// shapes approximate with a ray.
func findEarliestContact(state *MoverState, walls []Wall, delta mathutil.Vec2) (contact, bool) {
	best := contact{}
	found := false

	for _, w := range walls {
		var t float32
		var ok bool
		if state.Shape.Kind == netcomp.ShapeCircle {
			t, ok = mathutil.SegmentMovingCircleIntersection(w.A, w.B, state.Position, delta, state.Shape.Radius)
		} else {
			t, ok = mathutil.RaySegmentIntersection(state.Position, delta, w.A, w.B)
		}
		if !ok {
			continue
		}
		if !found || t < best.t {
			normal := mathutil.Normalize(mathutil.Perp(mathutil.Sub(w.B, w.A)))
			if mathutil.Dot(normal, delta) > 0 {
				normal = mathutil.Neg(normal)
			}
			best = contact{t: t, normal: normal}
			found = true
		}
	}
	return best, found
}

// classify asks the active policy to classify a contact, mutating state and
// ctx as the policy dictates (e.g. snapping a player's dash timer) and
// returning any events the classification itself generates.
func classify(kind PolicyKind, ctx *PolicyContext, c contact, state *MoverState, netID uint32) (Outcome, []event.GameEvent) {
	switch kind {
	case PolicyPlayer:
		if ctx != nil && ctx.WallFlipRequested {
			return Flip, []event.GameEvent{event.NewPlayerFlip(netID)}
		}
		if ctx != nil && ctx.DashingTimer != nil && *ctx.DashingTimer > 0.9*DashDurationS {
			*ctx.DashingTimer = 0.9 * DashDurationS
		}
		return Slide, nil
	case PolicyBouncyEnemy:
		return Flip, nil
	case PolicyProjectile:
		return Stop, []event.GameEvent{event.NewProjectileImpact(netID, state.Position), event.NewRemoveEntity(netID)}
	default:
		return Slide, nil
	}
}

// applyFlip reflects orientation about the wall normal and bounces velocity
// for the Flip policy case.
func applyFlip(state *MoverState, c contact, delta mathutil.Vec2) {
	const pi = 3.14159265
	nAngle := mathutil.Angle(c.normal)
	state.Orientation = normalizeAngle(pi + 2*nAngle - state.Orientation)

	speed := mathutil.Length(state.Velocity)
	reflected := mathutil.Sub(state.Velocity, mathutil.Scale(c.normal, 2*mathutil.Dot(state.Velocity, c.normal)))
	if l := mathutil.Length(reflected); l > 0 {
		state.Velocity = mathutil.Scale(reflected, speed/l)
	} else {
		state.Velocity = reflected
	}

	t := stepback(c.t, mathutil.Length(delta))
	state.Position = mathutil.Add(state.Position, mathutil.Scale(delta, t))
}

// Step advances state by its velocity over dt, resolving wall contacts
// according to policy, and returns any events generated along the way:
// sweep for the earliest wall contact, resolve it per the given policy, and
// recurse on any remaining movement for up to MaxSlideDepth iterations.
func Step(state *MoverState, netID uint32, walls []Wall, dt float32, policy PolicyKind, ctx *PolicyContext) []event.GameEvent {
	delta := mathutil.Scale(state.Velocity, dt)
	if delta == (mathutil.Vec2{}) {
		return nil
	}
	return stepRecursive(state, netID, walls, delta, policy, ctx, 0)
}

func stepRecursive(state *MoverState, netID uint32, walls []Wall, delta mathutil.Vec2, policy PolicyKind, ctx *PolicyContext, depth int) []event.GameEvent {
	if depth >= MaxSlideDepth {
		state.Position = mathutil.Add(state.Position, delta)
		return nil
	}

	c, found := findEarliestContact(state, walls, delta)
	if !found || c.t > 1 {
		state.Position = mathutil.Add(state.Position, delta)
		return nil
	}

	outcome, events := classify(policy, ctx, c, state, netID)
	switch outcome {
	case Slide:
		// u is the component of delta along the wall normal (blocked); v is
		// the tangential remainder, which we resolve recursively against all
		// walls after stepping back from the contact point.
		u := mathutil.Scale(c.normal, mathutil.Dot(delta, c.normal))
		v := mathutil.Sub(delta, u)

		t := stepback(c.t, mathutil.Length(delta))
		state.Position = mathutil.Add(state.Position, mathutil.Scale(delta, t))

		if v == (mathutil.Vec2{}) {
			return events
		}
		more := stepRecursive(state, netID, walls, v, policy, ctx, depth+1)
		return append(events, more...)

	case Flip:
		applyFlip(state, c, delta)
		return events

	case Stop:
		t := stepback(c.t, mathutil.Length(delta))
		state.Position = mathutil.Add(state.Position, mathutil.Scale(delta, t))
		state.Velocity = mathutil.Vec2{}
		return events
	}
	return events
}
