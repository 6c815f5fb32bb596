package movement

import (
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/playerinput"
)

// PlayerMotion bundles the per-player working state ApplyPlayerInput reads
// and mutates alongside the entity's MoverState: timers that live outside
// the replicated component set in their raw form (PlayerState/FullPlayerState
// carry the replicated projections of these) and the current turn rate.
type PlayerMotion struct {
	AngularVel    float32
	DashingTimer  float32 // seconds remaining in current dash, 0 if not dashing
	DashCooldown  float32 // seconds remaining before Dash can be used again
	InvulnTimer   float32
}

// ApplyPlayerInput integrates one TimedPlayerInput sample: decrements timers,
// resolves movement against walls, applies input acceleration, and starts a
// dash if requested and available.
func ApplyPlayerInput(state *MoverState, netID uint32, walls []Wall, pm *PlayerMotion, input playerinput.TimedPlayerInput, dt float32) []event.GameEvent {
	if pm.DashCooldown > 0 {
		pm.DashCooldown -= dt
		if pm.DashCooldown < 0 {
			pm.DashCooldown = 0
		}
	}
	if pm.InvulnTimer > 0 {
		pm.InvulnTimer -= dt
		if pm.InvulnTimer < 0 {
			pm.InvulnTimer = 0
		}
	}
	if pm.DashingTimer > 0 {
		pm.DashingTimer -= dt
		if pm.DashingTimer < 0 {
			pm.DashingTimer = 0
		}
	}

	ctx := &PolicyContext{
		WallFlipRequested: input.Held(playerinput.Flip),
		DashingTimer:      &pm.DashingTimer,
	}
	events := Step(state, netID, walls, dt, PolicyPlayer, ctx)

	forward := mathutil.FromAngle(state.Orientation)
	strafeDir := mathutil.Perp(forward)

	var accel mathutil.Vec2
	if input.Held(playerinput.Forward) {
		accel = mathutil.Add(accel, mathutil.Scale(forward, MoveAccel))
	}
	if input.Held(playerinput.Back) {
		accel = mathutil.Add(accel, mathutil.Scale(forward, -BackAccel))
	}
	if input.Held(playerinput.Strafe) {
		if input.Held(playerinput.Left) {
			accel = mathutil.Add(accel, mathutil.Scale(strafeDir, -StrafeAccel))
		}
		if input.Held(playerinput.Right) {
			accel = mathutil.Add(accel, mathutil.Scale(strafeDir, StrafeAccel))
		}
	}

	turnAccel := float32(0)
	if input.Held(playerinput.Left) && !input.Held(playerinput.Strafe) {
		turnAccel -= TurnAccel
	}
	if input.Held(playerinput.Right) && !input.Held(playerinput.Strafe) {
		turnAccel += TurnAccel
	}
	pm.AngularVel += turnAccel
	pm.AngularVel -= pm.AngularVel * TurnFriction
	state.Orientation += pm.AngularVel * dt

	accel = mathutil.Add(accel, mathutil.Scale(state.Velocity, -MoveFriction))
	state.Velocity = mathutil.Add(state.Velocity, mathutil.Scale(accel, dt))

	if mathutil.Length(state.Velocity) < MinSpeed {
		state.Velocity = mathutil.Vec2{}
	}

	if input.Held(playerinput.Dash) && pm.DashCooldown == 0 {
		pm.DashingTimer = DashDurationS
		pm.DashCooldown = DashCooldownS
		state.Velocity = mathutil.Scale(forward, DashSpeed)
		events = append(events, event.NewPlayerDash(netID))
	}

	return events
}
