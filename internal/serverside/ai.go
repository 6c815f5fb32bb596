package serverside

import (
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/movement"
	"catch/internal/netcomp"
)

// enemyMoveAccel and enemyDamping are the bouncy-enemy integration
// constants.
const (
	enemyMoveAccel = 400.0
	enemyDamping   = -4.0
)

// runEnemyAI integrates every BouncyEnemy's velocity toward its facing
// direction with damping, then steps it through the wall-flip policy.
func (s *Server) runEnemyAI(dt float32) []event.GameEvent {
	var events []event.GameEvent
	w := s.world
	w.Each(func(h ecs.Handle) {
		if w.TypeOf(h) != entitytype.BouncyEnemy {
			return
		}
		pos, ok := w.Position.Get(h)
		if !ok {
			return
		}
		orient, _ := w.Orientation.Get(h)
		vel, _ := w.LinearVelocity.Get(h)
		shape, _ := w.Shape.Get(h)

		forward := mathutil.FromAngle(orient.Angle)
		accel := mathutil.Add(mathutil.Scale(forward, enemyMoveAccel), mathutil.Scale(vel.V, enemyDamping))
		vel.V = mathutil.Add(vel.V, mathutil.Scale(accel, dt))

		state := &movement.MoverState{Position: pos.P, Velocity: vel.V, Orientation: orient.Angle, Shape: shape}
		ev := movement.Step(state, w.NetID(h), s.walls, dt, movement.PolicyBouncyEnemy, &movement.PolicyContext{})
		events = append(events, ev...)

		w.Position.Insert(h, netcomp.Position{P: state.Position})
		w.Orientation.Insert(h, netcomp.Orientation{Angle: state.Orientation})
		w.LinearVelocity.Insert(h, netcomp.LinearVelocity{V: state.Velocity})
	})
	return events
}

// runRotations advances the Orientation of every Rotate-tagged entity by
// angular_velocity*dt.
func (s *Server) runRotations(dt float32) {
	w := s.world
	w.Each(func(h ecs.Handle) {
		if !w.HasRotate(h) {
			return
		}
		av, ok := w.AngularVelocity.Get(h)
		if !ok {
			return
		}
		w.Orientation.Mutate(h, func(o *netcomp.Orientation) {
			o.Angle += av.V * dt
		})
	})
}

// runProjectiles advances every projectile entity and resolves wall contact
// via the Stop policy, which self-reports impact/removal through
// movement.PolicyProjectile's Stop outcome.
func (s *Server) runProjectiles(dt float32) []event.GameEvent {
	var events []event.GameEvent
	var toRemove []ecs.Handle
	w := s.world
	w.Each(func(h ecs.Handle) {
		if !isProjectileType(w.TypeOf(h)) {
			return
		}
		pos, ok := w.Position.Get(h)
		if !ok {
			return
		}
		orient, _ := w.Orientation.Get(h)
		vel, _ := w.LinearVelocity.Get(h)
		shape, _ := w.Shape.Get(h)

		state := &movement.MoverState{Position: pos.P, Velocity: vel.V, Orientation: orient.Angle, Shape: shape}
		ev := movement.Step(state, w.NetID(h), s.walls, dt, movement.PolicyProjectile, &movement.PolicyContext{})
		events = append(events, ev...)

		for _, e := range ev {
			if e.Kind == event.KindRemoveEntity {
				toRemove = append(toRemove, h)
			}
		}

		w.Position.Insert(h, netcomp.Position{P: state.Position})
		w.Orientation.Insert(h, netcomp.Orientation{Angle: state.Orientation})
		w.LinearVelocity.Insert(h, netcomp.LinearVelocity{V: state.Velocity})
	})
	for _, h := range toRemove {
		w.Despawn(h)
	}
	return events
}
