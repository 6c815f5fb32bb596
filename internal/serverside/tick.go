package serverside

import (
	"bytes"
	"math/rand"

	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/movement"
	"catch/internal/netcomp"
	"catch/internal/tickstate"
	"catch/internal/transport"
)

// tick advances the simulation by one fixed step: world init on the first
// tick, respawn countdowns, queued input, AI and physics, broad-phase
// interactions, then a per-client snapshot send.
func (s *Server) tick() {
	s.tickNumber++

	if s.tickNumber == 1 {
		s.initWorld()
	}

	var tickEvents []event.GameEvent

	for _, p := range s.players {
		if p.State != Normal {
			continue
		}
		if p.IsNew {
			s.emitCreateEntityCatchup(p)
		}
		if !p.ControlledEntity.Valid() {
			p.RespawnTime -= float64(s.dt)
			if p.RespawnTime <= 0 {
				p.RespawnTime = 0
				s.spawnPlayerEntity(p)
				tickEvents = append(tickEvents, event.NewCreateEntity(s.world.NetID(p.ControlledEntity), uint16(entitytype.Player), p.ID))
			}
		}
	}

	s.world.Store.Flush()

	for id, p := range s.players {
		if p.State != Normal || !p.ControlledEntity.Valid() || p.RespawnTime > 0 {
			continue
		}
		h := p.ControlledEntity
		if !s.world.Store.Alive(h) {
			continue
		}
		if p.Invulnerable > 0 {
			p.Invulnerable -= float64(s.dt)
			if p.Invulnerable < 0 {
				p.Invulnerable = 0
			}
		}

		pos, _ := s.world.Position.Get(h)
		orient, _ := s.world.Orientation.Get(h)
		vel, _ := s.world.LinearVelocity.Get(h)
		shape, _ := s.world.Shape.Get(h)
		state := &movement.MoverState{Position: pos.P, Velocity: vel.V, Orientation: orient.Angle, Shape: shape}

		input := s.pendingInput[id] // zero value if none queued yet
		delete(s.pendingInput, id)
		pm := s.motion[id]
		if pm == nil {
			pm = &movement.PlayerMotion{}
			s.motion[id] = pm
		}
		ev := movement.ApplyPlayerInput(state, s.world.NetID(h), s.walls, pm, input, s.dt)
		tickEvents = append(tickEvents, ev...)

		s.world.Position.Insert(h, netcomp.Position{P: state.Position})
		s.world.Orientation.Insert(h, netcomp.Orientation{Angle: state.Orientation})
		s.world.LinearVelocity.Insert(h, netcomp.LinearVelocity{V: state.Velocity})
		s.world.PlayerState.Mutate(h, func(ps *netcomp.PlayerState) {
			ps.DashingTimer = pm.DashingTimer
			ps.InvulnerabilityTimer = float32(p.Invulnerable)
		})
		s.world.FullPlayerState.Mutate(h, func(fps *netcomp.FullPlayerState) {
			fps.DashCooldown = pm.DashCooldown
		})
	}

	tickEvents = append(tickEvents, s.runEnemyAI(s.dt)...)
	s.runRotations(s.dt)
	tickEvents = append(tickEvents, s.runProjectiles(s.dt)...)
	tickEvents = append(tickEvents, s.runInteractions()...)

	for _, ev := range tickEvents {
		if ev.Kind == event.KindPlayerDied {
			if p := s.players[ev.Player]; p != nil {
				p.RespawnTime = s.cfg.Sim.RespawnDelayS
				if p.ControlledEntity.Valid() && s.world.Store.Alive(p.ControlledEntity) {
					tickEvents = append(tickEvents, event.NewRemoveEntity(s.world.NetID(p.ControlledEntity)))
					s.world.Despawn(p.ControlledEntity)
				}
				p.ControlledEntity = ecs.Nil
			}
		}
	}

	for id := range s.players {
		s.eventBuckets[id] = append(s.eventBuckets[id], tickEvents...)
	}

	s.refreshStats()
	s.sendSnapshots()

	for id := range s.eventBuckets {
		delete(s.eventBuckets, id)
	}
}

// initWorld runs once, at tick_number == 1: spawns the map's wall layer as
// WallWood entities and bouncyEnemyCount bouncy enemies at random spawn
// rectangles.
func (s *Server) initWorld() {
	for _, seg := range s.gameMap.BlockingSegments() {
		h := s.world.Spawn(entitytype.WallWood, 0)
		s.world.WallPosition.Insert(h, netcomp.WallPosition{PosA: seg.A, PosB: seg.B})
	}

	rects := s.gameMap.SpawnRects()
	for i := 0; i < bouncyEnemyCount; i++ {
		var center mathutil.Vec2
		if len(rects) > 0 {
			center = rects[rand.Intn(len(rects))].Center()
		}
		h := s.world.Spawn(entitytype.BouncyEnemy, 0)
		s.world.Position.Insert(h, netcomp.Position{P: center})
		angle := float32(rand.Float64() * 2 * 3.14159265)
		s.world.Orientation.Insert(h, netcomp.Orientation{Angle: angle})
		s.world.LinearVelocity.Insert(h, netcomp.LinearVelocity{V: mathutil.Vec2{}})
		s.world.Shape.Insert(h, netcomp.Shape{Kind: netcomp.ShapeCircle, Radius: 16})
	}
}

// sendSnapshots builds and sends each connected player's per-tick view of the
// world: every live entity's components, filtered to what that observer may
// see, plus the events collected for them this tick.
func (s *Server) sendSnapshots() {
	for id, p := range s.players {
		if p.State != Normal {
			continue
		}

		var state tickstate.TickState
		s.world.Each(func(h ecs.Handle) {
			typeID := s.world.TypeOf(h)
			def, ok := entitytype.Registry[typeID]
			if !ok {
				return
			}
			full := s.world.NetComponentsFor(h)
			isOwner := s.world.OwnerOf(h) == id
			nc := FilterForObserver(full, def, isOwner)
			state.Entities = append(state.Entities, tickstate.EntityComponents{NetID: s.world.NetID(h), Components: nc})
		})
		state.Sort()

		baseline, haveBaseline := s.lastSent[id]
		sendFull := !haveBaseline || s.tickNumber%keyframeIntervalTicks == 0

		var t tickstate.Tick
		if sendFull {
			t = tickstate.Tick{TickNumber: s.tickNumber, Events: s.eventBuckets[id], Full: true, State: state}
		} else {
			t = tickstate.Tick{TickNumber: s.tickNumber, Events: s.eventBuckets[id], Full: false, Delta: tickstate.DeltaEncode(&baseline, &state)}
		}
		s.lastSent[id] = state

		var buf bytes.Buffer
		t.Encode(&buf)
		s.transport.Send(p.Peer, transport.ChannelTicks, buf.Bytes())
	}
}
