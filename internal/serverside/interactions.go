package serverside

import (
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mathutil"
	"catch/internal/netcomp"
)

// enemyBounceVelocity is the unconditional velocity boost applied to both
// enemies on an enemy-vs-enemy hit. Preserved verbatim (no clamp, no
// separation check) rather than guessing at intent behind this behavior.
const enemyBounceVelocity = 500

func isProjectileType(id entitytype.ID) bool {
	return id == entitytype.Bullet || id == entitytype.Frag || id == entitytype.Shrapnel
}

// effectiveRadius approximates a Shape as a circle for broad/narrow-phase
// overlap testing: circle-vs-circle by distance, other shapes approximated.
func effectiveRadius(s netcomp.Shape) float32 {
	switch s.Kind {
	case netcomp.ShapeCircle:
		return s.Radius
	case netcomp.ShapeSquare:
		return s.SquareSize * 0.7071068 // half-diagonal of the bounding square
	case netcomp.ShapeRect:
		w, h := s.RectW, s.RectH
		return mathutil.Length(mathutil.Vec2{X: w / 2, Y: h / 2})
	default:
		return 0
	}
}

func circlesOverlap(pa, pb mathutil.Vec2, ra, rb float32) bool {
	d := mathutil.Sub(pa, pb)
	sumR := ra + rb
	return mathutil.SquareLength(d) <= sumR*sumR
}

// pairKey produces an order-independent key for deduplicating unordered
// entity pairs visited twice by the grid's symmetric neighbor queries.
func pairKey(a, b ecs.Handle) (ecs.Handle, ecs.Handle) {
	if a.Index < b.Index || (a.Index == b.Index && a.Generation < b.Generation) {
		return a, b
	}
	return b, a
}

// runInteractions runs broad-phase via the spatial grid, then a closed
// dispatch table of (type_a, type_b, interaction) triples over
// every candidate pair whose shapes overlap. Produces deferred events
// (drained at step 11) rather than mutating Player records directly, since
// only the tick loop knows how to resolve NetID back to a Player.
func (s *Server) runInteractions() []event.GameEvent {
	grid := s.spatialGrid
	grid.Clear()

	type candidate struct {
		h        ecs.Handle
		pos      mathutil.Vec2
		radius   float32
		kind     entitytype.ID
	}
	var all []candidate
	s.world.Each(func(h ecs.Handle) {
		pos, ok := s.world.Position.Get(h)
		if !ok {
			return
		}
		shape, ok := s.world.Shape.Get(h)
		if !ok {
			return
		}
		c := candidate{h: h, pos: pos.P, radius: effectiveRadius(shape), kind: s.world.TypeOf(h)}
		all = append(all, c)
		grid.Insert(h, pos.P)
	})

	byHandle := make(map[ecs.Handle]candidate, len(all))
	for _, c := range all {
		byHandle[c.h] = c
	}

	var events []event.GameEvent
	var despawn []ecs.Handle
	seen := make(map[[2]ecs.Handle]bool)

	for _, a := range all {
		neighbors := grid.QueryRadius(a.pos, a.radius+64)
		for _, bh := range neighbors {
			if bh == a.h {
				continue
			}
			b, ok := byHandle[bh]
			if !ok {
				continue
			}
			k1, k2 := pairKey(a.h, b.h)
			key := [2]ecs.Handle{k1, k2}
			if seen[key] {
				continue
			}
			seen[key] = true

			if !circlesOverlap(a.pos, b.pos, a.radius, b.radius) {
				continue
			}

			ev, des := s.resolveInteraction(a.h, a.kind, b.h, b.kind)
			events = append(events, ev...)
			despawn = append(despawn, des...)
		}
	}

	for _, h := range despawn {
		if s.world.Store.Alive(h) {
			events = append(events, event.NewRemoveEntity(s.world.NetID(h)))
			s.world.Despawn(h)
		}
	}

	return events
}

// resolveInteraction looks up the unordered (kindA, kindB) pair in the
// dispatch table and runs it, normalizing argument order so each handler
// only has to handle one direction.
func (s *Server) resolveInteraction(a ecs.Handle, kindA entitytype.ID, b ecs.Handle, kindB entitytype.ID) (events []event.GameEvent, despawn []ecs.Handle) {
	switch {
	case kindA == entitytype.Player && kindB == entitytype.BouncyEnemy:
		return s.playerVsEnemy(a), nil
	case kindB == entitytype.Player && kindA == entitytype.BouncyEnemy:
		return s.playerVsEnemy(b), nil

	case kindA == entitytype.BouncyEnemy && kindB == entitytype.BouncyEnemy:
		s.bounceEnemies(a, b)
		return nil, nil

	case kindA == entitytype.Player && kindB == entitytype.Item:
		return s.playerVsItem(a, b)
	case kindB == entitytype.Player && kindA == entitytype.Item:
		return s.playerVsItem(b, a)

	case isProjectileType(kindA) && kindB == entitytype.BouncyEnemy:
		return s.projectileVsEnemy(a, b)
	case isProjectileType(kindB) && kindA == entitytype.BouncyEnemy:
		return s.projectileVsEnemy(b, a)

	case isProjectileType(kindA) && kindB == entitytype.Player:
		return s.projectileVsPlayer(a, b)
	case isProjectileType(kindB) && kindA == entitytype.Player:
		return s.projectileVsPlayer(b, a)

	case kindA == entitytype.Player && kindB == entitytype.Player:
		return s.playerVsPlayer(a, b)
	}

	return nil, nil
}

func (s *Server) playerVsEnemy(playerH ecs.Handle) []event.GameEvent {
	pos, _ := s.world.Position.Get(playerH)
	return []event.GameEvent{event.NewPlayerDied(s.world.OwnerOf(playerH), pos.P, event.NoKiller)}
}

func (s *Server) bounceEnemies(a, b ecs.Handle) {
	w := s.world
	oa, oka := w.Orientation.Get(a)
	ob, okb := w.Orientation.Get(b)
	if oka {
		w.LinearVelocity.Mutate(a, func(v *netcomp.LinearVelocity) {
			v.V = mathutil.Add(v.V, mathutil.Scale(mathutil.FromAngle(oa.Angle), enemyBounceVelocity))
		})
	}
	if okb {
		w.LinearVelocity.Mutate(b, func(v *netcomp.LinearVelocity) {
			v.V = mathutil.Add(v.V, mathutil.Scale(mathutil.FromAngle(ob.Angle), enemyBounceVelocity))
		})
	}
	flipAngle := func(h ecs.Handle) {
		w.Orientation.Mutate(h, func(o *netcomp.Orientation) { o.Angle += 3.14159265 })
	}
	flipAngle(a)
	flipAngle(b)
}

func (s *Server) playerVsItem(playerH, itemH ecs.Handle) ([]event.GameEvent, []ecs.Handle) {
	w := s.world
	var item netcomp.ItemID = 1 // placeholder item identity until item variety is modeled further
	w.FullPlayerState.Mutate(playerH, func(fps *netcomp.FullPlayerState) {
		fps.HiddenItem = item
	})
	return []event.GameEvent{event.NewPlayerTakeItem(w.OwnerOf(playerH))}, []ecs.Handle{itemH}
}

func (s *Server) projectileVsEnemy(projH, enemyH ecs.Handle) ([]event.GameEvent, []ecs.Handle) {
	w := s.world
	pos, _ := w.Position.Get(projH)
	return []event.GameEvent{
		event.NewEnemyDied(w.NetID(enemyH)),
		event.NewProjectileImpact(w.NetID(projH), pos.P),
	}, []ecs.Handle{projH, enemyH}
}

func (s *Server) projectileVsPlayer(projH, playerH ecs.Handle) ([]event.GameEvent, []ecs.Handle) {
	w := s.world
	if w.OwnerOf(projH) == w.OwnerOf(playerH) {
		return nil, nil // no friendly fire
	}
	pos, _ := w.Position.Get(playerH)
	return []event.GameEvent{
		event.NewPlayerDied(w.OwnerOf(playerH), pos.P, w.OwnerOf(projH)),
	}, []ecs.Handle{projH}
}

func (s *Server) playerVsPlayer(a, b ecs.Handle) ([]event.GameEvent, []ecs.Handle) {
	w := s.world
	as, aok := w.PlayerState.Get(a)
	bs, bok := w.PlayerState.Get(b)
	if !aok || !bok {
		return nil, nil
	}
	switch {
	case as.IsCatcher && !bs.IsCatcher:
		pos, _ := w.Position.Get(b)
		return []event.GameEvent{event.NewPlayerDied(w.OwnerOf(b), pos.P, w.OwnerOf(a))}, nil
	case bs.IsCatcher && !as.IsCatcher:
		pos, _ := w.Position.Get(a)
		return []event.GameEvent{event.NewPlayerDied(w.OwnerOf(a), pos.P, w.OwnerOf(b))}, nil
	}
	return nil, nil
}
