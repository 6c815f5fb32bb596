// Package serverside is the authoritative server: world storage, the
// connect handshake, and the fixed-tick-rate simulation loop. A single
// struct owns all mutable state, advanced by one tick() call per frame;
// entity lifetime is delegated to internal/ecs.
package serverside

import (
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/netcomp"
)

// World owns every entity and its optional components. Components are
// stored sparse (ecs.ComponentSet) since most entity kinds only carry a
// handful of the registry's component types.
type World struct {
	Store *ecs.Store

	Position        *ecs.ComponentSet[netcomp.Position]
	Orientation     *ecs.ComponentSet[netcomp.Orientation]
	LinearVelocity  *ecs.ComponentSet[netcomp.LinearVelocity]
	AngularVelocity *ecs.ComponentSet[netcomp.AngularVelocity]
	Shape           *ecs.ComponentSet[netcomp.Shape]
	PlayerState     *ecs.ComponentSet[netcomp.PlayerState]
	FullPlayerState *ecs.ComponentSet[netcomp.FullPlayerState]
	WallPosition    *ecs.ComponentSet[netcomp.WallPosition]

	// Server-only bookkeeping, never replicated directly.
	entityType map[ecs.Handle]entitytype.ID
	owner      map[ecs.Handle]uint32 // PlayerId owning this entity, 0 = unowned
	rotate     map[ecs.Handle]bool   // advance Orientation by AngularVelocity*dt each tick
	netID      map[ecs.Handle]uint32
	byNetID    map[uint32]ecs.Handle
	nextNetID  uint32
}

// NewWorld builds an empty World.
func NewWorld(capacity int) *World {
	return &World{
		Store:           ecs.NewStore(capacity),
		Position:        ecs.NewComponentSet[netcomp.Position](),
		Orientation:     ecs.NewComponentSet[netcomp.Orientation](),
		LinearVelocity:  ecs.NewComponentSet[netcomp.LinearVelocity](),
		AngularVelocity: ecs.NewComponentSet[netcomp.AngularVelocity](),
		Shape:           ecs.NewComponentSet[netcomp.Shape](),
		PlayerState:     ecs.NewComponentSet[netcomp.PlayerState](),
		FullPlayerState: ecs.NewComponentSet[netcomp.FullPlayerState](),
		WallPosition:    ecs.NewComponentSet[netcomp.WallPosition](),
		entityType:      make(map[ecs.Handle]entitytype.ID),
		owner:           make(map[ecs.Handle]uint32),
		rotate:          make(map[ecs.Handle]bool),
		netID:           make(map[ecs.Handle]uint32),
		byNetID:         make(map[uint32]ecs.Handle),
		nextNetID:       1,
	}
}

// Spawn creates a new entity of kind typeID owned by owner (0 for unowned)
// and assigns it the next NetID. Components are populated by the caller
// immediately after.
func (w *World) Spawn(typeID entitytype.ID, owner uint32) ecs.Handle {
	h := w.Store.Create()
	w.entityType[h] = typeID
	w.owner[h] = owner
	id := w.nextNetID
	w.nextNetID++
	w.netID[h] = id
	w.byNetID[id] = h
	return h
}

// Despawn removes h and every component attached to it.
func (w *World) Despawn(h ecs.Handle) {
	w.Position.Remove(h)
	w.Orientation.Remove(h)
	w.LinearVelocity.Remove(h)
	w.AngularVelocity.Remove(h)
	w.Shape.Remove(h)
	w.PlayerState.Remove(h)
	w.FullPlayerState.Remove(h)
	w.WallPosition.Remove(h)
	delete(w.rotate, h)
	delete(w.owner, h)
	delete(w.entityType, h)
	if id, ok := w.netID[h]; ok {
		delete(w.byNetID, id)
		delete(w.netID, h)
	}
	w.Store.Destroy(h)
}

// NetID returns h's wire identifier.
func (w *World) NetID(h ecs.Handle) uint32 { return w.netID[h] }

// HandleByNetID resolves a wire identifier back to a live handle.
func (w *World) HandleByNetID(id uint32) (ecs.Handle, bool) {
	h, ok := w.byNetID[id]
	return h, ok
}

// TypeOf returns h's entity kind.
func (w *World) TypeOf(h ecs.Handle) entitytype.ID { return w.entityType[h] }

// OwnerOf returns the PlayerId owning h, or 0 if unowned.
func (w *World) OwnerOf(h ecs.Handle) uint32 { return w.owner[h] }

// SetRotate marks h to advance Orientation by AngularVelocity*dt every tick.
func (w *World) SetRotate(h ecs.Handle, on bool) {
	if on {
		w.rotate[h] = true
	} else {
		delete(w.rotate, h)
	}
}

// HasRotate reports whether h is tagged to auto-rotate.
func (w *World) HasRotate(h ecs.Handle) bool { return w.rotate[h] }

// Each calls fn for every live entity handle, in Store iteration order.
func (w *World) Each(fn func(ecs.Handle)) { w.Store.Each(fn) }

// NetComponentsFor builds the full (unfiltered by owner) NetComponents for
// h, combining every component table that holds a value for it.
func (w *World) NetComponentsFor(h ecs.Handle) netcomp.NetComponents {
	var nc netcomp.NetComponents
	if v, ok := w.Position.Get(h); ok {
		nc.Position = &v
	}
	if v, ok := w.Orientation.Get(h); ok {
		nc.Orientation = &v
	}
	if v, ok := w.LinearVelocity.Get(h); ok {
		nc.LinearVelocity = &v
	}
	if v, ok := w.AngularVelocity.Get(h); ok {
		nc.AngularVelocity = &v
	}
	if v, ok := w.Shape.Get(h); ok {
		nc.Shape = &v
	}
	if v, ok := w.PlayerState.Get(h); ok {
		nc.PlayerState = &v
	}
	if v, ok := w.FullPlayerState.Get(h); ok {
		nc.FullPlayerState = &v
	}
	if v, ok := w.WallPosition.Get(h); ok {
		nc.WallPosition = &v
	}
	return nc
}

// FilterForObserver zeroes out owner-only fields not in def.OwnerComponents
// unless isOwner, and entirely unlisted fields outside def.Components.
// GameInfo's per-type Components/OwnerComponents partition is the source of
// truth for what an observer may see; this enforces it regardless of what
// happens to be populated in the backing tables.
func FilterForObserver(full netcomp.NetComponents, def entitytype.Definition, isOwner bool) netcomp.NetComponents {
	allowed := make(map[uint8]bool, len(def.Components)+len(def.OwnerComponents))
	for _, c := range def.Components {
		allowed[uint8(c)] = true
	}
	if isOwner {
		for _, c := range def.OwnerComponents {
			allowed[uint8(c)] = true
		}
	}

	var out netcomp.NetComponents
	if full.Position != nil && allowed[uint8(netcomp.CTPosition)] {
		out.Position = full.Position
	}
	if full.Orientation != nil && allowed[uint8(netcomp.CTOrientation)] {
		out.Orientation = full.Orientation
	}
	if full.LinearVelocity != nil && allowed[uint8(netcomp.CTLinearVelocity)] {
		out.LinearVelocity = full.LinearVelocity
	}
	if full.AngularVelocity != nil && allowed[uint8(netcomp.CTAngularVelocity)] {
		out.AngularVelocity = full.AngularVelocity
	}
	if full.Shape != nil && allowed[uint8(netcomp.CTShape)] {
		out.Shape = full.Shape
	}
	if full.PlayerState != nil && allowed[uint8(netcomp.CTPlayerState)] {
		out.PlayerState = full.PlayerState
	}
	if full.FullPlayerState != nil && allowed[uint8(netcomp.CTFullPlayerState)] {
		out.FullPlayerState = full.FullPlayerState
	}
	if full.WallPosition != nil && allowed[uint8(netcomp.CTWallPosition)] {
		out.WallPosition = full.WallPosition
	}
	return out
}
