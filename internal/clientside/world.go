// Package clientside is the replication client: the connect handshake, the
// per-tick snapshot buffer, and interpolation between the two most recent
// ticks. It mirrors internal/serverside's entity storage but keys entities
// by the net_id the server assigns rather than by an owning player, since a
// client never creates entities itself — only CreateEntity/RemoveEntity
// events drive its world's membership.
package clientside

import (
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/netcomp"
)

// World is the client's mirror of the server's replicated entity set.
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

	entityType map[ecs.Handle]entitytype.ID
	byNetID    map[uint32]ecs.Handle
	netID      map[ecs.Handle]uint32
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
		byNetID:         make(map[uint32]ecs.Handle),
		netID:           make(map[ecs.Handle]uint32),
	}
}

// Create materializes a new local entity for a CreateEntity event. A no-op
// if netID is already known, so a redundant catch-up burst cannot duplicate
// an entity.
func (w *World) Create(netID uint32, typeID entitytype.ID) ecs.Handle {
	if h, ok := w.byNetID[netID]; ok {
		return h
	}
	h := w.Store.Create()
	w.entityType[h] = typeID
	w.netID[h] = netID
	w.byNetID[netID] = h
	return h
}

// Remove destroys the local entity for netID, if any.
func (w *World) Remove(netID uint32) {
	h, ok := w.byNetID[netID]
	if !ok {
		return
	}
	w.Position.Remove(h)
	w.Orientation.Remove(h)
	w.LinearVelocity.Remove(h)
	w.AngularVelocity.Remove(h)
	w.Shape.Remove(h)
	w.PlayerState.Remove(h)
	w.FullPlayerState.Remove(h)
	w.WallPosition.Remove(h)
	delete(w.entityType, h)
	delete(w.netID, h)
	delete(w.byNetID, netID)
	w.Store.Destroy(h)
}

// HandleByNetID resolves a wire identifier back to a live local handle.
func (w *World) HandleByNetID(netID uint32) (ecs.Handle, bool) {
	h, ok := w.byNetID[netID]
	return h, ok
}

// TypeOf returns h's entity kind.
func (w *World) TypeOf(h ecs.Handle) entitytype.ID { return w.entityType[h] }

// Each calls fn for every live entity handle.
func (w *World) Each(fn func(ecs.Handle)) { w.Store.Each(fn) }

// ApplyComponents overwrites h's components with every field nc carries set.
// Fields nc leaves nil are left untouched — the delta codec has already
// resolved "unchanged" before this is called.
func (w *World) ApplyComponents(h ecs.Handle, nc netcomp.NetComponents) {
	if nc.Position != nil {
		w.Position.Insert(h, *nc.Position)
	}
	if nc.Orientation != nil {
		w.Orientation.Insert(h, *nc.Orientation)
	}
	if nc.LinearVelocity != nil {
		w.LinearVelocity.Insert(h, *nc.LinearVelocity)
	}
	if nc.AngularVelocity != nil {
		w.AngularVelocity.Insert(h, *nc.AngularVelocity)
	}
	if nc.Shape != nil {
		w.Shape.Insert(h, *nc.Shape)
	}
	if nc.PlayerState != nil {
		w.PlayerState.Insert(h, *nc.PlayerState)
	}
	if nc.FullPlayerState != nil {
		w.FullPlayerState.Insert(h, *nc.FullPlayerState)
	}
	if nc.WallPosition != nil {
		w.WallPosition.Insert(h, *nc.WallPosition)
	}
}
