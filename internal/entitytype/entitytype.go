// Package entitytype declares the closed registry of replicated entity kinds
// and the component sets each kind carries over the wire.
//
// Uses a compile-time iota enum with a String() method, here applied to
// entity kinds. Each kind declares the component types it carries, and which
// of those are visible only to the owning player.
package entitytype

import "catch/internal/netcomp"

// ID enumerates every entity kind the simulation ever creates. The set is
// closed and identical on client and server; registry order has no wire
// significance (unlike netcomp.ComponentType, whose order IS the wire
// contract), but ID values are still never renumbered once shipped since
// GameInfo transmits them to clients by value.
type ID uint16

const (
	Player ID = iota
	BouncyEnemy
	Item
	ItemSpawn
	Bullet
	Frag
	Shrapnel
	WallWood
	WallIron
	PlayerBall
)

// String returns the entity kind's wire name, also used as the GameInfo
// entity_types map key.
func (id ID) String() string {
	switch id {
	case Player:
		return "player"
	case BouncyEnemy:
		return "bouncy_enemy"
	case Item:
		return "item"
	case ItemSpawn:
		return "item_spawn"
	case Bullet:
		return "bullet"
	case Frag:
		return "frag"
	case Shrapnel:
		return "shrapnel"
	case WallWood:
		return "wall_wood"
	case WallIron:
		return "wall_iron"
	case PlayerBall:
		return "player_ball"
	default:
		return "unknown"
	}
}

// Definition is the (component_types, owner_component_types) pair: which
// components every observer sees, and which are sent only to
// the owning player.
type Definition struct {
	Components      []netcomp.ComponentType
	OwnerComponents []netcomp.ComponentType
}

// Registry maps every ID to its Definition. It is populated once at init and
// never mutated afterward — entity kinds are a closed, compile-time set.
var Registry = map[ID]Definition{
	Player: {
		Components:      []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTPlayerState, netcomp.CTShape},
		OwnerComponents: []netcomp.ComponentType{netcomp.CTFullPlayerState},
	},
	BouncyEnemy: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTShape},
	},
	Item: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTShape},
	},
	ItemSpawn: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTShape},
	},
	Bullet: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTShape},
	},
	Frag: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTAngularVelocity, netcomp.CTShape},
	},
	Shrapnel: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTShape},
	},
	WallWood: {
		Components: []netcomp.ComponentType{netcomp.CTWallPosition},
	},
	WallIron: {
		Components: []netcomp.ComponentType{netcomp.CTWallPosition},
	},
	PlayerBall: {
		Components: []netcomp.ComponentType{netcomp.CTPosition, netcomp.CTOrientation, netcomp.CTLinearVelocity, netcomp.CTShape},
	},
}

// AllTypes returns every ID in ascending (registry) order, the order in
// which GameInfo.entity_types is sent.
func AllTypes() []ID {
	return []ID{Player, BouncyEnemy, Item, ItemSpawn, Bullet, Frag, Shrapnel, WallWood, WallIron, PlayerBall}
}
