package serverside

import (
	"catch/internal/ecs"
	"catch/internal/transport"
)

// ConnState is a Player's place in the connect handshake.
type ConnState uint8

const (
	// Connecting is the state from transport Connect until a WishConnect
	// message is received.
	Connecting ConnState = iota
	// Normal is a fully joined player participating in the simulation.
	Normal
)

// Player is the server's bookkeeping record for one connected peer. Not
// itself a replicated entity — ControlledEntity is the entity the player
// currently controls, if alive.
type Player struct {
	ID               uint32
	Name             string
	Peer             transport.PeerID
	State            ConnState
	ControlledEntity ecs.Handle
	RespawnTime      float64 // seconds remaining before (re)spawn while ControlledEntity is Nil; 0 while alive
	IsNew            bool    // needs a CreateEntity catch-up burst
	Invulnerable     float64 // seconds of remaining spawn invulnerability
}
