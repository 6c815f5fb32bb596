// Package ecs is the entity storage core shared by the server simulation and
// the client's replicated world: dense per-type component tables addressed by
// a generation-checked entity handle, plus a pending-changes queue so writes
// made mid-tick only become visible at an explicit flush point.
package ecs

// Handle identifies an entity slot and the generation it was created in.
// A Handle is stale once its slot has been recycled into a new generation;
// Table lookups detect this and report failure rather than aliasing data.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Nil is the zero Handle, never returned by Create.
var Nil = Handle{}

// Valid reports whether h is not the Nil handle. It does not by itself prove
// the handle still refers to a live entity — that requires a Table lookup.
func (h Handle) Valid() bool { return h != Nil }
