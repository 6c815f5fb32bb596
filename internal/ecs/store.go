package ecs

// Store is the entity lifecycle authority: it mints and recycles Handles and
// is the single place that can say whether a given Handle is still alive. A
// NetEntity's component values live in separate ComponentSet[T] instances
// (see sparse.go) validated against the same Handle; Store does not hold
// component data itself, keeping entity identity
// (player ID, slot) distinct from the data slices that describe it.
type Store struct {
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
	pending     *PendingQueue
}

// NewStore creates an empty Store with room for capacity entities before its
// backing slices must grow.
func NewStore(capacity int) *Store {
	return &Store{
		generations: make([]uint32, 0, capacity),
		alive:       make([]bool, 0, capacity),
		pending:     NewPendingQueue(64),
	}
}

// Create allocates a new, live Handle.
func (s *Store) Create() Handle {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.alive[idx] = true
		s.count++
		return Handle{Index: idx, Generation: s.generations[idx]}
	}
	idx := uint32(len(s.generations))
	s.generations = append(s.generations, 1)
	s.alive = append(s.alive, true)
	s.count++
	return Handle{Index: idx, Generation: 1}
}

// Destroy marks h's slot dead and bumps its generation, so existing copies of
// h become stale. Reports false if h was already stale or dead.
func (s *Store) Destroy(h Handle) bool {
	if !s.Alive(h) {
		return false
	}
	s.alive[h.Index] = false
	s.generations[h.Index]++
	s.count--
	s.free = append(s.free, h.Index)
	return true
}

// Alive reports whether h refers to a currently live entity.
func (s *Store) Alive(h Handle) bool {
	if int(h.Index) >= len(s.generations) {
		return false
	}
	return s.alive[h.Index] && s.generations[h.Index] == h.Generation
}

// Len returns the number of live entities.
func (s *Store) Len() int { return s.count }

// Each calls fn for every live entity handle, in index order.
func (s *Store) Each(fn func(Handle)) {
	for i, alive := range s.alive {
		if alive {
			fn(Handle{Index: uint32(i), Generation: s.generations[i]})
		}
	}
}

// Defer queues a structural change for application at the next Flush. Used
// during tick phases that walk live entities and discover, mid-walk, that an
// entity must be created or destroyed (e.g. projectile expiry found while
// iterating positions) — applying it immediately would invalidate the
// in-progress iteration.
func (s *Store) Defer(c Change) { s.pending.Push(c) }

// Flush applies every deferred Change, in the order they were queued, and
// empties the pending queue. Call this only between tick phases, never while
// a Table.Each or Store.Each walk is in progress.
func (s *Store) Flush() {
	for _, c := range s.pending.Drain() {
		c(s)
	}
}

// PendingLen reports how many deferred changes are waiting for the next Flush.
func (s *Store) PendingLen() int { return s.pending.Len() }
