package ecs

// slot holds one entity's generation counter and, when occupied, its
// component value. A freed slot keeps its generation so a stale Handle
// referencing the old occupant is rejected rather than silently matching
// whatever moved in.
type slot[T any] struct {
	generation uint32
	occupied   bool
	value      T
}

// Table is a dense, generation-checked component store for a single component
// type T. Indices are packed: Create reuses the most recently freed slot
// before growing, avoiding
// unbounded growth under steady churn.
type Table[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewTable creates an empty table with room for capacity entities before its
// backing slice must grow.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Create inserts value and returns a handle to it.
func (t *Table[T]) Create(value T) Handle {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		s := &t.slots[idx]
		s.occupied = true
		s.value = value
		t.count++
		return Handle{Index: idx, Generation: s.generation}
	}

	idx := uint32(len(t.slots))
	t.slots = append(t.slots, slot[T]{generation: 1, occupied: true, value: value})
	t.count++
	return Handle{Index: idx, Generation: 1}
}

// Get returns the component at h and whether h is still live.
func (t *Table[T]) Get(h Handle) (T, bool) {
	var zero T
	if int(h.Index) >= len(t.slots) {
		return zero, false
	}
	s := &t.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return zero, false
	}
	return s.value, true
}

// Set overwrites the component at h. It reports false, without modifying
// anything, if h is stale or unoccupied.
func (t *Table[T]) Set(h Handle, value T) bool {
	if int(h.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return false
	}
	s.value = value
	return true
}

// Mutate applies fn to the component at h in place, if h is live.
func (t *Table[T]) Mutate(h Handle, fn func(*T)) bool {
	if int(h.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return false
	}
	fn(&s.value)
	return true
}

// Remove deletes the entity at h, bumping its generation so any outstanding
// copies of h become stale. Reports false if h was already stale.
func (t *Table[T]) Remove(h Handle) bool {
	if int(h.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return false
	}
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	t.count--
	t.free = append(t.free, h.Index)
	return true
}

// Has reports whether h refers to a live entity, without copying its value.
func (t *Table[T]) Has(h Handle) bool {
	if int(h.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[h.Index]
	return s.occupied && s.generation == h.Generation
}

// Len returns the number of live entities in the table.
func (t *Table[T]) Len() int { return t.count }

// Each calls fn for every live entity in index order. fn must not call
// Create or Remove on the same table; use the Table's owning Store's
// pending-changes queue for structural changes discovered mid-iteration.
func (t *Table[T]) Each(fn func(Handle, *T)) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.occupied {
			continue
		}
		fn(Handle{Index: uint32(i), Generation: s.generation}, &s.value)
	}
}
