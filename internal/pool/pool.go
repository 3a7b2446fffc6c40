// Package pool implements generational-handle arenas.
//
// A Handle encodes a slot index plus a generation counter. The generation
// increments every time a slot is freed, so a handle kept past its entity's
// lifetime fails lookup instead of aliasing whatever reuses the slot.
//
// The slot index is the entity's network identity: the server assigns
// indices by its own spawn order and clients mirror them exactly with
// SpawnAt, so a bare index transmitted once stays valid for the entity's
// lifetime on both sides. Generations are a local safety mechanism only and
// are never serialized.
package pool

import "errors"

var (
	// ErrSlotOccupied is returned by SpawnAt when the target slot already
	// holds a live value.
	ErrSlotOccupied = errors.New("pool: slot already occupied")
	// ErrStaleHandle is returned when a handle's generation does not match
	// the slot's current generation.
	ErrStaleHandle = errors.New("pool: stale handle")
	// ErrNotFound is returned when a handle or index points at an empty slot.
	ErrNotFound = errors.New("pool: entity not found")
)

// Handle is an opaque generational reference into a Pool[T].
type Handle[T any] struct {
	index      uint32
	generation uint32
}

// Index returns the slot index. This is the only part of a handle that may
// cross the network.
func (h Handle[T]) Index() uint32 {
	return h.index
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Pool is an arena of slots, each either empty or holding a T plus a
// generation counter. The zero value is ready to use.
type Pool[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// Spawn places value in a free slot and returns its handle. Freed slots are
// reused LIFO before the pool grows.
func (p *Pool[T]) Spawn(value T) Handle[T] {
	for len(p.free) > 0 {
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		// SpawnAt may have occupied this slot in the meantime.
		if !p.slots[idx].occupied {
			return p.occupy(idx, value)
		}
	}
	p.slots = append(p.slots, slot[T]{})
	return p.occupy(uint32(len(p.slots)-1), value)
}

// SpawnAt places value at an exact slot index, growing the pool as needed.
// Clients use this to mirror server-assigned indices.
func (p *Pool[T]) SpawnAt(index uint32, value T) (Handle[T], error) {
	for uint32(len(p.slots)) <= index {
		p.slots = append(p.slots, slot[T]{})
	}
	if p.slots[index].occupied {
		return Handle[T]{}, ErrSlotOccupied
	}
	return p.occupy(index, value), nil
}

func (p *Pool[T]) occupy(index uint32, value T) Handle[T] {
	s := &p.slots[index]
	s.value = value
	s.occupied = true
	p.count++
	return Handle[T]{index: index, generation: s.generation}
}

// Free removes the value the handle refers to and returns it. The slot's
// generation is bumped so the freed handle (and any copies of it) go stale.
func (p *Pool[T]) Free(h Handle[T]) (T, error) {
	var zero T
	if h.index >= uint32(len(p.slots)) || !p.slots[h.index].occupied {
		return zero, ErrNotFound
	}
	s := &p.slots[h.index]
	if s.generation != h.generation {
		return zero, ErrStaleHandle
	}
	value := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	p.free = append(p.free, h.index)
	p.count--
	return value, nil
}

// Get returns a pointer to the value the handle refers to.
func (p *Pool[T]) Get(h Handle[T]) (*T, error) {
	if h.index >= uint32(len(p.slots)) || !p.slots[h.index].occupied {
		return nil, ErrNotFound
	}
	s := &p.slots[h.index]
	if s.generation != h.generation {
		return nil, ErrStaleHandle
	}
	return &s.value, nil
}

// AtIndex looks up the live entity at a slot index, reconstructing the local
// handle for an index received over the network.
func (p *Pool[T]) AtIndex(index uint32) (Handle[T], *T, bool) {
	if index >= uint32(len(p.slots)) || !p.slots[index].occupied {
		return Handle[T]{}, nil, false
	}
	s := &p.slots[index]
	return Handle[T]{index: index, generation: s.generation}, &s.value, true
}

// Each calls fn for every occupied slot in ascending index order.
func (p *Pool[T]) Each(fn func(Handle[T], *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.occupied {
			fn(Handle[T]{index: uint32(i), generation: s.generation}, &s.value)
		}
	}
}

// Len returns the number of occupied slots.
func (p *Pool[T]) Len() int {
	return p.count
}
