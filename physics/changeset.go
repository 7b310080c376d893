package physics

import (
	"maps"
	"slices"
)

// Mergeable is a per-entity, per-tick accumulation of collision effects. The
// zero value must be the identity, and Merge must be commutative and
// associative since collisions arrive in no particular order.
type Mergeable[C any] interface {
	Merge(other C) C
}

// Resolvable is an entity that consumes one merged changeset per tick and then
// integrates its own motion.
type Resolvable[C Mergeable[C]] interface {
	ApplyChangeSet(changes C)
	HandlePhysUpdate()
}

// ChangeSets buckets changesets by tick-local entity id. The zero value is
// ready to use; build a fresh one every tick.
type ChangeSets[C Mergeable[C]] struct {
	buckets map[int]C
}

// Add merges c into the bucket for id.
func (s *ChangeSets[C]) Add(id int, c C) {
	if s.buckets == nil {
		s.buckets = make(map[int]C)
	}
	s.buckets[id] = s.buckets[id].Merge(c)
}

// Get returns the merged changeset for id, or the zero value.
func (s *ChangeSets[C]) Get(id int) C {
	return s.buckets[id]
}

// Len is the number of ids with a bucket.
func (s *ChangeSets[C]) Len() int {
	return len(s.buckets)
}

// IDs returns the bucketed ids in ascending order.
func (s *ChangeSets[C]) IDs() []int {
	return slices.Sorted(maps.Keys(s.buckets))
}

// Apply hands every entity its merged changeset and then integrates them.
// It is ApplyChangeSets followed by Integrate.
func Apply[C Mergeable[C], R Resolvable[C]](s *ChangeSets[C], entities []R) {
	ApplyChangeSets(s, entities)
	Integrate(entities)
}

// ApplyChangeSets gives each entity its bucket exactly once, in index order.
// Entities without a bucket receive the zero changeset.
func ApplyChangeSets[C Mergeable[C], R Resolvable[C]](s *ChangeSets[C], entities []R) {
	for i, e := range entities {
		e.ApplyChangeSet(s.Get(i))
	}
}

// Integrator is the integration half of Resolvable.
type Integrator interface {
	HandlePhysUpdate()
}

// Integrate advances every entity by one tick.
func Integrate[R Integrator](entities []R) {
	for _, e := range entities {
		e.HandlePhysUpdate()
	}
}
