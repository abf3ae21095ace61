package ecs

import "github.com/bits-and-blooms/bitset"

// accessSet records, over a fixed universe of bit positions, which
// positions are touched immutably and which are touched mutably. Two
// access sets are compatible exactly when their mutable halves are
// disjoint from each other and from each other's immutable halves.
//
// resourceSet, componentSet, and archetypeSet are all instances of this
// shape over different universes (the executor's resource tuple, the
// union of component types touched by any system, and the world's
// current archetypes, respectively).
type accessSet struct {
	immutable *bitset.BitSet
	mutable   *bitset.BitSet
}

func newAccessSet(bits uint) accessSet {
	return accessSet{
		immutable: bitset.New(bits),
		mutable:   bitset.New(bits),
	}
}

func (a accessSet) setImmutable(i uint) { a.immutable.Set(i) }
func (a accessSet) setMutable(i uint)   { a.mutable.Set(i) }

// isCompatible reports whether a and b may run concurrently.
func (a accessSet) isCompatible(b accessSet) bool {
	if a.mutable.IntersectionCardinality(b.mutable) != 0 {
		return false
	}
	if a.mutable.IntersectionCardinality(b.immutable) != 0 {
		return false
	}
	if a.immutable.IntersectionCardinality(b.mutable) != 0 {
		return false
	}
	return true
}

// selfCompatible reports whether a single system's own declared access is
// internally consistent: it must not claim both shared and exclusive
// access to the same bit position.
func (a accessSet) selfCompatible() bool {
	return a.immutable.IntersectionCardinality(a.mutable) == 0
}

// reset clears a to the empty set and grows it to cover at least n bits,
// used when refreshing an archetypeSet against the world's current
// archetype count.
func (a *accessSet) reset(n uint) {
	a.immutable = bitset.New(n)
	a.mutable = bitset.New(n)
}

type resourceSet = accessSet
type componentSet = accessSet
type archetypeSet = accessSet
