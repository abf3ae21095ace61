package ecs

import "sync"

// systemRecord is a system's scheduling metadata: its access sets, its
// place in the dependency graph, and a mutex used only to assert that the
// scheduler never enters a system's closure twice concurrently. The
// access-set algebra is supposed to make that impossible; the mutex is a
// cheap way to turn a bug in that algebra into a loud panic instead of a
// silent data race.
type systemRecord struct {
	mu sync.Mutex

	id     SystemID
	name   string
	system System

	resourceSet  resourceSet
	componentSet componentSet
	archetypeSet archetypeSet

	// archetypeWriter refreshes archetypeSet against the world's current
	// archetype table; rebuilt only when the world's archetype generation
	// has advanced since the last tick.
	archetypeWriter func(world *World, set *archetypeSet)

	// dependencyIDs is populated by the builder and consumed once, at
	// Build() finalization, to produce the dependants edges below.
	dependencyIDs []SystemID

	dependants      []SystemID
	dependencies    int
	unsatisfiedDeps int
}

func (r *systemRecord) runOnce(ctx SystemContext, view *ResourceView) error {
	if !r.mu.TryLock() {
		panic(ErrSystemReentry)
	}
	defer r.mu.Unlock()
	return r.system.Run(ctx, view)
}
