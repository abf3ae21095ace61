package ecs

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Spawner lets a scope submit additional tasks to run concurrently with
// whatever it has already spawned.
type Spawner interface {
	Spawn(task func() error)
}

// WorkerPool is the scheduler's worker-pool collaborator: it supplies a
// scope in which systems are spawned and from which the scheduler does not
// return until every spawned system has finished. Implementations may be
// swapped via WithWorkerPool on the builder; the default is bounded by
// NewBoundedWorkerPool.
type WorkerPool interface {
	// Scope runs fn, which may call Spawn any number of times over the
	// course of its execution (not just before returning). Scope blocks
	// until every spawned task completes and returns the first non-nil
	// error among them, if any.
	Scope(ctx context.Context, fn func(Spawner)) error
}

// NewBoundedWorkerPool returns a WorkerPool backed by golang.org/x/sync's
// errgroup, bounded to at most limit concurrently running tasks. A limit
// of 0 or less means unbounded, matching errgroup.Group's own default.
func NewBoundedWorkerPool(limit int) WorkerPool {
	return &boundedPool{limit: limit}
}

// DefaultWorkerPool returns a WorkerPool bounded to GOMAXPROCS, the
// executor's default when none is supplied to the builder.
func DefaultWorkerPool() WorkerPool {
	return NewBoundedWorkerPool(runtime.GOMAXPROCS(0))
}

type boundedPool struct {
	limit int
}

func (p *boundedPool) Scope(ctx context.Context, fn func(Spawner)) error {
	var g errgroup.Group
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	fn(errgroupSpawner{g: &g})
	return g.Wait()
}

// errgroupSpawner adapts *errgroup.Group to Spawner. Using the group's
// plain (non-context-deriving) form deliberately: one system's error must
// not cancel its siblings, matching the executor's "no teardown of
// in-flight workers" contract.
type errgroupSpawner struct {
	g *errgroup.Group
}

func (s errgroupSpawner) Spawn(task func() error) {
	s.g.Go(task)
}
