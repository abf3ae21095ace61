package ecs

import (
	"context"
	"fmt"
)

// dispatcher is the Executor strategy used when every system has zero
// dependencies and every pair of systems has statically compatible
// resource and component access: no admission bookkeeping is needed,
// every system can simply run concurrently with every other.
type dispatcher struct {
	systems []*systemRecord
	pool    WorkerPool
}

func (d *dispatcher) systemsList() []*systemRecord {
	return d.systems
}

func (d *dispatcher) forceArchetypeRecalculation() {
	// Dispatcher never consults archetypes; nothing to invalidate.
}

func (d *dispatcher) run(ctx context.Context, world *World, view *ResourceView, sink *commandSink, logger Logger) error {
	return d.pool.Scope(ctx, func(spawn Spawner) {
		for _, rec := range d.systems {
			rec := rec
			spawn.Spawn(func() (err error) {
				buf := sink.acquire()
				defer sink.release(buf)

				sysCtx := SystemContext{
					SystemID: rec.id,
					World:    world,
					Logger:   logger,
					Defer:    buf.Push,
				}

				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("ecs: system %q panicked: %v", rec.name, r)
					}
				}()
				return rec.runOnce(sysCtx, view)
			})
		}
	})
}

var _ executorImpl = (*dispatcher)(nil)
