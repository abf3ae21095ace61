package ecs

import (
	"context"
	"fmt"
	"sort"
)

// schedEntry pairs a system ready to run with its cached dependant count,
// used to order admission so that systems which unblock the most other
// work are started first.
type schedEntry struct {
	id         SystemID
	dependants int
}

// scheduler is the Executor strategy used when systems have dependencies,
// or cannot be proven statically disjoint. Each tick: systems without
// unsatisfied dependencies are admitted as their resource/component/
// archetype access allows; as each finishes, its dependants' unsatisfied
// dependency counts are decremented, and newly-unblocked systems join the
// admission queue, resorted by dependant count.
type scheduler struct {
	systems     map[SystemID]*systemRecord
	withoutDeps []schedEntry

	toRunNow []schedEntry
	running  map[SystemID]struct{}

	generationSet bool
	generation    uint64

	pool WorkerPool
}

func (s *scheduler) systemsList() []*systemRecord {
	list := make([]*systemRecord, 0, len(s.systems))
	for _, rec := range s.systems {
		list = append(list, rec)
	}
	return list
}

func (s *scheduler) forceArchetypeRecalculation() {
	s.generationSet = false
}

func (s *scheduler) prepare(world *World) {
	s.toRunNow = append(s.toRunNow[:0], s.withoutDeps...)

	gen := world.ArchetypesGeneration()
	if !s.generationSet || s.generation != gen {
		for _, rec := range s.systems {
			rec.archetypeWriter(world, &rec.archetypeSet)
		}
		s.generation = gen
		s.generationSet = true
	}

	for _, rec := range s.systems {
		rec.unsatisfiedDeps = rec.dependencies
	}
	for k := range s.running {
		delete(s.running, k)
	}
}

func (s *scheduler) canStartNow(id SystemID) bool {
	rec := s.systems[id]
	for otherID := range s.running {
		other := s.systems[otherID]
		if !rec.resourceSet.isCompatible(other.resourceSet) {
			return false
		}
		if !rec.componentSet.isCompatible(other.componentSet) && !rec.archetypeSet.isCompatible(other.archetypeSet) {
			return false
		}
	}
	return true
}

func (s *scheduler) run(ctx context.Context, world *World, view *ResourceView, sink *commandSink, logger Logger) error {
	return s.pool.Scope(ctx, func(spawn Spawner) {
		s.prepare(world)
		completions := make(chan SystemID, len(s.systems))

		for len(s.toRunNow) > 0 || len(s.running) > 0 {
			s.admitReady(ctx, spawn, world, view, sink, logger, completions)
			if len(s.running) > 0 {
				s.waitAndProcess(completions)
			}
		}
	})
}

func (s *scheduler) admitReady(ctx context.Context, spawn Spawner, world *World, view *ResourceView, sink *commandSink, logger Logger, completions chan<- SystemID) {
	if len(s.toRunNow) == 0 {
		return
	}
	remaining := s.toRunNow[:0]
	for _, entry := range s.toRunNow {
		if s.canStartNow(entry.id) {
			s.running[entry.id] = struct{}{}
			rec := s.systems[entry.id]
			spawn.Spawn(func() error {
				err := s.runSystem(ctx, rec, world, view, sink, logger)
				completions <- rec.id
				return err
			})
		} else {
			remaining = append(remaining, entry)
		}
	}
	s.toRunNow = remaining
}

func (s *scheduler) waitAndProcess(completions <-chan SystemID) {
	justFinished := []SystemID{<-completions}
drain:
	for {
		select {
		case id := <-completions:
			justFinished = append(justFinished, id)
		default:
			break drain
		}
	}

	for _, id := range justFinished {
		delete(s.running, id)
	}

	var toDecrement []SystemID
	for _, id := range justFinished {
		toDecrement = append(toDecrement, s.systems[id].dependants...)
	}
	for _, id := range toDecrement {
		rec := s.systems[id]
		rec.unsatisfiedDeps--
		if rec.unsatisfiedDeps == 0 {
			s.toRunNow = append(s.toRunNow, schedEntry{id: id, dependants: len(rec.dependants)})
		}
	}

	sort.SliceStable(s.toRunNow, func(i, j int) bool {
		return s.toRunNow[i].dependants > s.toRunNow[j].dependants
	})
}

func (s *scheduler) runSystem(ctx context.Context, rec *systemRecord, world *World, view *ResourceView, sink *commandSink, logger Logger) (err error) {
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
}

var _ executorImpl = (*scheduler)(nil)
