package ecs

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zoobzio/clockz"
)

// ExecutorBuilder accumulates systems and their dependencies before
// producing an immutable Executor. The resource tuple an executor closes
// over is fixed at NewExecutorBuilder time, mirroring the original
// design's resource-tuple generic parameter: every system added to this
// builder may only declare access to resource types present in that
// tuple.
type ExecutorBuilder struct {
	resourceTypes []reflect.Type

	systems []*systemRecord
	handles map[any]SystemID

	allComponentTypes map[ComponentType]struct{}

	pool     WorkerPool
	clock    clockz.Clock
	logger   Logger
	observer TickObserver
}

// NewExecutorBuilder starts a builder closed over the given resource
// types. Pass the result of Reads[T]()/Writes[T]() element Type fields,
// or simply reflect.TypeFor[T]() for each resource the executor's systems
// may access.
func NewExecutorBuilder(resourceTypes ...reflect.Type) *ExecutorBuilder {
	return &ExecutorBuilder{
		resourceTypes:     resourceTypes,
		handles:           make(map[any]SystemID),
		allComponentTypes: make(map[ComponentType]struct{}),
		pool:              DefaultWorkerPool(),
		clock:             clockz.RealClock,
		logger:            noopLogger{},
		observer:          noopObserver{},
	}
}

// WithWorkerPool overrides the worker pool used to run systems.
func (b *ExecutorBuilder) WithWorkerPool(pool WorkerPool) *ExecutorBuilder {
	if pool != nil {
		b.pool = pool
	}
	return b
}

// WithClock overrides the clock used for tick timestamps, primarily so
// tests can supply clockz.NewFakeClock().
func (b *ExecutorBuilder) WithClock(clock clockz.Clock) *ExecutorBuilder {
	if clock != nil {
		b.clock = clock
	}
	return b
}

// WithLogger overrides the logger systems receive through SystemContext.
func (b *ExecutorBuilder) WithLogger(logger Logger) *ExecutorBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithObserver registers one or more TickObservers to receive a
// TickSummary after every Executor.Run call. Multiple calls accumulate
// rather than replace.
func (b *ExecutorBuilder) WithObserver(observers ...TickObserver) *ExecutorBuilder {
	existing := b.observer
	if _, isNoop := existing.(noopObserver); isNoop {
		b.observer = buildObserverChain(observers...)
		return b
	}
	b.observer = buildObserverChain(append([]TickObserver{existing}, observers...)...)
	return b
}

// System adds a system with no handle and no dependencies.
func (b *ExecutorBuilder) System(sys System) *ExecutorBuilder {
	b.addSystem(sys, nil, nil)
	return b
}

// SystemWithHandle adds a system that later systems may name as a
// dependency via handle. handle must be comparable.
func (b *ExecutorBuilder) SystemWithHandle(sys System, handle any) *ExecutorBuilder {
	b.addSystem(sys, handle, nil)
	return b
}

// SystemWithDeps adds a system that must not start until every system
// named in deps has finished. Each entry in deps must be a handle given
// to an earlier SystemWithHandle/SystemWithHandleAndDeps call.
func (b *ExecutorBuilder) SystemWithDeps(sys System, deps ...any) *ExecutorBuilder {
	b.addSystem(sys, nil, deps)
	return b
}

// SystemWithHandleAndDeps combines SystemWithHandle and SystemWithDeps.
func (b *ExecutorBuilder) SystemWithHandleAndDeps(sys System, handle any, deps ...any) *ExecutorBuilder {
	b.addSystem(sys, handle, deps)
	return b
}

func (b *ExecutorBuilder) addSystem(sys System, handle any, deps []any) {
	id := SystemID(len(b.systems))
	desc := sys.Descriptor()

	if handle != nil {
		if _, exists := b.handles[handle]; exists {
			panic(fmt.Errorf("%w: %v", ErrDuplicateSystemHandle, handle))
		}
		b.handles[handle] = id
	}

	depIDs := make([]SystemID, 0, len(deps))
	for _, d := range deps {
		depID, ok := b.handles[d]
		if !ok {
			panic(fmt.Errorf("%w: %v", ErrUnknownDependencyHandle, d))
		}
		if depID == id {
			panic(fmt.Errorf("%w: %v", ErrSelfDependency, d))
		}
		depIDs = append(depIDs, depID)
	}

	rset := newAccessSet(uint(len(b.resourceTypes)))
	for _, ra := range desc.Resources {
		idx := b.resourceTypeIndex(ra.Type)
		switch ra.Mode {
		case AccessModeWrite:
			rset.setMutable(uint(idx))
		default:
			rset.setImmutable(uint(idx))
		}
	}
	if !rset.selfCompatible() {
		panic(fmt.Errorf("%w: system %q", ErrResourceSelfConflict, desc.Name))
	}

	for _, q := range desc.Queries {
		for _, c := range q.Reads {
			b.allComponentTypes[c] = struct{}{}
		}
		for _, c := range q.Writes {
			b.allComponentTypes[c] = struct{}{}
		}
	}

	rec := &systemRecord{
		id:              id,
		name:            desc.Name,
		system:          sys,
		resourceSet:     rset,
		dependencyIDs:   depIDs,
		dependencies:    len(depIDs),
		archetypeWriter: buildArchetypeWriter(desc.Queries),
	}
	b.systems = append(b.systems, rec)
}

func (b *ExecutorBuilder) resourceTypeIndex(t reflect.Type) int {
	for i, rt := range b.resourceTypes {
		if rt == t {
			return i
		}
	}
	panic(fmt.Errorf("%w: %s", ErrUnknownResourceType, t))
}

func buildArchetypeWriter(queries []QueryDescriptor) func(world *World, set *archetypeSet) {
	return func(world *World, set *archetypeSet) {
		archetypes := world.Archetypes()
		set.reset(uint(len(archetypes)))
		for i, arch := range archetypes {
			for _, q := range queries {
				switch arch.Access(q) {
				case AccessRead:
					set.setImmutable(uint(i))
				case AccessWrite:
					set.setMutable(uint(i))
				}
			}
		}
	}
}

// Build finalizes the builder into an Executor. It condenses every
// system's component-type accesses against the global enumeration of
// component types touched by any system, converts dependency edges into
// dependant edges, and chooses between the Dispatcher and Scheduler
// execution strategies: Dispatcher when every system has zero
// dependencies and every pair of systems has statically compatible
// resource and component access; Scheduler otherwise.
func (b *ExecutorBuilder) Build() (*Executor, error) {
	if len(b.systems) == 0 {
		return nil, ErrNoSystems
	}

	componentTypes := make([]ComponentType, 0, len(b.allComponentTypes))
	for c := range b.allComponentTypes {
		componentTypes = append(componentTypes, c)
	}
	sort.Slice(componentTypes, func(i, j int) bool { return componentTypes[i] < componentTypes[j] })
	componentIndex := make(map[ComponentType]int, len(componentTypes))
	for i, c := range componentTypes {
		componentIndex[c] = i
	}

	for _, rec := range b.systems {
		rec.componentSet = newAccessSet(uint(len(componentTypes)))
		for _, q := range rec.system.Descriptor().Queries {
			for _, c := range q.Reads {
				rec.componentSet.setImmutable(uint(componentIndex[c]))
			}
			for _, c := range q.Writes {
				rec.componentSet.setMutable(uint(componentIndex[c]))
			}
		}
		rec.archetypeSet = newAccessSet(0)
	}

	systemsByID := make(map[SystemID]*systemRecord, len(b.systems))
	for _, rec := range b.systems {
		systemsByID[rec.id] = rec
	}
	for _, rec := range b.systems {
		for _, depID := range rec.dependencyIDs {
			dep := systemsByID[depID]
			dep.dependants = append(dep.dependants, rec.id)
		}
	}

	withoutDeps := make([]schedEntry, 0)
	for _, rec := range b.systems {
		if rec.dependencies == 0 {
			withoutDeps = append(withoutDeps, schedEntry{id: rec.id})
		}
	}
	for i := range withoutDeps {
		withoutDeps[i].dependants = len(systemsByID[withoutDeps[i].id].dependants)
	}
	sort.SliceStable(withoutDeps, func(i, j int) bool {
		return withoutDeps[i].dependants > withoutDeps[j].dependants
	})

	exec := &Executor{
		resourceTypes:   b.resourceTypes,
		resourceBorrows: make([]AtomicBorrow, len(b.resourceTypes)),
		logger:          b.logger,
		clock:           b.clock,
		observer:        b.observer,
	}

	if len(withoutDeps) == len(b.systems) && allDisjoint(b.systems) {
		exec.impl = &dispatcher{systems: b.systems, pool: b.pool}
		return exec, nil
	}

	exec.impl = &scheduler{
		systems:     systemsByID,
		withoutDeps: withoutDeps,
		running:     make(map[SystemID]struct{}),
		pool:        b.pool,
	}
	return exec, nil
}

func allDisjoint(systems []*systemRecord) bool {
	for i, sys := range systems {
		for j := i + 1; j < len(systems); j++ {
			other := systems[j]
			if !sys.resourceSet.isCompatible(other.resourceSet) {
				return false
			}
			if !sys.componentSet.isCompatible(other.componentSet) {
				return false
			}
		}
	}
	return true
}
