package ecs

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/clockz"
)

// executorImpl is implemented by *scheduler and *dispatcher.
type executorImpl interface {
	run(ctx context.Context, world *World, view *ResourceView, sink *commandSink, logger Logger) error
	forceArchetypeRecalculation()
	systemsList() []*systemRecord
}

// Executor runs a fixed set of systems against a world and a resource
// tuple, choosing between a dependency/conflict-aware Scheduler and a
// lighter Dispatcher based on what ExecutorBuilder.Build proved statically
// about the systems it was given. Build one with NewExecutorBuilder.
type Executor struct {
	resourceTypes   []reflect.Type
	resourceBorrows []AtomicBorrow
	impl            executorImpl

	logger   Logger
	clock    clockz.Clock
	observer TickObserver

	tickCount     atomic.Uint64
	selfCheckOnce sync.Once
}

// Run executes one tick: every system runs exactly once, respecting
// dependency order and resource/component/archetype conflicts, structural
// mutations deferred by systems are applied once every system has
// finished, and Run returns the first error (if any) reported by a
// system. A panic inside a system is recovered and reported as an error
// naming that system, returned once every already-admitted system for the
// tick has finished; the panic itself does not propagate out of Run. Run
// does not attempt to cancel systems already running when another fails.
//
// resources must match, in order and by pointer element type, the
// resource types the executor was built with. When the executor has
// exactly one resource slot, a single bare pointer may be passed directly.
func (e *Executor) Run(ctx context.Context, world *World, resources ...any) error {
	e.selfCheckOnce.Do(func() {
		for _, r := range e.impl.systemsList() {
			if !r.resourceSet.selfCompatible() {
				panic(fmt.Errorf("%w: system %q", ErrResourceSelfConflict, r.name))
			}
		}
	})

	view, err := e.buildView(resources)
	if err != nil {
		return err
	}

	start := e.clock.Now()
	sink := &commandSink{pool: commandBufferPool}
	runErr := e.impl.run(ctx, world, view, sink, e.logger)

	commandsApplied := len(sink.commands)
	if commandsApplied > 0 {
		if applyErr := world.ApplyCommands(sink.commands); applyErr != nil && runErr == nil {
			runErr = applyErr
		}
	}

	e.observer.TickCompleted(TickSummary{
		Tick:            e.tickCount.Add(1),
		Duration:        e.clock.Now().Sub(start),
		SystemsTotal:    len(e.impl.systemsList()),
		SystemsExecuted: int(sink.executed.Load()),
		CommandsApplied: commandsApplied,
		Error:           runErr,
	})

	return runErr
}

// ForceArchetypeRecalculation discards any cached archetype access sets,
// forcing the next Run to rebuild them from the world's current
// archetypes regardless of whether the generation counter changed. A
// no-op on the Dispatcher variant, which never consults archetypes.
func (e *Executor) ForceArchetypeRecalculation() {
	e.impl.forceArchetypeRecalculation()
}

func (e *Executor) buildView(resources []any) (*ResourceView, error) {
	if len(resources) != len(e.resourceTypes) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrResourceArity, len(e.resourceTypes), len(resources))
	}

	cells := make([]resourceCell, len(resources))
	index := make(map[reflect.Type]int, len(resources))
	for i, r := range resources {
		rv := reflect.ValueOf(r)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return nil, fmt.Errorf("ecs: resource %d must be a non-nil pointer, got %T", i, r)
		}
		elemType := rv.Type().Elem()
		if elemType != e.resourceTypes[i] {
			return nil, fmt.Errorf("ecs: resource %d: expected *%s, got %s", i, e.resourceTypes[i], rv.Type())
		}
		e.resourceBorrows[i].reset()
		cells[i] = resourceCell{ptr: r, borrow: &e.resourceBorrows[i], typ: elemType}
		index[elemType] = i
	}
	return &ResourceView{cells: cells, index: index}, nil
}

// commandSink collects structural mutations deferred by systems during a
// tick, drained from each system's own CommandBuffer as it finishes, and
// counts how many systems actually ran (for TickSummary).
type commandSink struct {
	mu       sync.Mutex
	commands []Command
	pool     *CommandBufferPool
	executed atomic.Int64
}

func (s *commandSink) acquire() *CommandBuffer {
	return s.pool.Get()
}

func (s *commandSink) release(buf *CommandBuffer) {
	s.executed.Add(1)
	drained := buf.Drain()
	if len(drained) > 0 {
		s.mu.Lock()
		s.commands = append(s.commands, drained...)
		s.mu.Unlock()
	}
	s.pool.Put(buf)
}

var commandBufferPool = NewCommandBufferPool()
