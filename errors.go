package ecs

import "errors"

var (
	// ErrComponentAlreadyRegistered indicates an attempt to register the same component twice.
	ErrComponentAlreadyRegistered = errors.New("ecs: component already registered")
	// ErrComponentNotRegistered signals lookup on an unknown component type.
	ErrComponentNotRegistered = errors.New("ecs: component not registered")
	// ErrNilStorageStrategy is returned when storage registration receives a nil strategy.
	ErrNilStorageStrategy = errors.New("ecs: nil storage strategy")
	// ErrNilComponentStore is returned when a strategy produces a nil store.
	ErrNilComponentStore = errors.New("ecs: strategy returned nil store")
	// ErrWorkerPoolClosed indicates jobs cannot be submitted because the pool closed.
	ErrWorkerPoolClosed = errors.New("ecs: worker pool closed")

	// ErrDuplicateSystemHandle indicates a builder handle was registered twice.
	ErrDuplicateSystemHandle = errors.New("ecs: duplicate system handle")
	// ErrUnknownDependencyHandle indicates a dependency named a handle the builder has not seen.
	ErrUnknownDependencyHandle = errors.New("ecs: dependency names an unknown system handle")
	// ErrSelfDependency indicates a system named itself as one of its own dependencies.
	ErrSelfDependency = errors.New("ecs: system cannot depend on itself")
	// ErrUnknownResourceType indicates a system declared access to a resource type
	// not present in the executor's resource tuple.
	ErrUnknownResourceType = errors.New("ecs: resource type not declared in executor's resource tuple")
	// ErrResourceSelfConflict indicates a single system declared both shared and
	// exclusive access to the same resource slot.
	ErrResourceSelfConflict = errors.New("ecs: system declares incompatible access to the same resource")
	// ErrSystemReentry indicates a system closure was entered while already running,
	// which should be impossible under correct scheduling.
	ErrSystemReentry = errors.New("ecs: system entered concurrently with itself")
	// ErrNoSystems indicates a builder was asked to build an executor with no systems.
	ErrNoSystems = errors.New("ecs: executor must have at least one system")
	// ErrResourceArity indicates Run() was called with the wrong number of resources.
	ErrResourceArity = errors.New("ecs: wrong number of resources passed to run")
)
