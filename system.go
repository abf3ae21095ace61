package ecs

import "reflect"

// SystemID identifies a system within a single Executor.
type SystemID int

// AccessMode indicates whether a resource is read or written by a system.
type AccessMode uint8

const (
	AccessModeRead AccessMode = iota
	AccessModeWrite
)

// ResourceAccess declares a system's intent toward one slot of the
// executor's resource tuple, identified by static Go type.
type ResourceAccess struct {
	Type reflect.Type
	Mode AccessMode
}

// Reads declares shared (read-only) access to resource type T.
func Reads[T any]() ResourceAccess {
	return ResourceAccess{Type: reflect.TypeFor[T](), Mode: AccessModeRead}
}

// Writes declares exclusive (read-write) access to resource type T.
func Writes[T any]() ResourceAccess {
	return ResourceAccess{Type: reflect.TypeFor[T](), Mode: AccessModeWrite}
}

// SystemDescriptor names a system and declares the resources and
// component queries it touches. The executor uses this, not any runtime
// inspection of the closure, to build the access sets that decide which
// systems may run concurrently.
type SystemDescriptor struct {
	Name      string
	Resources []ResourceAccess
	Queries   []QueryDescriptor
}

// SystemContext is handed to a system's Run method on every invocation.
type SystemContext struct {
	SystemID SystemID
	World    *World
	Logger   Logger
	// Defer queues a structural mutation to be applied to the world once
	// every system in the current tick has finished.
	Defer func(Command)
}

// System is executable scheduler logic. Implementations read and write
// only the resources and components declared in their Descriptor; the
// executor enforces disjointness between concurrently running systems but
// has no way to verify a system stays within its own declaration.
type System interface {
	Descriptor() SystemDescriptor
	Run(ctx SystemContext, view *ResourceView) error
}

// SystemFunc adapts a plain function to System given a fixed descriptor.
type SystemFunc func(ctx SystemContext, view *ResourceView) error

type funcSystem struct {
	desc SystemDescriptor
	fn   SystemFunc
}

// NewSystem builds a System from a descriptor and a closure, the common
// case when a system has no state of its own.
func NewSystem(desc SystemDescriptor, fn SystemFunc) System {
	return funcSystem{desc: desc, fn: fn}
}

func (s funcSystem) Descriptor() SystemDescriptor { return s.desc }

func (s funcSystem) Run(ctx SystemContext, view *ResourceView) error {
	return s.fn(ctx, view)
}

var _ System = funcSystem{}
