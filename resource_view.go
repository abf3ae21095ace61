package ecs

import (
	"fmt"
	"reflect"
)

// resourceCell is a type-erased resource cell: a pointer to a
// caller-owned value, paired with the AtomicBorrow that guards it for the
// duration of one Executor.Run call.
type resourceCell struct {
	ptr    any // always a non-nil *T, boxed
	borrow *AtomicBorrow
	typ    reflect.Type
}

func (c *resourceCell) borrowShared() any {
	if !c.borrow.TryShared() {
		panic(fmt.Errorf("ecs: cannot read resource %s: already borrowed mutably", c.typ))
	}
	return c.ptr
}

func (c *resourceCell) releaseShared() { c.borrow.ReleaseShared() }

func (c *resourceCell) borrowExclusive() any {
	if !c.borrow.TryExclusive() {
		panic(fmt.Errorf("ecs: cannot write resource %s: already borrowed", c.typ))
	}
	return c.ptr
}

func (c *resourceCell) releaseExclusive() { c.borrow.ReleaseExclusive() }

// ResourceView is the set of resource cells live for the duration of one
// Executor.Run call. Systems never hold a ResourceView outside their Run
// method; it is only valid for the call that received it.
type ResourceView struct {
	cells []resourceCell
	index map[reflect.Type]int
}

func (v *ResourceView) cellFor(t reflect.Type) *resourceCell {
	idx, ok := v.index[t]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownResourceType, t))
	}
	return &v.cells[idx]
}

// Read borrows resource type T immutably for the duration of fn.
func Read[T any](view *ResourceView, fn func(res *T)) {
	cell := view.cellFor(reflect.TypeFor[T]())
	ptr := cell.borrowShared()
	defer cell.releaseShared()
	fn(ptr.(*T))
}

// Write borrows resource type T exclusively for the duration of fn.
func Write[T any](view *ResourceView, fn func(res *T)) {
	cell := view.cellFor(reflect.TypeFor[T]())
	ptr := cell.borrowExclusive()
	defer cell.releaseExclusive()
	fn(ptr.(*T))
}
