package ecs

import "sync/atomic"

// exclusiveBit marks that a borrow is held mutably; the remaining bits of
// the word count concurrent shared borrows.
const exclusiveBit uint64 = 1 << 63

// AtomicBorrow is a single-word runtime borrow tracker shared between a
// resource cell and every system that may touch it during a tick. It does
// not block: callers that lose the race back off and the scheduler is
// expected to never actually contend it, since the access-set algebra
// already proved the accesses disjoint before admitting a system. The
// check here is a safety net against a bug in that algebra, not the
// primary synchronization mechanism.
type AtomicBorrow struct {
	state atomic.Uint64
}

// IsFree reports whether the cell currently has no shared or exclusive
// borrow outstanding.
func (b *AtomicBorrow) IsFree() bool {
	return b.state.Load() == 0
}

// TryShared attempts to acquire a shared (read) borrow, failing if an
// exclusive borrow is already held.
func (b *AtomicBorrow) TryShared() bool {
	value := b.state.Add(1)
	if value&exclusiveBit != 0 {
		b.state.Add(^uint64(0))
		return false
	}
	return true
}

// TryExclusive attempts to acquire an exclusive (write) borrow, failing if
// any borrow, shared or exclusive, is already held.
func (b *AtomicBorrow) TryExclusive() bool {
	return b.state.CompareAndSwap(0, exclusiveBit)
}

// ReleaseShared releases one previously acquired shared borrow.
func (b *AtomicBorrow) ReleaseShared() {
	prev := b.state.Add(^uint64(0))
	if prev+1 == 0 || (prev+1)&exclusiveBit != 0 {
		panic("ecs: unbalanced shared borrow release")
	}
}

// ReleaseExclusive releases a previously acquired exclusive borrow.
func (b *AtomicBorrow) ReleaseExclusive() {
	if !b.state.CompareAndSwap(exclusiveBit, 0) {
		panic("ecs: unbalanced exclusive borrow release")
	}
}

// reset asserts the borrow is free. Called between ticks, when every
// borrow taken during the previous tick is guaranteed to have been
// released; a failure here means a system leaked a borrow.
func (b *AtomicBorrow) reset() {
	if !b.IsFree() {
		panic("ecs: resource borrow still held at end of tick")
	}
}
