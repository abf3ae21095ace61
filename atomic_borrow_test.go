package ecs

import (
	"sync"
	"testing"
)

func TestAtomicBorrowSharedAllowsMultipleReaders(t *testing.T) {
	var b AtomicBorrow
	if !b.TryShared() {
		t.Fatalf("expected first shared borrow to succeed")
	}
	if !b.TryShared() {
		t.Fatalf("expected second shared borrow to succeed")
	}
	if b.TryExclusive() {
		t.Fatalf("expected exclusive borrow to fail while shared outstanding")
	}
	b.ReleaseShared()
	b.ReleaseShared()
	if !b.IsFree() {
		t.Fatalf("expected borrow to be free after both shared releases")
	}
}

func TestAtomicBorrowExclusiveExcludesEverything(t *testing.T) {
	var b AtomicBorrow
	if !b.TryExclusive() {
		t.Fatalf("expected exclusive borrow to succeed")
	}
	if b.TryShared() {
		t.Fatalf("expected shared borrow to fail while exclusive held")
	}
	if b.TryExclusive() {
		t.Fatalf("expected second exclusive borrow to fail")
	}
	b.ReleaseExclusive()
	if !b.IsFree() {
		t.Fatalf("expected borrow to be free after exclusive release")
	}
}

func TestAtomicBorrowResetPanicsWhenNotFree(t *testing.T) {
	var b AtomicBorrow
	b.TryShared()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected reset to panic on an outstanding borrow")
		}
	}()
	b.reset()
}

func TestAtomicBorrowConcurrentSharedBorrows(t *testing.T) {
	var b AtomicBorrow
	var wg sync.WaitGroup
	const n = 64
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if !b.TryShared() {
				return
			}
			defer b.ReleaseShared()
		}()
	}
	wg.Wait()
	if !b.IsFree() {
		t.Fatalf("expected all shared borrows to have been released")
	}
}

func TestAtomicBorrowReleaseExclusiveWithoutHoldingPanics(t *testing.T) {
	var b AtomicBorrow
	defer func() {
		if recover() == nil {
			t.Fatalf("expected ReleaseExclusive to panic when not held")
		}
	}()
	b.ReleaseExclusive()
}
