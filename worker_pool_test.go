package ecs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parasys/ecs"
)

func TestBoundedWorkerPoolRunsAllSpawnedTasks(t *testing.T) {
	pool := ecs.NewBoundedWorkerPool(2)

	var count atomic.Int32
	task := func() error {
		time.Sleep(5 * time.Millisecond)
		count.Add(1)
		return nil
	}

	err := pool.Scope(context.Background(), func(spawn ecs.Spawner) {
		spawn.Spawn(task)
		spawn.Spawn(task)
		spawn.Spawn(task)
	})
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if count.Load() != 3 {
		t.Fatalf("expected 3 tasks to run, got %d", count.Load())
	}
}

func TestBoundedWorkerPoolReturnsFirstError(t *testing.T) {
	pool := ecs.NewBoundedWorkerPool(2)
	boom := errors.New("boom")

	err := pool.Scope(context.Background(), func(spawn ecs.Spawner) {
		spawn.Spawn(func() error { return nil })
		spawn.Spawn(func() error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom to propagate, got %v", err)
	}
}

func TestBoundedWorkerPoolLimitsConcurrency(t *testing.T) {
	pool := ecs.NewBoundedWorkerPool(1)

	var running atomic.Int32
	var maxRunning atomic.Int32
	task := func() error {
		n := running.Add(1)
		for {
			cur := maxRunning.Load()
			if n <= cur || maxRunning.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	err := pool.Scope(context.Background(), func(spawn ecs.Spawner) {
		spawn.Spawn(task)
		spawn.Spawn(task)
		spawn.Spawn(task)
	})
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if maxRunning.Load() > 1 {
		t.Fatalf("expected at most 1 task running concurrently, observed %d", maxRunning.Load())
	}
}

func TestBoundedWorkerPoolSpawnDuringScopeIsAwaited(t *testing.T) {
	pool := ecs.NewBoundedWorkerPool(0)

	var count atomic.Int32
	err := pool.Scope(context.Background(), func(spawn ecs.Spawner) {
		spawn.Spawn(func() error {
			count.Add(1)
			spawn.Spawn(func() error {
				count.Add(1)
				return nil
			})
			return nil
		})
	})
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if count.Load() != 2 {
		t.Fatalf("expected both the outer and nested spawn to run, got %d", count.Load())
	}
}

func TestDefaultWorkerPoolRunsTasks(t *testing.T) {
	pool := ecs.DefaultWorkerPool()
	var ran atomic.Bool
	err := pool.Scope(context.Background(), func(spawn ecs.Spawner) {
		spawn.Spawn(func() error {
			ran.Store(true)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if !ran.Load() {
		t.Fatalf("expected task to run")
	}
}
