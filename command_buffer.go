package ecs

import "sync"

// CommandBuffer accumulates deferred commands during a scheduler tick.
// The executor takes one from its CommandBufferPool for each system
// invocation; the system pushes structural mutations (spawn, despawn,
// add/remove component) to it through SystemContext.Defer instead of
// touching the world directly, and the executor applies every system's
// queued commands to the world once the tick's systems have all finished.
// This keeps structural changes out of the access-set algebra entirely:
// a system never needs read/write access to "the world" as a resource.
// A single buffer is owned by exactly one system invocation at a time and
// is not safe for concurrent use.
type CommandBuffer struct {
	commands []Command
}

// NewCommandBuffer creates an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Len reports how many commands are queued.
func (b *CommandBuffer) Len() int {
	return len(b.commands)
}

// Push appends a command to the buffer.
func (b *CommandBuffer) Push(cmd Command) {
	if cmd == nil {
		return
	}
	b.commands = append(b.commands, cmd)
}

// Drain returns queued commands and resets the buffer.
func (b *CommandBuffer) Drain() []Command {
	drained := b.commands
	b.commands = nil
	return drained
}

// Snapshot returns the current command count so callers can restore later.
func (b *CommandBuffer) Snapshot() int {
	return len(b.commands)
}

// Restore truncates the command buffer back to the provided snapshot.
func (b *CommandBuffer) Restore(snapshot int) {
	if snapshot < 0 {
		snapshot = 0
	}
	if snapshot >= len(b.commands) {
		return
	}
	b.commands = b.commands[:snapshot]
}

// CommandBufferPool reuses buffers to reduce allocations.
type CommandBufferPool struct {
	pool sync.Pool
}

// NewCommandBufferPool constructs a pool that returns fresh buffers.
func NewCommandBufferPool() *CommandBufferPool {
	p := &CommandBufferPool{}
	p.pool.New = func() any { return NewCommandBuffer() }
	return p
}

// Get retrieves a buffer from the pool.
func (p *CommandBufferPool) Get() *CommandBuffer {
	return p.pool.Get().(*CommandBuffer)
}

// Put returns a buffer to the pool after clearing it.
func (p *CommandBufferPool) Put(buf *CommandBuffer) {
	if buf == nil {
		return
	}
	buf.Drain()
	p.pool.Put(buf)
}
