package soc

import (
	"sync/atomic"

	"github.com/clktmr/virt64/debug"
)

// Ring is a byte queue shared between a thread and an interrupt handler.
// Only a single producer and a single consumer are allowed, where one of them
// is usually the interrupt handler.  The producer owns the tail, the consumer
// owns the head.
//
// Both indexes only ever increase and are reduced modulo the capacity when
// accessing the storage.  The capacity must be a power of two, so wrapping
// the counters doesn't break the modulo arithmetic.
type Ring struct {
	head atomic.Uint32 // next element to remove, owned by consumer
	tail atomic.Uint32 // next free slot, owned by producer
	buf  []byte
}

// Init resets the ring to empty and uses buf as its storage.
func (r *Ring) Init(buf []byte) {
	debug.Assert(len(buf) > 0 && len(buf)&(len(buf)-1) == 0,
		"ring capacity must be a power of two")
	r.buf = buf
	r.head.Store(0)
	r.tail.Store(0)
}

func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of queued bytes.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

func (r *Ring) Empty() bool {
	return r.head.Load() == r.tail.Load()
}

func (r *Ring) Full() bool {
	return int(r.tail.Load()-r.head.Load()) == len(r.buf)
}

// Put appends c.  Must not be called if the ring is full.
//
//go:nosplit
func (r *Ring) Put(c byte) {
	debug.Assert(!r.Full(), "put to full ring")
	tail := r.tail.Load()
	r.buf[tail%uint32(len(r.buf))] = c
	// The atomic store orders the data write before the index update, the
	// consumer won't see the slot before it was written.
	r.tail.Store(tail + 1)
}

// Get removes and returns the oldest byte.  Must not be called if the ring
// is empty.
//
//go:nosplit
func (r *Ring) Get() (c byte) {
	debug.Assert(!r.Empty(), "get from empty ring")
	head := r.head.Load()
	c = r.buf[head%uint32(len(r.buf))]
	r.head.Store(head + 1)
	return
}
