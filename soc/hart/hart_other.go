//go:build !noos

package hart

import (
	"sync"
	"sync/atomic"

	"github.com/clktmr/virt64/debug"
)

// In hosted builds the hart is simulated.  Running with interrupts masked
// means owning line, and an interrupt handler can only run while nobody else
// owns it, which is exactly when the hardware would take the interrupt.
var (
	line sync.Mutex
	mie  atomic.Uint64
)

// State is the interrupt enable state returned by [Disable].
type State uint8

const enabled State = 1

// Disable masks interrupts and returns the previous state.  Masking is not
// reentrant in hosted builds.
func Disable() State {
	line.Lock()
	return enabled
}

// Restore restores the interrupt state returned by [Disable].
func Restore(s State) {
	if s == enabled {
		line.Unlock()
	}
}

// Interrupt runs handler the way the hardware runs a trap handler: as soon
// as interrupts are unmasked and with interrupts masked for its duration.
func Interrupt(handler func()) {
	line.Lock()
	defer line.Unlock()
	handler()
}

func EnableIRQ(irq IRQ)       { mie.Or(1 << irq) }
func DisableIRQ(irq IRQ)      { mie.And(^(uint64(1) << irq)) }
func IRQEnabled(irq IRQ) bool { return mie.Load()&(1<<irq) != 0 }

// Cond is a condition that threads wait on with interrupts masked and that
// interrupt handlers broadcast.
type Cond struct {
	name string
	c    sync.Cond
}

// Init must be called once before the condition is used.
func (c *Cond) Init(name string) {
	c.name = name
	c.c.L = &line
}

func (c *Cond) Name() string { return c.name }

// Wait unmasks interrupts, blocks until the next [Cond.Broadcast] and masks
// interrupts again before returning.  There is no window between the
// caller's check of its predicate and blocking in which a broadcast could get
// lost.  Must be called with interrupts disabled.
func (c *Cond) Wait() {
	debug.Assert(c.c.L != nil, "hart: wait on uninitialized condition")
	c.c.Wait()
}

// Broadcast wakes all waiting threads.  It is safe to call from an interrupt
// handler.
func (c *Cond) Broadcast() {
	c.c.Broadcast()
}
