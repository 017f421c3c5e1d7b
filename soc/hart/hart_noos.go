//go:build noos

package hart

import (
	"runtime"
	"sync/atomic"
)

const mstatusMIE = 1 << 3

// State is the interrupt enable state returned by [Disable].
type State uintptr

// Disable masks interrupts and returns the previous state.
//
//go:nosplit
func Disable() State {
	return State(clearMstatusMIE())
}

// Restore restores the interrupt state returned by [Disable].
//
//go:nosplit
func Restore(s State) {
	if s&mstatusMIE != 0 {
		setMstatusMIE()
	}
}

// Interrupt runs handler with interrupts masked.
func Interrupt(handler func()) {
	s := Disable()
	handler()
	Restore(s)
}

//go:nosplit
func EnableIRQ(irq IRQ) { setMIE(1 << irq) }

//go:nosplit
func DisableIRQ(irq IRQ) { clearMIE(1 << irq) }

//go:nosplit
func IRQEnabled(irq IRQ) bool { return readMIE()&(1<<irq) != 0 }

// Cond is a condition that threads wait on with interrupts masked and that
// interrupt handlers broadcast.
type Cond struct {
	name string
	seq  atomic.Uint32
}

// Init must be called once before the condition is used.
func (c *Cond) Init(name string) {
	c.name = name
}

func (c *Cond) Name() string { return c.name }

// Wait unmasks interrupts, yields until the next [Cond.Broadcast] and masks
// interrupts again before returning.  The broadcast count is sampled before
// unmasking, so a broadcast between the caller's check of its predicate and
// the wait isn't lost.  Must be called with interrupts disabled.
func (c *Cond) Wait() {
	seq := c.seq.Load()
	setMstatusMIE()
	for c.seq.Load() == seq {
		runtime.Gosched()
	}
	clearMstatusMIE()
}

// Broadcast wakes all waiting threads.  It is safe to call from an interrupt
// handler.
//
//go:nosplit
func (c *Cond) Broadcast() {
	c.seq.Add(1)
}

// Implemented in csr_riscv64.s
func clearMstatusMIE() uintptr
func setMstatusMIE()
func setMIE(mask uintptr)
func clearMIE(mask uintptr)
func readMIE() uintptr
