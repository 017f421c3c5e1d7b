// Package plic drives the RISC-V Platform-Level Interrupt Controller.
//
// Every operation validates its source and context numbers before it
// computes a register address.  Invalid arguments are ignored: the write is
// dropped, queries return false or [None].  A misbehaving driver must not
// bring down the kernel.
package plic

import "github.com/clktmr/virt64/soc/mmio"

// Source identifies an interrupt source, i.e. a device's interrupt line.
type Source uint32

// Context identifies an interrupt target, i.e. a privilege mode on a hart.
type Context uint32

type Controller struct {
	bus mmio.Bus
}

// New returns a controller whose registers are accessed through bus.
func New(bus mmio.Bus) *Controller {
	return &Controller{bus: bus}
}

// Init disables every source by setting its priority to 0 and enables every
// source for context 0.  Drivers assign a priority when they enable their
// interrupt, until then "enabled with priority 0" masks the source.
func (c *Controller) Init() {
	for src := Source(0); src < SourceCount; src++ {
		c.SetSourcePriority(src, 0)
		c.EnableSourceForContext(0, src)
	}
	c.SetContextThreshold(0, 0)
}

func (c *Controller) SetSourcePriority(src Source, level uint32) {
	if src >= SourceCount || level > PrioMax {
		return
	}
	c.bus.Store32(priorityOffset(src), level)
}

func (c *Controller) SourcePriority(src Source) uint32 {
	if src >= SourceCount {
		return 0
	}
	return c.bus.Load32(priorityOffset(src))
}

// SourcePending reports the source's bit in the pending bitmap.
func (c *Controller) SourcePending(src Source) bool {
	if src >= SourceCount {
		return false
	}
	return c.bus.Load32(pendingOffset(src))&sourceBit(src) != 0
}

func (c *Controller) EnableSourceForContext(ctx Context, src Source) {
	if ctx >= ContextCount || src >= SourceCount {
		return
	}
	off := enableOffset(ctx, src)
	c.bus.Store32(off, c.bus.Load32(off)|sourceBit(src))
}

func (c *Controller) DisableSourceForContext(ctx Context, src Source) {
	if ctx >= ContextCount || src >= SourceCount {
		return
	}
	off := enableOffset(ctx, src)
	c.bus.Store32(off, c.bus.Load32(off)&^sourceBit(src))
}

func (c *Controller) SourceEnabled(ctx Context, src Source) bool {
	if ctx >= ContextCount || src >= SourceCount {
		return false
	}
	return c.bus.Load32(enableOffset(ctx, src))&sourceBit(src) != 0
}

// SetContextThreshold sets the priority a source must exceed to interrupt
// the context.
func (c *Controller) SetContextThreshold(ctx Context, level uint32) {
	if ctx >= ContextCount || level > PrioMax {
		return
	}
	c.bus.Store32(thresholdOffset(ctx), level)
}

func (c *Controller) ContextThreshold(ctx Context) uint32 {
	if ctx >= ContextCount {
		return 0
	}
	return c.bus.Load32(thresholdOffset(ctx))
}

// ClaimContextInterrupt returns the highest priority source that is pending,
// enabled and above the context's threshold.  The hardware won't offer the
// source again until it was completed.  Returns 0 if there is none.
func (c *Controller) ClaimContextInterrupt(ctx Context) Source {
	if ctx >= ContextCount {
		return 0
	}
	return Source(c.bus.Load32(claimOffset(ctx)))
}

// CompleteContextInterrupt signals that a claimed source was serviced.
func (c *Controller) CompleteContextInterrupt(ctx Context, src Source) {
	if ctx >= ContextCount || src >= SourceCount {
		return
	}
	c.bus.Store32(claimOffset(ctx), uint32(src))
}
