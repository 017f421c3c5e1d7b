package plic

import "github.com/clktmr/virt64/debug"

// IRQ is an interrupt number as seen by drivers.  Interrupts are always
// routed to context 0.
type IRQ int

// None is returned by [Controller.ClaimIRQ] if no interrupt is pending.  It
// is never a valid interrupt to enable or disable.
const None IRQ = 0

func (c *Controller) EnableIRQ(irq IRQ, prio int) {
	if irq < 0 || prio < 0 {
		return
	}
	c.SetSourcePriority(Source(irq), uint32(prio))
}

func (c *Controller) DisableIRQ(irq IRQ) {
	if irq <= None {
		debug.Printf("plic: DisableIRQ called with irq = %d", irq)
		return
	}
	c.SetSourcePriority(Source(irq), 0)
}

func (c *Controller) ClaimIRQ() IRQ {
	return IRQ(c.ClaimContextInterrupt(0))
}

func (c *Controller) CompleteIRQ(irq IRQ) {
	if irq < 0 {
		return
	}
	c.CompleteContextInterrupt(0, Source(irq))
}
