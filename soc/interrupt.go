package soc

import (
	"github.com/clktmr/virt64/debug"
	"github.com/clktmr/virt64/soc/plic"
)

// Handler services a device's interrupt.  HandleIRQ is called with
// interrupts disabled and must not block.
type Handler interface {
	HandleIRQ(irq plic.IRQ)
}

// HandlerFunc adapts a function to a [Handler].
type HandlerFunc func(irq plic.IRQ)

func (f HandlerFunc) HandleIRQ(irq plic.IRQ) { f(irq) }

type isr struct {
	handler Handler
	prio    int
}

// Dispatcher routes the interrupts claimed from the PLIC to their handlers.
type Dispatcher struct {
	plic *plic.Controller
	isrs [plic.SourceCount]isr
}

func NewDispatcher(c *plic.Controller) *Dispatcher {
	return &Dispatcher{plic: c}
}

func (d *Dispatcher) PLIC() *plic.Controller { return d.plic }

// Register installs the handler for irq.  The interrupt stays disabled until
// [Dispatcher.Enable] is called.
func (d *Dispatcher) Register(irq plic.IRQ, prio int, h Handler) {
	debug.Assert(irq > plic.None && irq < plic.SourceCount, "invalid irq")
	debug.Assert(prio > 0 && prio <= plic.PrioMax, "invalid irq priority")
	if irq <= plic.None || irq >= plic.SourceCount {
		return
	}
	debug.Assert(d.isrs[irq].handler == nil, "irq already registered")
	d.isrs[irq] = isr{h, prio}
}

// Handler returns the handler registered for irq.
func (d *Dispatcher) Handler(irq plic.IRQ) Handler {
	if irq <= plic.None || irq >= plic.SourceCount {
		return nil
	}
	return d.isrs[irq].handler
}

// Enable sets the source priority of irq to the one it was registered with.
func (d *Dispatcher) Enable(irq plic.IRQ) {
	if irq <= plic.None || irq >= plic.SourceCount {
		return
	}
	debug.Assert(d.isrs[irq].handler != nil, "enable irq without handler")
	d.plic.EnableIRQ(irq, d.isrs[irq].prio)
}

func (d *Dispatcher) Disable(irq plic.IRQ) {
	d.plic.DisableIRQ(irq)
}

// Handle services the external interrupt: It claims the pending interrupt,
// calls its handler and completes it.  Returns the claimed irq, which is
// [plic.None] if there was nothing to claim.
//
//go:nosplit
func (d *Dispatcher) Handle() plic.IRQ {
	irq := d.plic.ClaimIRQ()
	if irq == plic.None {
		return irq
	}
	h := d.Handler(irq)
	if h == nil {
		panic("unhandled interrupt")
	}
	h.HandleIRQ(irq)
	d.plic.CompleteIRQ(irq)
	return irq
}
