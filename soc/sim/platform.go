package sim

import (
	"github.com/clktmr/virt64/soc/hart"
	"github.com/clktmr/virt64/soc/plic"
)

// maxDeliveries bounds [Platform.Step].  An interrupt that is still asserted
// after that many deliveries is never going to be cleared by its handler.
const maxDeliveries = 1 << 16

// Platform connects the device models the way the board does: the UARTs'
// interrupt lines are inputs of the PLIC, the PLIC drives the hart's
// external interrupt and the CLINT its timer interrupt.
type Platform struct {
	PLIC  *PLIC
	CLINT *CLINT
	UART  []*UART

	uartIRQ []plic.Source
}

// NewPlatform returns a platform with one UART per given interrupt source.
func NewPlatform(uartIRQs ...plic.Source) *Platform {
	p := &Platform{
		PLIC:    NewPLIC(),
		CLINT:   NewCLINT(),
		uartIRQ: uartIRQs,
	}
	for range uartIRQs {
		p.UART = append(p.UART, NewUART())
	}
	return p
}

func (p *Platform) updateLines() {
	for i, u := range p.UART {
		if u.IRQ() {
			p.PLIC.Raise(p.uartIRQ[i])
		} else {
			p.PLIC.Lower(p.uartIRQ[i])
		}
	}
}

// Step delivers interrupts to trap until none is pending and returns the
// number of delivered interrupts.  Like the hardware it only delivers
// interrupts enabled in the hart's mie register and waits for the global
// interrupt mask to be cleared.
func (p *Platform) Step(trap func(hart.Cause)) (n int) {
	for ; n < maxDeliveries; n++ {
		p.updateLines()

		var cause hart.Cause
		switch {
		case hart.IRQEnabled(hart.ExternalIRQ) && p.PLIC.Asserted(0):
			cause = hart.MachineExternal
		case hart.IRQEnabled(hart.TimerIRQ) && p.CLINT.Pending():
			cause = hart.MachineTimer
		default:
			return n
		}
		hart.Interrupt(func() { trap(cause) })
	}
	panic("sim: interrupt storm")
}
