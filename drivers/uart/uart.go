// Package uart drives NS16550A compatible serial ports.
//
// A port runs either synchronously, busy polling the line status for every
// byte, or asynchronously, buffering received and transmitted bytes in rings
// serviced by the port's interrupt handler.  The mode is chosen when the port
// is created and callers don't need to know which one is in use.
package uart

import (
	"github.com/clktmr/virt64/soc"
	"github.com/clktmr/virt64/soc/hart"
	"github.com/clktmr/virt64/soc/mmio"
	"github.com/clktmr/virt64/soc/plic"
)

// BufferSize is the capacity of the receive and transmit rings of
// asynchronous ports.
const BufferSize = 64

// Priority at which the interrupts of asynchronous ports are enabled.
const irqPriority = 1

type mode interface {
	writeByte(u *UART, c byte)
	readByte(u *UART) byte
}

type UART struct {
	regs registers
	mode mode
	irq  plic.IRQ

	// The interrupt handler is the producer of rx and the consumer of tx.
	rx, tx     soc.Ring
	rxNotEmpty hart.Cond
	txNotFull  hart.Cond

	rxBuf, txBuf [BufferSize]byte
}

// The divisor is set to 1, the lowest value, for the fastest baud rate.  The
// actual baud rate depends on the oscillator, in an emulator it doesn't
// matter.
func newUART(bus mmio.Bus) *UART {
	u := &UART{regs: newRegisters(bus)}

	latch := u.regs.latchDivisor()
	latch.setDivisor(1)
	latch.release(lcrWordLength8)

	u.regs.rbr() // flush receive buffer
	u.regs.ier.Store(0)
	return u
}

// NewSync returns a port that polls the hardware and doesn't use interrupts.
func NewSync(bus mmio.Bus) *UART {
	u := newUART(bus)
	u.mode = syncMode{}
	return u
}

// NewAsync returns an interrupt driven port.  Its interrupt handler is
// registered with d for irq and enabled.
func NewAsync(bus mmio.Bus, irq plic.IRQ, d *soc.Dispatcher) *UART {
	u := newUART(bus)
	u.mode = asyncMode{}
	u.irq = irq

	u.rx.Init(u.rxBuf[:])
	u.tx.Init(u.txBuf[:])
	u.rxNotEmpty.Init("rx not empty")
	u.txNotFull.Init("tx not full")

	d.Register(irq, irqPriority, u)
	d.Enable(irq)

	u.regs.ier.Store(ierDataReady)
	return u
}

// Async reports whether the port is interrupt driven.
func (u *UART) Async() bool {
	_, ok := u.mode.(asyncMode)
	return ok
}

// IRQ returns the port's interrupt or [plic.None] for synchronous ports.
func (u *UART) IRQ() plic.IRQ { return u.irq }

// Buffered returns the number of received bytes that can be read without
// blocking.
func (u *UART) Buffered() int {
	if !u.Async() {
		if u.regs.lsr.LoadBits(dataReady) != 0 {
			return 1
		}
		return 0
	}
	return u.rx.Len()
}

// WriteByte blocks until c was queued for transmission.
func (u *UART) WriteByte(c byte) error {
	u.mode.writeByte(u, c)
	return nil
}

// ReadByte blocks until a byte was received.
func (u *UART) ReadByte() (byte, error) {
	return u.mode.readByte(u), nil
}

func (u *UART) Write(p []byte) (n int, err error) {
	for _, c := range p {
		u.mode.writeByte(u, c)
	}
	return len(p), nil
}

// Read blocks until at least one byte was received and returns the bytes
// that are available without blocking further.
func (u *UART) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = u.mode.readByte(u)
	for n = 1; n < len(p) && u.Buffered() > 0; n++ {
		p[n] = u.mode.readByte(u)
	}
	return n, nil
}

// SetLoopback connects the transmitter to the receiver inside the chip.
func (u *UART) SetLoopback(enable bool) {
	if enable {
		u.regs.mcr.SetBits(mcrLoop)
	} else {
		u.regs.mcr.ClearBits(mcrLoop)
	}
}

type syncMode struct{}

func (syncMode) writeByte(u *UART, c byte) {
	for u.regs.lsr.LoadBits(thrEmpty) == 0 {
		// wait
	}
	u.regs.thr(c)
}

func (syncMode) readByte(u *UART) byte {
	for u.regs.lsr.LoadBits(dataReady) == 0 {
		// wait
	}
	return u.regs.rbr()
}

type asyncMode struct{}

func (asyncMode) writeByte(u *UART, c byte) {
	s := hart.Disable()
	defer hart.Restore(s)

	for u.tx.Full() {
		u.txNotFull.Wait()
	}
	u.tx.Put(c)
	u.regs.ier.SetBits(ierTHREmpty)
}

func (asyncMode) readByte(u *UART) byte {
	s := hart.Disable()
	defer hart.Restore(s)

	for u.rx.Empty() {
		u.rxNotEmpty.Wait()
	}
	c := u.rx.Get()
	// Might have been disabled by the interrupt handler if rx was full.
	u.regs.ier.SetBits(ierDataReady)
	return c
}

// HandleIRQ services the port's interrupt.
func (u *UART) HandleIRQ(irq plic.IRQ) {
	status := u.regs.lsr.Load()

	if status&overrunError != 0 {
		panic("uart: receive buffer overrun")
	}

	if status&dataReady != 0 {
		c := u.regs.rbr()
		if !u.rx.Full() {
			u.rx.Put(c)
			u.rxNotEmpty.Broadcast()
		} else {
			// Drop the byte and stop interrupting until a reader made room.
			u.regs.ier.ClearBits(ierDataReady)
		}
	}

	if status&thrEmpty != 0 {
		if !u.tx.Empty() {
			u.regs.thr(u.tx.Get())
			u.txNotFull.Broadcast()
		}
		if u.tx.Empty() {
			u.regs.ier.ClearBits(ierTHREmpty)
		}
	}
}
