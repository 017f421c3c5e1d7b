package sim

import "sync"

// NS16550A register offsets and bits, as documented by the datasheet.
const (
	uartRBR = 0 // receive buffer, transmit holding, divisor latch low
	uartIER = 1 // interrupt enable, divisor latch high
	uartIIR = 2 // interrupt identification, FIFO control
	uartLCR = 3
	uartMCR = 4
	uartLSR = 5
	uartMSR = 6
	uartSCR = 7

	lcrDLAB = 1 << 7
	mcrLoop = 1 << 4

	lsrDR   = 1 << 0
	lsrOE   = 1 << 1
	lsrTHRE = 1 << 5
	lsrTEMT = 1 << 6

	ierERBFI = 1 << 0
	ierETBEI = 1 << 1
	ierELSI  = 1 << 2

	iirNone = 0x01
	iirTHRE = 0x02
	iirRDA  = 0x04
	iirRLS  = 0x06
)

// UART models an NS16550A with disabled FIFOs.  The receiver holds a single
// byte, receiving another one before it was read sets the overrun flag.
// Transmission is instantaneous, so the transmit holding register is always
// empty.
type UART struct {
	mtx sync.Mutex

	rbr, ier, lcr, mcr, lsr, scr, fcr uint8
	dll, dlm                          uint8

	tx      []byte
	invalid int
}

func NewUART() *UART {
	return &UART{lsr: lsrTHRE | lsrTEMT}
}

// Receive puts c on the receive line.
func (u *UART) Receive(c byte) {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	u.receive(c)
}

func (u *UART) receive(c byte) {
	if u.lsr&lsrDR != 0 {
		u.lsr |= lsrOE
	}
	u.rbr = c
	u.lsr |= lsrDR
}

// DataReady reports whether a received byte wasn't read yet.
func (u *UART) DataReady() bool {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.lsr&lsrDR != 0
}

// Transmitted returns a copy of all bytes sent so far.
func (u *UART) Transmitted() []byte {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return append([]byte(nil), u.tx...)
}

func (u *UART) Divisor() uint16 {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return uint16(u.dlm)<<8 | uint16(u.dll)
}

func (u *UART) InterruptEnable() uint8 {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.ier
}

func (u *UART) LineControl() uint8 {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.lcr
}

// IRQ reports the level of the interrupt line.
func (u *UART) IRQ() bool {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.iir() != iirNone
}

func (u *UART) iir() uint8 {
	switch {
	case u.ier&ierELSI != 0 && u.lsr&lsrOE != 0:
		return iirRLS
	case u.ier&ierERBFI != 0 && u.lsr&lsrDR != 0:
		return iirRDA
	case u.ier&ierETBEI != 0 && u.lsr&lsrTHRE != 0:
		return iirTHRE
	}
	return iirNone
}

func (u *UART) Load8(off uintptr) uint8 {
	u.mtx.Lock()
	defer u.mtx.Unlock()

	dlab := u.lcr&lcrDLAB != 0
	switch off {
	case uartRBR:
		if dlab {
			return u.dll
		}
		u.lsr &^= lsrDR
		return u.rbr
	case uartIER:
		if dlab {
			return u.dlm
		}
		return u.ier
	case uartIIR:
		return u.iir()
	case uartLCR:
		return u.lcr
	case uartMCR:
		return u.mcr
	case uartLSR:
		lsr := u.lsr
		u.lsr &^= lsrOE
		return lsr
	case uartMSR:
		return 0
	case uartSCR:
		return u.scr
	}
	u.invalid++
	return 0
}

func (u *UART) Store8(off uintptr, v uint8) {
	u.mtx.Lock()
	defer u.mtx.Unlock()

	dlab := u.lcr&lcrDLAB != 0
	switch off {
	case uartRBR:
		if dlab {
			u.dll = v
		} else if u.mcr&mcrLoop != 0 {
			u.receive(v)
		} else {
			u.tx = append(u.tx, v)
		}
	case uartIER:
		if dlab {
			u.dlm = v
		} else {
			u.ier = v & 0x0f
		}
	case uartIIR:
		u.fcr = v
	case uartLCR:
		u.lcr = v
	case uartMCR:
		u.mcr = v & 0x1f
	case uartSCR:
		u.scr = v
	case uartLSR, uartMSR:
		// read-only
	default:
		u.invalid++
	}
}

func (u *UART) Load32(off uintptr) uint32     { u.badWidth(); return 0 }
func (u *UART) Store32(off uintptr, v uint32) { u.badWidth() }
func (u *UART) Load64(off uintptr) uint64     { u.badWidth(); return 0 }
func (u *UART) Store64(off uintptr, v uint64) { u.badWidth() }

func (u *UART) badWidth() {
	u.mtx.Lock()
	u.invalid++
	u.mtx.Unlock()
}

// Invalid returns the number of accesses that didn't hit a register.
func (u *UART) Invalid() int {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	return u.invalid
}
