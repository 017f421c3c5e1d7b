package uart

import "github.com/clktmr/virt64/soc/mmio"

// Register offsets.  Some offsets are shared by two registers, which one is
// accessed depends on the access direction or the DLAB bit in lcr.
const (
	rbrOffset = 0 // read: receive buffer, write: transmit holding
	ierOffset = 1
	iirOffset = 2 // read: interrupt identification, write: FIFO control
	lcrOffset = 3
	mcrOffset = 4
	lsrOffset = 5
	msrOffset = 6
	scrOffset = 7

	dllOffset = 0 // DLAB=1
	dlmOffset = 1 // DLAB=1

	// Size of the register window.
	Size = 8
)

type lineStatus uint8

const (
	dataReady lineStatus = 1 << iota
	overrunError
	parityError
	framingError
	breakInterrupt
	thrEmpty // transmit holding register empty
	txEmpty  // transmitter idle
	fifoError
)

type intrEnable uint8

const (
	ierDataReady intrEnable = 1 << iota
	ierTHREmpty
	ierLineStatus
	ierModemStatus
)

type lineControl uint8

const (
	lcrWordLength8 lineControl = 0x3
	lcrStopBits2   lineControl = 1 << 2
	lcrParity      lineControl = 1 << 3
	lcrDLAB        lineControl = 1 << 7 // divisor latch access
)

type modemControl uint8

const (
	mcrDTR modemControl = 1 << iota
	mcrRTS
	mcrOut1
	mcrOut2
	mcrLoop
)

// registers is the operating mode view of the register block, i.e. with
// the DLAB bit cleared.
type registers struct {
	bus mmio.Bus

	ier mmio.R8[intrEnable]
	iir mmio.R8[uint8]
	fcr mmio.R8[uint8]
	lcr mmio.R8[lineControl]
	mcr mmio.R8[modemControl]
	lsr mmio.R8[lineStatus]
	msr mmio.R8[uint8]
	scr mmio.R8[uint8]
}

func newRegisters(bus mmio.Bus) registers {
	return registers{
		bus: bus,
		ier: mmio.Reg8[intrEnable](bus, ierOffset),
		iir: mmio.Reg8[uint8](bus, iirOffset),
		fcr: mmio.Reg8[uint8](bus, iirOffset),
		lcr: mmio.Reg8[lineControl](bus, lcrOffset),
		mcr: mmio.Reg8[modemControl](bus, mcrOffset),
		lsr: mmio.Reg8[lineStatus](bus, lsrOffset),
		msr: mmio.Reg8[uint8](bus, msrOffset),
		scr: mmio.Reg8[uint8](bus, scrOffset),
	}
}

// rbr reads the receive buffer, which clears dataReady.
func (r *registers) rbr() byte { return r.bus.Load8(rbrOffset) }

// thr writes the transmit holding register.
func (r *registers) thr(c byte) { r.bus.Store8(rbrOffset, c) }

// latchDivisor sets DLAB and returns the configuration mode view.  The
// operating mode registers at offsets 0 and 1 must not be used until the
// latch was released.
func (r *registers) latchDivisor() divisorLatch {
	r.lcr.Store(lcrDLAB)
	return divisorLatch{
		dll: mmio.Reg8[uint8](r.bus, dllOffset),
		dlm: mmio.Reg8[uint8](r.bus, dlmOffset),
		lcr: r.lcr,
	}
}

// divisorLatch is the configuration mode view of the register block, i.e.
// with the DLAB bit set.
type divisorLatch struct {
	dll, dlm mmio.R8[uint8]
	lcr      mmio.R8[lineControl]
}

func (d divisorLatch) setDivisor(div uint16) {
	d.dll.Store(uint8(div))
	d.dlm.Store(uint8(div >> 8))
}

// release clears DLAB and sets the line control to lc, which switches the
// register block back to operating mode.
func (d divisorLatch) release(lc lineControl) {
	d.lcr.Store(lc &^ lcrDLAB)
}
