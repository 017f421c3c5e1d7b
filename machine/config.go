// Package machine describes the board and boots its devices.  On the target
// it is imported by the runtime and installs the trap handlers and the
// system console.
package machine

import (
	"github.com/clktmr/virt64/drivers/uart"
	"github.com/clktmr/virt64/soc/clint"
	"github.com/clktmr/virt64/soc/mmio"
	"github.com/clktmr/virt64/soc/plic"
)

// Number of serial ports used by the board.
const NCOM = 2

const (
	ConsoleCOM = 0 // polled, carries the runtime's output
	AsyncCOM   = 1 // interrupt driven
)

// Config holds the physical layout of a board.
type Config struct {
	PLICBase   uintptr
	CLINTBase  uintptr
	UARTBase   uintptr
	UARTStride uintptr  // distance between two UARTs' register blocks
	UARTIRQ    plic.IRQ // interrupt of the first UART, the others follow
	Timebase   uint64   // mtime frequency in Hz
}

// QEMUVirt is the QEMU virt machine.  It has a single NS16550A at 0x10000000
// unless started with additional serial ports.
var QEMUVirt = Config{
	PLICBase:   0x0c00_0000,
	CLINTBase:  0x0200_0000,
	UARTBase:   0x1000_0000,
	UARTStride: 0x100,
	UARTIRQ:    10,
	Timebase:   10_000_000,
}

// COMIRQ returns the interrupt of serial port n.
func (c *Config) COMIRQ(n int) plic.IRQ {
	return c.UARTIRQ + plic.IRQ(n)
}

// Buses are the register windows of a board's devices.
type Buses struct {
	PLIC  mmio.Bus
	CLINT mmio.Bus
	COM   [NCOM]mmio.Bus
}

// Map returns the physical register windows described by c.
func (c *Config) Map() Buses {
	b := Buses{
		PLIC:  mmio.Map(c.PLICBase, plic.Size),
		CLINT: mmio.Map(c.CLINTBase, clint.Size),
	}
	for i := range b.COM {
		b.COM[i] = mmio.Map(c.UARTBase+uintptr(i)*c.UARTStride, uart.Size)
	}
	return b
}
