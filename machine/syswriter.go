//go:build noos

package machine

import (
	"embedded/mmio"
	"unsafe"
)

// Registers of the console UART used before the board was booted.
const (
	earlyTHR      = 0
	earlyLSR      = 5
	earlyTHRE     = 1 << 5
	earlyUARTBase = 0x1000_0000
)

var earlyUART = (*[8]mmio.U8)(unsafe.Pointer(uintptr(earlyUARTBase)))

// Writes to the console UART, regardless of its state.  Polls the line status
// for every byte and doesn't translate line endings.  Only intended as a fail
// safe logger in very early boot and for panics.
//
//go:nowritebarrierrec
//go:nosplit
//go:linkname DefaultWrite runtime.defaultWrite
func DefaultWrite(fd int, p []byte) int {
	for _, c := range p {
		for earlyUART[earlyLSR].Load()&earlyTHRE == 0 {
			// wait
		}
		earlyUART[earlyTHR].Store(c)
	}
	return len(p)
}
