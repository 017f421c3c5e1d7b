// Package hart controls interrupt delivery to the single hardware thread the
// kernel runs on.
//
// Masking interrupts is the only mutual exclusion primitive: code that shares
// state with an interrupt handler checks and updates that state with
// interrupts disabled, and blocks on a [Cond] which unmasks interrupts while
// waiting.
//
//	s := hart.Disable()
//	for !ready() {
//		cond.Wait()
//	}
//	consume()
//	hart.Restore(s)
package hart

// IRQ is a machine-level local interrupt, i.e. a bit in the mie register.
type IRQ uint

const (
	SoftwareIRQ IRQ = 3  // inter-processor interrupt
	TimerIRQ    IRQ = 7  // mtime reached mtimecmp
	ExternalIRQ IRQ = 11 // routed through the PLIC
)

// Cause is the value of the mcause register after a trap.
type Cause uint64

const interruptBit Cause = 1 << 63

const (
	MachineSoftware = interruptBit | Cause(SoftwareIRQ)
	MachineTimer    = interruptBit | Cause(TimerIRQ)
	MachineExternal = interruptBit | Cause(ExternalIRQ)
)

// Interrupt reports whether the trap was caused by an interrupt rather than
// an exception.
func (c Cause) Interrupt() bool { return c&interruptBit != 0 }

// IRQ returns the local interrupt that caused the trap.
func (c Cause) IRQ() IRQ { return IRQ(c &^ interruptBit) }

// Critical runs f with interrupts disabled.
func Critical(f func()) {
	s := Disable()
	defer Restore(s)
	f()
}
