// Package clint provides the machine timer registers of the Core Local
// Interruptor.
package clint

import "github.com/clktmr/virt64/soc/mmio"

const (
	softwareBase = 0x0000 // msip, one word per hart
	compareBase  = 0x4000 // mtimecmp, one dword per hart

	// TimeOffset is the offset of the free running mtime counter.
	TimeOffset = 0xbff8

	// Size of the register window.
	Size = 0x1_0000
)

// CompareOffset returns the offset of hart's mtimecmp register.
func CompareOffset(hart int) uintptr {
	return compareBase + uintptr(hart)*8
}

// Never is a compare value the counter won't reach.
const Never = ^uint64(0)

// Timer is the machine timer of a single hart.  The timer interrupt is
// pending as long as Time() >= Compare().
type Timer struct {
	time    mmio.R64[uint64]
	compare mmio.R64[uint64]
}

func New(bus mmio.Bus, hart int) *Timer {
	return &Timer{
		time:    mmio.Reg64[uint64](bus, TimeOffset),
		compare: mmio.Reg64[uint64](bus, CompareOffset(hart)),
	}
}

func (t *Timer) Time() uint64        { return t.time.Load() }
func (t *Timer) SetTime(v uint64)    { t.time.Store(v) }
func (t *Timer) Compare() uint64     { return t.compare.Load() }
func (t *Timer) SetCompare(v uint64) { t.compare.Store(v) }
