package sim

import (
	"sync"

	"github.com/clktmr/virt64/soc/clint"
)

// CLINT models the machine timer of hart 0.  Time only passes when
// [CLINT.Advance] is called.
type CLINT struct {
	mtx sync.Mutex

	mtime, mtimecmp uint64
	invalid         int
}

func NewCLINT() *CLINT {
	return &CLINT{mtimecmp: clint.Never}
}

func (c *CLINT) Advance(ticks uint64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.mtime += ticks
}

func (c *CLINT) Time() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.mtime
}

func (c *CLINT) Deadline() uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.mtimecmp
}

// Pending reports whether the timer interrupt is pending.
func (c *CLINT) Pending() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.mtime >= c.mtimecmp
}

func (c *CLINT) Load64(off uintptr) uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch off {
	case clint.TimeOffset:
		return c.mtime
	case clint.CompareOffset(0):
		return c.mtimecmp
	}
	c.invalid++
	return 0
}

func (c *CLINT) Store64(off uintptr, v uint64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch off {
	case clint.TimeOffset:
		c.mtime = v
	case clint.CompareOffset(0):
		c.mtimecmp = v
	default:
		c.invalid++
	}
}

func (c *CLINT) Load8(off uintptr) uint8       { c.badWidth(); return 0 }
func (c *CLINT) Store8(off uintptr, v uint8)   { c.badWidth() }
func (c *CLINT) Load32(off uintptr) uint32     { c.badWidth(); return 0 }
func (c *CLINT) Store32(off uintptr, v uint32) { c.badWidth() }

func (c *CLINT) badWidth() {
	c.mtx.Lock()
	c.invalid++
	c.mtx.Unlock()
}

// Invalid returns the number of accesses that didn't hit a register.
func (c *CLINT) Invalid() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.invalid
}
