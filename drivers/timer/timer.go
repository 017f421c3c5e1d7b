// Package timer provides the periodic system tick.
//
// The machine timer interrupt fires ten times a second.  Each expiration
// broadcasts [Timer.Tick10Hz], every tenth one additionally [Timer.Tick1Hz].
// Threads wait on the conditions with interrupts disabled:
//
//	s := hart.Disable()
//	t.Tick1Hz.Wait()
//	hart.Restore(s)
package timer

import (
	"sync/atomic"

	"github.com/clktmr/virt64/soc/clint"
	"github.com/clktmr/virt64/soc/hart"
	"github.com/clktmr/virt64/soc/mmio"
)

// Frequency of the fast tick.
const Hz = 10

type Timer struct {
	clint  *clint.Timer
	period uint64

	count10 atomic.Uint64
	count1  atomic.Uint64

	Tick10Hz hart.Cond
	Tick1Hz  hart.Cond
}

// New returns the timer of hart 0 for a timebase running at freq ticks per
// second.  The timer doesn't fire until [Timer.Start] is called.
func New(bus mmio.Bus, freq uint64) *Timer {
	t := &Timer{
		clint:  clint.New(bus, 0),
		period: freq / Hz,
	}
	t.Tick10Hz.Init("10Hz tick")
	t.Tick1Hz.Init("1Hz tick")

	t.clint.SetCompare(clint.Never)
	hart.DisableIRQ(hart.TimerIRQ)
	return t
}

// Period returns the number of timebase ticks between two expirations.
func (t *Timer) Period() uint64 { return t.period }

// Start resets the timebase and enables the timer interrupt.
func (t *Timer) Start() {
	t.clint.SetTime(0)
	t.clint.SetCompare(t.period)
	hart.EnableIRQ(hart.TimerIRQ)
}

// Handle services the timer interrupt.
//
//go:nosplit
func (t *Timer) Handle() {
	n := t.count10.Add(1)
	t.Tick10Hz.Broadcast()
	if n%Hz == 0 {
		t.count1.Add(1)
		t.Tick1Hz.Broadcast()
	}

	// Drift accumulates with the interrupt latency.
	t.clint.SetCompare(t.clint.Time() + t.period)
}

// Ticks10Hz returns the number of expirations so far.
func (t *Timer) Ticks10Hz() uint64 { return t.count10.Load() }

// Ticks1Hz returns the number of full seconds so far.
func (t *Timer) Ticks1Hz() uint64 { return t.count1.Load() }

// Sleep blocks until n 10Hz ticks have passed.
func (t *Timer) Sleep(n uint64) {
	s := hart.Disable()
	defer hart.Restore(s)

	wakeup := t.count10.Load() + n
	for t.count10.Load() < wakeup {
		t.Tick10Hz.Wait()
	}
}
