//go:build noos

package timer_test

import (
	"testing"
	"time"

	"github.com/clktmr/virt64/machine"
	"github.com/clktmr/virt64/soc/hart"
)

func TestSleep(t *testing.T) {
	tm := machine.Default.Timer
	start := tm.Ticks10Hz()
	tm.Sleep(3)
	if ticks := tm.Ticks10Hz() - start; ticks < 3 {
		t.Fatalf("woke up after %d ticks", ticks)
	}
}

func TestTick1Hz(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	tm := machine.Default.Timer

	s := hart.Disable()
	start := tm.Ticks1Hz()
	for tm.Ticks1Hz() == start {
		tm.Tick1Hz.Wait()
	}
	ticks10, ticks1 := tm.Ticks10Hz(), tm.Ticks1Hz()
	hart.Restore(s)

	if ticks10%10 != 0 || ticks1 != ticks10/10 {
		t.Fatalf("%d 10Hz ticks but %d 1Hz ticks", ticks10, ticks1)
	}
}

// The runtime keeps its own clock.  Both must keep running with the tick
// timer started and agree roughly on the elapsed time.
func TestRuntimeClock(t *testing.T) {
	tm := machine.Default.Timer
	start, ticks := time.Now(), tm.Ticks10Hz()

	tm.Sleep(5)
	elapsed := time.Since(start)
	ticks = tm.Ticks10Hz() - ticks

	if ticks < 5 {
		t.Fatalf("%d ticks", ticks)
	}
	expected := time.Duration(ticks) * time.Second / 10
	if elapsed < expected/2 || elapsed > 2*expected {
		t.Fatalf("runtime clock advanced %v during %d ticks", elapsed, ticks)
	}
}
