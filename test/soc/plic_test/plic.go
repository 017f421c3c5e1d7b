//go:build noos

package plic_test

import (
	"testing"

	"github.com/clktmr/virt64/machine"
	"github.com/clktmr/virt64/soc/plic"
)

func TestBootState(t *testing.T) {
	c := machine.Default.PLIC
	async := plic.Source(machine.QEMUVirt.COMIRQ(machine.AsyncCOM))
	console := plic.Source(machine.QEMUVirt.COMIRQ(machine.ConsoleCOM))

	if c.ContextThreshold(0) != 0 {
		t.Errorf("threshold %d", c.ContextThreshold(0))
	}
	if c.SourcePriority(async) == 0 {
		t.Error("serial port interrupt disabled")
	}
	if c.SourcePriority(console) != 0 {
		t.Error("console interrupt enabled")
	}
	for src := plic.Source(1); src < plic.SourceCount; src += 37 {
		if !c.SourceEnabled(0, src) {
			t.Errorf("source %d not enabled for context 0", src)
		}
	}
}

func TestPriorityReadback(t *testing.T) {
	c := machine.Default.PLIC
	src := plic.Source(machine.QEMUVirt.COMIRQ(machine.ConsoleCOM))
	t.Cleanup(func() { c.SetSourcePriority(src, 0) })

	for level := uint32(0); level <= plic.PrioMax; level++ {
		c.SetSourcePriority(src, level)
		if got := c.SourcePriority(src); got != level {
			t.Errorf("set %d, got %d", level, got)
		}
	}
	c.SetSourcePriority(src, 2)
	c.SetSourcePriority(src, plic.PrioMax+1)
	if got := c.SourcePriority(src); got != 2 {
		t.Errorf("invalid level changed priority to %d", got)
	}
}
