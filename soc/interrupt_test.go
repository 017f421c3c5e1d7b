package soc_test

import (
	"testing"

	"github.com/clktmr/virt64/soc"
	"github.com/clktmr/virt64/soc/plic"
	"github.com/clktmr/virt64/soc/sim"
)

func newDispatcher() (*soc.Dispatcher, *sim.PLIC) {
	hw := sim.NewPLIC()
	c := plic.New(hw)
	c.Init()
	return soc.NewDispatcher(c), hw
}

func TestDispatch(t *testing.T) {
	d, hw := newDispatcher()

	var calls []plic.IRQ
	d.Register(10, 1, soc.HandlerFunc(func(irq plic.IRQ) {
		calls = append(calls, irq)
		if !hw.InFlight(10) {
			t.Error("handler called before claim")
		}
	}))
	d.Enable(10)

	hw.Raise(10)
	if irq := d.Handle(); irq != 10 {
		t.Fatalf("Handle: got %d, expected 10", irq)
	}
	if hw.InFlight(10) {
		t.Fatal("interrupt not completed")
	}
	if irq := d.Handle(); irq != plic.None {
		t.Fatalf("Handle without pending interrupt: got %d", irq)
	}
	if len(calls) != 1 || calls[0] != 10 {
		t.Fatalf("handler calls: %v", calls)
	}
}

func TestDispatchDisabled(t *testing.T) {
	d, hw := newDispatcher()
	called := false
	d.Register(3, 2, soc.HandlerFunc(func(plic.IRQ) { called = true }))

	hw.Raise(3)
	if irq := d.Handle(); irq != plic.None || called {
		t.Fatal("irq delivered before enable")
	}

	d.Enable(3)
	if d.PLIC().SourcePriority(3) != 2 {
		t.Fatal("registered priority not applied")
	}
	if irq := d.Handle(); irq != 3 || !called {
		t.Fatal("irq not delivered after enable")
	}

	d.Disable(3)
	called = false
	hw.Raise(3)
	if irq := d.Handle(); irq != plic.None || called {
		t.Fatal("irq delivered after disable")
	}
}

func TestDispatchUnhandled(t *testing.T) {
	d, hw := newDispatcher()
	d.PLIC().EnableIRQ(20, 1)
	hw.Raise(20)

	defer func() {
		if recover() == nil {
			t.Fatal("no panic on unhandled interrupt")
		}
	}()
	d.Handle()
}

// claimBus returns a fixed claim value, like a misbehaving controller.
type claimBus struct {
	*sim.PLIC
	claim uint32
}

func (b claimBus) Load32(off uintptr) uint32 {
	if off == 0x20_0004 {
		return b.claim
	}
	return b.PLIC.Load32(off)
}

func TestDispatchInvalidClaim(t *testing.T) {
	for _, claim := range []uint32{plic.SourceCount, plic.SourceCount + 1, 1<<32 - 1} {
		c := plic.New(claimBus{sim.NewPLIC(), claim})
		d := soc.NewDispatcher(c)
		func() {
			defer func() {
				if err := recover(); err != "unhandled interrupt" {
					t.Errorf("claim %#x: got panic %v", claim, err)
				}
			}()
			d.Handle()
		}()
	}
}

func TestHandlerLookup(t *testing.T) {
	d, _ := newDispatcher()
	if d.Handler(5) != nil {
		t.Fatal("handler before register")
	}
	d.Register(5, 1, soc.HandlerFunc(func(plic.IRQ) {}))
	if d.Handler(5) == nil || d.Handler(plic.None) != nil || d.Handler(plic.SourceCount) != nil {
		t.Fatal("wrong handler lookup")
	}
}
