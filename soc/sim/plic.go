// Package sim models the devices of the QEMU virt board for hosted builds.
//
// The models implement [mmio.Bus], so drivers run unmodified against them.
// Register layouts are defined here independently of the drivers, which
// makes address arithmetic errors in a driver show up as accesses to the
// wrong register.
package sim

import (
	"sync"

	"github.com/clktmr/virt64/soc/plic"
)

const (
	plicPriorityBase  = 0x00_0000
	plicPendingBase   = 0x00_1000
	plicEnableBase    = 0x00_2000
	plicEnableStride  = 0x80
	plicContextBase   = 0x20_0000
	plicContextStride = 0x1000

	plicWords    = plic.SourceCount / 32
	plicPrioMask = 0x7
)

// PLIC models a platform-level interrupt controller.  Sources are level
// triggered: [PLIC.Raise] and [PLIC.Lower] drive the pending bit.  A claimed
// source is in flight and can't be claimed again until it was completed.
type PLIC struct {
	mtx sync.Mutex

	priority  [plic.SourceCount]uint32
	pending   [plicWords]uint32
	enable    [plic.ContextCount][plicWords]uint32
	threshold [plic.ContextCount]uint32
	inflight  [plicWords]uint32

	writes  int
	invalid int
}

func NewPLIC() *PLIC {
	return &PLIC{}
}

// Writes returns the number of register stores so far.
func (p *PLIC) Writes() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.writes
}

// Invalid returns the number of accesses that didn't hit a register.
func (p *PLIC) Invalid() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.invalid
}

func (p *PLIC) Raise(src plic.Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	setBit(p.pending[:], src)
}

func (p *PLIC) Lower(src plic.Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	clearBit(p.pending[:], src)
}

// InFlight reports whether src was claimed but not yet completed.
func (p *PLIC) InFlight(src plic.Source) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return bit(p.inflight[:], src)
}

// Asserted reports whether the context's interrupt line is asserted, i.e.
// whether a claim would return a source.
func (p *PLIC) Asserted(ctx plic.Context) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.best(ctx) != 0
}

func (p *PLIC) best(ctx plic.Context) (best plic.Source) {
	prio := p.threshold[ctx]
	for src := plic.Source(1); src < plic.SourceCount; src++ {
		if !bit(p.pending[:], src) || !bit(p.enable[ctx][:], src) || bit(p.inflight[:], src) {
			continue
		}
		if p.priority[src] > prio {
			best, prio = src, p.priority[src]
		}
	}
	return
}

func (p *PLIC) claim(ctx plic.Context) uint32 {
	src := p.best(ctx)
	if src != 0 {
		clearBit(p.pending[:], src)
		setBit(p.inflight[:], src)
	}
	return uint32(src)
}

func (p *PLIC) complete(ctx plic.Context, v uint32) {
	src := plic.Source(v)
	if src >= plic.SourceCount || !bit(p.enable[ctx][:], src) {
		return
	}
	clearBit(p.inflight[:], src)
}

func (p *PLIC) Load32(off uintptr) uint32 {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	switch {
	case off < plicPendingBase:
		return p.priority[(off-plicPriorityBase)/4]
	case off >= plicPendingBase && off < plicPendingBase+plicWords*4:
		return p.pending[(off-plicPendingBase)/4]
	case off >= plicEnableBase && off < plicEnableBase+plic.ContextCount*plicEnableStride:
		ctx, word := (off-plicEnableBase)/plicEnableStride, (off-plicEnableBase)%plicEnableStride/4
		return p.enable[ctx][word]
	case off >= plicContextBase && off < plicContextBase+plic.ContextCount*plicContextStride:
		ctx := plic.Context((off - plicContextBase) / plicContextStride)
		switch (off - plicContextBase) % plicContextStride {
		case 0:
			return p.threshold[ctx]
		case 4:
			return p.claim(ctx)
		}
	}
	p.invalid++
	return 0
}

func (p *PLIC) Store32(off uintptr, v uint32) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.writes++
	switch {
	case off < plicPendingBase:
		p.priority[(off-plicPriorityBase)/4] = v & plicPrioMask
		return
	case off >= plicPendingBase && off < plicPendingBase+plicWords*4:
		return // read-only
	case off >= plicEnableBase && off < plicEnableBase+plic.ContextCount*plicEnableStride:
		ctx, word := (off-plicEnableBase)/plicEnableStride, (off-plicEnableBase)%plicEnableStride/4
		p.enable[ctx][word] = v
		return
	case off >= plicContextBase && off < plicContextBase+plic.ContextCount*plicContextStride:
		ctx := plic.Context((off - plicContextBase) / plicContextStride)
		switch (off - plicContextBase) % plicContextStride {
		case 0:
			p.threshold[ctx] = v & plicPrioMask
			return
		case 4:
			p.complete(ctx, v)
			return
		}
	}
	p.invalid++
}

func (p *PLIC) Load8(off uintptr) uint8       { p.badWidth(); return 0 }
func (p *PLIC) Store8(off uintptr, v uint8)   { p.badWidth() }
func (p *PLIC) Load64(off uintptr) uint64     { p.badWidth(); return 0 }
func (p *PLIC) Store64(off uintptr, v uint64) { p.badWidth() }

func (p *PLIC) badWidth() {
	p.mtx.Lock()
	p.invalid++
	p.mtx.Unlock()
}

func bit(bitmap []uint32, src plic.Source) bool {
	return bitmap[src/32]&(1<<(src%32)) != 0
}

func setBit(bitmap []uint32, src plic.Source) {
	bitmap[src/32] |= 1 << (src % 32)
}

func clearBit(bitmap []uint32, src plic.Source) {
	bitmap[src/32] &^= 1 << (src % 32)
}
