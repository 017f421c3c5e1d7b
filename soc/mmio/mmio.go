// Package mmio provides access to memory mapped device registers.
//
// Drivers never dereference device addresses themselves. They compute a byte
// offset into the device's register window and access it through a [Bus].
// On the target the bus is a [Window] onto physical memory, in hosted builds
// it is usually a device model from package sim.
package mmio

import (
	"sync/atomic"
	"unsafe"

	"github.com/clktmr/virt64/debug"
)

// Bus performs register accesses at byte offsets relative to a device's base
// address. Every access must be performed with exactly the given width, since
// devices may assign side effects to reads as well as to writes.
type Bus interface {
	Load8(off uintptr) uint8
	Store8(off uintptr, v uint8)
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
	Load64(off uintptr) uint64
	Store64(off uintptr, v uint64)
}

// Window is a [Bus] onto a range of the physical address space.
type Window struct {
	base uintptr
	size uintptr
}

// Map returns a window of size bytes starting at physical address base.
func Map(base, size uintptr) *Window {
	return &Window{base: base, size: size}
}

func (w *Window) Addr() uintptr { return w.base }
func (w *Window) Size() uintptr { return w.size }

func (w *Window) ptr(off, width uintptr) unsafe.Pointer {
	debug.Assert(off+width <= w.size, "mmio: access outside of window")
	debug.Assert(off&(width-1) == 0, "mmio: unaligned access")
	return unsafe.Pointer(w.base + off)
}

func (w *Window) Load8(off uintptr) uint8 {
	return load8((*uint8)(w.ptr(off, 1)))
}

func (w *Window) Store8(off uintptr, v uint8) {
	store8((*uint8)(w.ptr(off, 1)), v)
}

func (w *Window) Load32(off uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(w.ptr(off, 4)))
}

func (w *Window) Store32(off uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(w.ptr(off, 4)), v)
}

func (w *Window) Load64(off uintptr) uint64 {
	return atomic.LoadUint64((*uint64)(w.ptr(off, 8)))
}

func (w *Window) Store64(off uintptr, v uint64) {
	atomic.StoreUint64((*uint64)(w.ptr(off, 8)), v)
}

// sync/atomic has no byte sized operations. Keeping these out of line stops
// the compiler from merging or eliding the accesses.
//
//go:noinline
//go:nosplit
func load8(p *uint8) uint8 { return *p }

//go:noinline
//go:nosplit
func store8(p *uint8, v uint8) { *p = v }
