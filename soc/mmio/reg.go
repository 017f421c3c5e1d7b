package mmio

// R8 is a byte wide register holding values of type T.
type R8[T ~uint8] struct {
	bus Bus
	off uintptr
}

func Reg8[T ~uint8](bus Bus, off uintptr) R8[T] { return R8[T]{bus, off} }

func (r R8[T]) Load() T             { return T(r.bus.Load8(r.off)) }
func (r R8[T]) Store(v T)           { r.bus.Store8(r.off, uint8(v)) }
func (r R8[T]) LoadBits(mask T) T   { return r.Load() & mask }
func (r R8[T]) SetBits(mask T)      { r.Store(r.Load() | mask) }
func (r R8[T]) ClearBits(mask T)    { r.Store(r.Load() &^ mask) }
func (r R8[T]) StoreBits(mask, v T) { r.Store(r.Load()&^mask | v&mask) }
func (r R8[T]) Offset() uintptr     { return r.off }

// R32 is a 32 bit register holding values of type T.
type R32[T ~uint32] struct {
	bus Bus
	off uintptr
}

func Reg32[T ~uint32](bus Bus, off uintptr) R32[T] { return R32[T]{bus, off} }

func (r R32[T]) Load() T             { return T(r.bus.Load32(r.off)) }
func (r R32[T]) Store(v T)           { r.bus.Store32(r.off, uint32(v)) }
func (r R32[T]) LoadBits(mask T) T   { return r.Load() & mask }
func (r R32[T]) SetBits(mask T)      { r.Store(r.Load() | mask) }
func (r R32[T]) ClearBits(mask T)    { r.Store(r.Load() &^ mask) }
func (r R32[T]) StoreBits(mask, v T) { r.Store(r.Load()&^mask | v&mask) }
func (r R32[T]) Offset() uintptr     { return r.off }

// R64 is a 64 bit register holding values of type T.
type R64[T ~uint64] struct {
	bus Bus
	off uintptr
}

func Reg64[T ~uint64](bus Bus, off uintptr) R64[T] { return R64[T]{bus, off} }

func (r R64[T]) Load() T         { return T(r.bus.Load64(r.off)) }
func (r R64[T]) Store(v T)       { r.bus.Store64(r.off, uint64(v)) }
func (r R64[T]) Offset() uintptr { return r.off }
