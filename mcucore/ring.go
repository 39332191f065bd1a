package mcucore

import "sync/atomic"

// Ring is a single-producer/single-consumer, fixed-capacity, lock-free
// circular buffer of T. Capacity must be a power of two. It never allocates
// after New: Push/Pop only touch the pre-sized backing array and two atomic
// indices, matching the MCU's no-heap-after-init requirement.
type Ring[T any] struct {
	buf  []T
	mask uint32
	rd   atomic.Uint32 // consumer index, monotonic modulo size
	wr   atomic.Uint32 // producer index, monotonic modulo size
}

// NewRing returns a Ring with the given power-of-two capacity.
func NewRing[T any](size int) *Ring[T] {
	if size < 2 || size&(size-1) != 0 {
		panic("mcucore: ring size must be a power of two >= 2")
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint32(size - 1),
	}
}

func (r *Ring[T]) size() uint32 { return uint32(len(r.buf)) }

// Len returns the number of items available to the consumer.
func (r *Ring[T]) Len() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Space returns the number of free slots available to the producer.
func (r *Ring[T]) Space() int {
	return int(r.size() - (r.wr.Load() - r.rd.Load()))
}

// Push appends v. Reports false (and drops v) if the ring is full; the
// caller is responsible for counting/logging the drop per the QueueFull
// error policy.
func (r *Ring[T]) Push(v T) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd == r.size() {
		return false
	}
	r.buf[wr&r.mask] = v
	r.wr.Store(wr + 1)
	return true
}

// Pop removes and returns the oldest item. ok is false if the ring is empty.
func (r *Ring[T]) Pop() (v T, ok bool) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if rd == wr {
		return v, false
	}
	v = r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	return v, true
}
