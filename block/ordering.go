package block

import "sync/atomic"

// Ordering selects the memory discipline for a block configuration's
// counters at compile time: Atomic for blocks shared across goroutines,
// Local for single-goroutine ownership. The discipline is a type
// parameter of the block, never a runtime branch, so single-goroutine
// configurations pay nothing for atomicity they do not need.
type Ordering interface {
	Load(p *int32) int32
	Add(p *int32, delta int32) int32
	CompareAndSwap(p *int32, old, new int32) bool
}

// Atomic performs counter operations with sync/atomic semantics.
type Atomic struct{}

func (Atomic) Load(p *int32) int32 { return atomic.LoadInt32(p) }

func (Atomic) Add(p *int32, delta int32) int32 { return atomic.AddInt32(p, delta) }

func (Atomic) CompareAndSwap(p *int32, old, new int32) bool {
	return atomic.CompareAndSwapInt32(p, old, new)
}

// Local performs plain counter operations for blocks owned by a single
// goroutine at a time.
type Local struct{}

func (Local) Load(p *int32) int32 { return *p }

func (Local) Add(p *int32, delta int32) int32 {
	*p += delta
	return *p
}

func (Local) CompareAndSwap(p *int32, old, new int32) bool {
	if *p != old {
		return false
	}
	*p = new
	return true
}

// Compile-time interface checks
var (
	_ Ordering = Atomic{}
	_ Ordering = Local{}
)
