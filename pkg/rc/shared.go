package rc

import (
	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/mem"
)

// Shared is a goroutine-safe counted handle to a heap-backed value.
// The zero value is an empty handle: Get returns nil, UseCount returns
// 0, and Release is a no-op.
type Shared[T any] struct {
	blk *block.Object[block.Atomic, T, mem.Heap]
}

// NewShared allocates a value owned by the returned handle.
func NewShared[T any](v T) (Shared[T], error) {
	blk, err := block.MakeObject[block.Atomic](mem.Heap{}, v)
	if err != nil {
		return Shared[T]{}, err
	}
	return Shared[T]{blk: blk}, nil
}

// Get returns the owned value, or nil for an empty handle.
func (s *Shared[T]) Get() *T {
	if s.blk == nil {
		return nil
	}
	return s.blk.Value()
}

// Clone returns a new handle owning the same value.
func (s *Shared[T]) Clone() Shared[T] {
	if s.blk == nil {
		return Shared[T]{}
	}
	s.blk.Control().Retain()
	return Shared[T]{blk: s.blk}
}

// Release drops this handle's ownership and empties it. The value is
// finalized when the last shared handle releases.
func (s *Shared[T]) Release() {
	if s.blk == nil {
		return
	}
	s.blk.Control().Release()
	s.blk = nil
}

// Downgrade returns a weak handle to the same value without extending
// its lifetime.
func (s *Shared[T]) Downgrade() Weak[T] {
	if s.blk == nil {
		return Weak[T]{}
	}
	s.blk.Control().RetainWeak()
	return Weak[T]{blk: s.blk}
}

// UseCount reports the number of shared handles owning the value.
// The result is advisory once other goroutines hold handles.
func (s *Shared[T]) UseCount() int {
	if s.blk == nil {
		return 0
	}
	return int(s.blk.Control().SharedCount()) + 1
}

// Equal reports whether both handles own the same value.
func (s *Shared[T]) Equal(o *Shared[T]) bool {
	return s.blk == o.blk
}

// Weak is a non-owning handle: it keeps the value's storage reachable
// but not the value alive. The zero value is an empty handle.
type Weak[T any] struct {
	blk *block.Object[block.Atomic, T, mem.Heap]
}

// Lock attempts to upgrade to a shared handle. It reports false once
// the value has been finalized, and never fails while a shared handle
// still owns the value.
func (w *Weak[T]) Lock() (Shared[T], bool) {
	if w.blk == nil || !w.blk.Control().TryRetain() {
		return Shared[T]{}, false
	}
	return Shared[T]{blk: w.blk}, true
}

// Expired reports whether the value has been finalized. A false result
// is already stale when shared handles live on other goroutines; use
// Lock to both check and claim.
func (w *Weak[T]) Expired() bool {
	return w.blk == nil || w.blk.Control().SharedCount() == block.Dead
}

// UseCount reports the number of shared handles owning the value, 0
// once it has been finalized.
func (w *Weak[T]) UseCount() int {
	if w.blk == nil {
		return 0
	}
	return int(w.blk.Control().SharedCount()) + 1
}

// Clone returns a new weak handle to the same value.
func (w *Weak[T]) Clone() Weak[T] {
	if w.blk == nil {
		return Weak[T]{}
	}
	w.blk.Control().RetainWeak()
	return Weak[T]{blk: w.blk}
}

// Release drops this weak handle and empties it.
func (w *Weak[T]) Release() {
	if w.blk == nil {
		return
	}
	w.blk.Control().ReleaseWeak()
	w.blk = nil
}
