package rc

import (
	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/mem"
)

// Rc is the single-goroutine counterpart of Shared: the same counting
// discipline on plain counters, for values that never cross a
// goroutine boundary. The zero value is an empty handle.
type Rc[T any] struct {
	blk *block.Object[block.Local, T, mem.Heap]
}

// NewRc allocates a value owned by the returned handle.
func NewRc[T any](v T) (Rc[T], error) {
	blk, err := block.MakeObject[block.Local](mem.Heap{}, v)
	if err != nil {
		return Rc[T]{}, err
	}
	return Rc[T]{blk: blk}, nil
}

// Get returns the owned value, or nil for an empty handle.
func (r *Rc[T]) Get() *T {
	if r.blk == nil {
		return nil
	}
	return r.blk.Value()
}

// Clone returns a new handle owning the same value.
func (r *Rc[T]) Clone() Rc[T] {
	if r.blk == nil {
		return Rc[T]{}
	}
	r.blk.Control().Retain()
	return Rc[T]{blk: r.blk}
}

// Release drops this handle's ownership and empties it.
func (r *Rc[T]) Release() {
	if r.blk == nil {
		return
	}
	r.blk.Control().Release()
	r.blk = nil
}

// Downgrade returns a weak handle to the same value.
func (r *Rc[T]) Downgrade() RcWeak[T] {
	if r.blk == nil {
		return RcWeak[T]{}
	}
	r.blk.Control().RetainWeak()
	return RcWeak[T]{blk: r.blk}
}

// UseCount reports the number of handles owning the value.
func (r *Rc[T]) UseCount() int {
	if r.blk == nil {
		return 0
	}
	return int(r.blk.Control().SharedCount()) + 1
}

// Equal reports whether both handles own the same value.
func (r *Rc[T]) Equal(o *Rc[T]) bool {
	return r.blk == o.blk
}

// RcWeak is a non-owning handle to an Rc-managed value.
type RcWeak[T any] struct {
	blk *block.Object[block.Local, T, mem.Heap]
}

// Lock attempts to upgrade to an owning handle, reporting false once
// the value has been finalized.
func (w *RcWeak[T]) Lock() (Rc[T], bool) {
	if w.blk == nil || !w.blk.Control().TryRetain() {
		return Rc[T]{}, false
	}
	return Rc[T]{blk: w.blk}, true
}

// Expired reports whether the value has been finalized.
func (w *RcWeak[T]) Expired() bool {
	return w.blk == nil || w.blk.Control().SharedCount() == block.Dead
}

// UseCount reports the number of owning handles, 0 once the value has
// been finalized.
func (w *RcWeak[T]) UseCount() int {
	if w.blk == nil {
		return 0
	}
	return int(w.blk.Control().SharedCount()) + 1
}

// Clone returns a new weak handle to the same value.
func (w *RcWeak[T]) Clone() RcWeak[T] {
	if w.blk == nil {
		return RcWeak[T]{}
	}
	w.blk.Control().RetainWeak()
	return RcWeak[T]{blk: w.blk}
}

// Release drops this weak handle and empties it.
func (w *RcWeak[T]) Release() {
	if w.blk == nil {
		return
	}
	w.blk.Control().ReleaseWeak()
	w.blk = nil
}
