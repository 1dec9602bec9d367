package rc

import (
	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/mem"
)

// Adopted is a goroutine-safe counted handle to a value the caller
// already owns, paired with the deleter that tears it down. The zero
// value is an empty handle.
type Adopted[T any] struct {
	blk *block.External[block.Atomic, T, mem.Heap]
}

// Adopt takes shared ownership of p. When the last handle releases,
// del runs exactly once with p; a nil del skips teardown. Use it to
// count references to resources with their own cleanup, such as
// pooled buffers or C-side handles.
func Adopt[T any](p *T, del func(*T)) (Adopted[T], error) {
	blk, err := block.MakeExternal[block.Atomic](mem.Heap{}, p, del)
	if err != nil {
		return Adopted[T]{}, err
	}
	return Adopted[T]{blk: blk}, nil
}

// Get returns the adopted value, or nil for an empty handle.
func (a *Adopted[T]) Get() *T {
	if a.blk == nil {
		return nil
	}
	return a.blk.Value()
}

// Clone returns a new handle owning the same value.
func (a *Adopted[T]) Clone() Adopted[T] {
	if a.blk == nil {
		return Adopted[T]{}
	}
	a.blk.Control().Retain()
	return Adopted[T]{blk: a.blk}
}

// Release drops this handle's ownership and empties it. The deleter
// runs when the last handle releases.
func (a *Adopted[T]) Release() {
	if a.blk == nil {
		return
	}
	a.blk.Control().Release()
	a.blk = nil
}

// UseCount reports the number of handles owning the value.
func (a *Adopted[T]) UseCount() int {
	if a.blk == nil {
		return 0
	}
	return int(a.blk.Control().SharedCount()) + 1
}
