package rc

import (
	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/mem"
)

// Unique is a single-owner handle: no counters, one Release. The zero
// value is an empty handle.
type Unique[T any] struct {
	blk *block.UniqueObject[T, mem.Heap]
}

// NewUnique allocates a value owned by the returned handle.
func NewUnique[T any](v T) (Unique[T], error) {
	blk, err := block.MakeUniqueObject(mem.Heap{}, v)
	if err != nil {
		return Unique[T]{}, err
	}
	return Unique[T]{blk: blk}, nil
}

// Get returns the owned value, or nil for an empty handle.
func (u *Unique[T]) Get() *T {
	if u.blk == nil {
		return nil
	}
	return u.blk.Value()
}

// Release finalizes the value, frees its storage, and empties the
// handle. Further calls are no-ops.
func (u *Unique[T]) Release() {
	if u.blk == nil {
		return
	}
	u.blk.Destroy(true)
	u.blk = nil
}

// Swap replaces the owned value with v and returns the previous one.
// Swapping into an empty handle allocates.
func (u *Unique[T]) Swap(v T) (T, error) {
	var old T
	if u.blk == nil {
		blk, err := block.MakeUniqueObject(mem.Heap{}, v)
		if err != nil {
			return old, err
		}
		u.blk = blk
		return old, nil
	}
	old = *u.blk.Value()
	u.blk.Destroy(false)
	u.blk.Emplace(v)
	return old, nil
}
