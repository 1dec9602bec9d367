package rc

import (
	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/mem"
)

// SharedSlice is a goroutine-safe counted handle to a fixed-length
// element block. All clones see the same elements; the elements are
// finalized together when the last handle releases. The zero value is
// an empty handle with no elements.
type SharedSlice[T any] struct {
	blk *block.Array[block.Atomic, T, mem.Heap]
}

// NewSharedSlice allocates n zero-valued elements owned by the
// returned handle.
func NewSharedSlice[T any](n int) (SharedSlice[T], error) {
	blk, err := block.MakeArray[block.Atomic, T](mem.Heap{}, n)
	if err != nil {
		return SharedSlice[T]{}, err
	}
	return SharedSlice[T]{blk: blk}, nil
}

// NewSharedSliceFrom allocates a counted copy of src.
func NewSharedSliceFrom[T any](src []T) (SharedSlice[T], error) {
	blk, err := block.MakeArrayFrom[block.Atomic](mem.Heap{}, src)
	if err != nil {
		return SharedSlice[T]{}, err
	}
	return SharedSlice[T]{blk: blk}, nil
}

// Elems returns the element span, nil for an empty handle. The span
// stays valid while any handle owns it.
func (s *SharedSlice[T]) Elems() []T {
	if s.blk == nil {
		return nil
	}
	return s.blk.Elems()
}

// Len returns the element count.
func (s *SharedSlice[T]) Len() int {
	if s.blk == nil {
		return 0
	}
	return s.blk.Len()
}

// Clone returns a new handle owning the same elements.
func (s *SharedSlice[T]) Clone() SharedSlice[T] {
	if s.blk == nil {
		return SharedSlice[T]{}
	}
	s.blk.Control().Retain()
	return SharedSlice[T]{blk: s.blk}
}

// Release drops this handle's ownership and empties it.
func (s *SharedSlice[T]) Release() {
	if s.blk == nil {
		return
	}
	s.blk.Control().Release()
	s.blk = nil
}

// UseCount reports the number of handles owning the elements.
func (s *SharedSlice[T]) UseCount() int {
	if s.blk == nil {
		return 0
	}
	return int(s.blk.Control().SharedCount()) + 1
}
