package block

import (
	"unsafe"

	"github.com/joshuapare/refkit/gcrange"
	"github.com/joshuapare/refkit/internal/layout"
	"github.com/joshuapare/refkit/internal/memdiag"
	"github.com/joshuapare/refkit/mem"
)

// Array is a counted block holding a fixed-length trailing span of Ts
// in the same allocation. The length sits ahead of the control so the
// finalizer callbacks can recompute the block size from the block
// itself.
type Array[O Ordering, T any, A mem.Allocator] struct {
	length int
	ctrl   Control[O]
	alloc  A
	// elements trail the struct at arrayElemOff, aligned for T
}

// arrayElemOff returns the byte offset of the first element.
func arrayElemOff[O Ordering, T any, A mem.Allocator]() uintptr {
	var zero T
	return layout.AlignUp(unsafe.Sizeof(Array[O, T, A]{}), unsafe.Alignof(zero))
}

// arraySize returns the total block size for n elements, or 0 when the
// layout would overflow the per-allocation limit.
func arraySize[O Ordering, T any, A mem.Allocator](n int) uintptr {
	var zero T
	elem := uint64(unsafe.Sizeof(zero))
	if uint64(n) > maxBlockBytes || elem > maxBlockBytes {
		return 0
	}
	total := uint64(arrayElemOff[O, T, A]()) + uint64(n)*elem
	if total > maxBlockBytes {
		return 0
	}
	return uintptr(total)
}

// MakeArray allocates a counted array of n zero-valued elements with
// both counts at 0, meaning one shared owner.
func MakeArray[O Ordering, T any, A mem.Allocator](a A, n int) (*Array[O, T, A], error) {
	if n < 0 {
		return nil, ErrLength
	}
	size := arraySize[O, T, A](n)
	if size == 0 {
		return nil, ErrTooLarge
	}
	tab := arrayTable[O, T, A]()

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	// Alloc returns zeroed memory: counts sit at 0 and all n elements
	// are zero-constructed.
	blk := (*Array[O, T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.length = n
	blk.ctrl.hdr.tab = tab
	blk.alloc = a

	if tab.scan {
		gcrange.AddRange(unsafe.Pointer(blk), size)
	}
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(int64(n))
	return blk, nil
}

// MakeArrayFrom allocates a counted array constructed as a copy of src.
func MakeArrayFrom[O Ordering, T any, A mem.Allocator](a A, src []T) (*Array[O, T, A], error) {
	blk, err := MakeArray[O, T, A](a, len(src))
	if err != nil {
		return nil, err
	}
	copy(blk.Elems(), src)
	return blk, nil
}

// Len returns the element count fixed at construction.
func (b *Array[O, T, A]) Len() int { return b.length }

// Elems returns the element span. It stays valid until shared
// finalization runs.
func (b *Array[O, T, A]) Elems() []T {
	base := unsafe.Add(unsafe.Pointer(b), arrayElemOff[O, T, A]())
	return unsafe.Slice((*T)(base), b.length)
}

// Control exposes the block's counters.
func (b *Array[O, T, A]) Control() *Control[O] { return &b.ctrl }

// arrayTable interns the finalizer table for this configuration.
func arrayTable[O Ordering, T any, A mem.Allocator]() *table {
	return tableFor[Array[O, T, A]](func() *table {
		var probe Array[O, T, A]
		headerOff := unsafe.Offsetof(probe.ctrl) + unsafe.Offsetof(probe.ctrl.hdr)

		t := &table{scan: layout.HasPointers[T]()}

		fromHeader := func(h *header) *Array[O, T, A] {
			return (*Array[O, T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		destruct := func(blk *Array[O, T, A]) {
			if t.scan {
				gcrange.RemoveRange(unsafe.Pointer(blk))
			}
			// Destroy each element exactly once; the length survives
			// for deallocate to size the block.
			clear(blk.Elems())
			memdiag.RemoveConstructions(int64(blk.length))
		}
		deallocate := func(blk *Array[O, T, A]) {
			size := arraySize[O, T, A](blk.length)
			a := blk.alloc
			a.Free(unsafe.Slice((*byte)(unsafe.Pointer(blk)), size))
			memdiag.RemoveAllocation(size)
		}

		t.onZeroShared = func(h *header) {
			blk := fromHeader(h)
			destruct(blk)
			blk.ctrl.ReleaseWeak()
		}
		t.onZeroWeak = func(h *header) {
			deallocate(fromHeader(h))
		}
		t.manualDestroy = func(h *header, dealloc bool) {
			blk := fromHeader(h)
			destruct(blk)
			if dealloc {
				deallocate(blk)
			}
		}
		return t
	})
}
