package block

import (
	"unsafe"

	"github.com/joshuapare/refkit/gcrange"
	"github.com/joshuapare/refkit/internal/layout"
	"github.com/joshuapare/refkit/internal/memdiag"
	"github.com/joshuapare/refkit/mem"
)

// UniqueObject is a single-owner block with no counters: destruction
// is commanded through Destroy instead of being triggered by a count.
// Its finalizer table carries only the manual entry.
type UniqueObject[T any, A mem.Allocator] struct {
	hdr   header
	alloc A
	value T
}

// MakeUniqueObject allocates a single-owner block holding a copy of v.
func MakeUniqueObject[T any, A mem.Allocator](a A, v T) (*UniqueObject[T, A], error) {
	tab := uniqueObjectTable[T, A]()
	size := unsafe.Sizeof(UniqueObject[T, A]{})

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	blk := (*UniqueObject[T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.hdr.tab = tab
	blk.alloc = a
	blk.value = v

	if tab.scan {
		gcrange.AddRange(unsafe.Pointer(blk), size)
	}
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(1)
	return blk, nil
}

// Value returns the payload. The pointer stays valid until Destroy.
func (b *UniqueObject[T, A]) Value() *T { return &b.value }

// Destroy finalizes the payload, and releases the block's memory too
// when deallocate is true. Call it once per constructed payload; after
// Destroy(false) the zeroed storage may be reused through Emplace.
func (b *UniqueObject[T, A]) Destroy(deallocate bool) {
	b.hdr.tab.manualDestroy(&b.hdr, deallocate)
}

// Emplace constructs a new payload in storage previously cleared by
// Destroy(false), restarting the destroy cycle.
func (b *UniqueObject[T, A]) Emplace(v T) {
	b.value = v
	if b.hdr.tab.scan {
		gcrange.AddRange(unsafe.Pointer(b), unsafe.Sizeof(*b))
	}
	memdiag.AddConstructions(1)
}

func uniqueObjectTable[T any, A mem.Allocator]() *table {
	return tableFor[UniqueObject[T, A]](func() *table {
		var probe UniqueObject[T, A]
		headerOff := unsafe.Offsetof(probe.hdr)
		size := unsafe.Sizeof(probe)

		t := &table{scan: layout.HasPointers[T]()}

		fromHeader := func(h *header) *UniqueObject[T, A] {
			return (*UniqueObject[T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		t.manualDestroy = func(h *header, dealloc bool) {
			blk := fromHeader(h)
			if t.scan {
				gcrange.RemoveRange(unsafe.Pointer(blk))
			}
			var zero T
			blk.value = zero
			memdiag.RemoveConstructions(1)
			if dealloc {
				a := blk.alloc
				a.Free(unsafe.Slice((*byte)(unsafe.Pointer(blk)), size))
				memdiag.RemoveAllocation(size)
			}
		}
		return t
	})
}

// UniqueArray is a single-owner array block. As with Array, the length
// leads the struct and elements trail it.
type UniqueArray[T any, A mem.Allocator] struct {
	length int
	hdr    header
	alloc  A
	// elements trail the struct at uniqueElemOff, aligned for T
}

func uniqueElemOff[T any, A mem.Allocator]() uintptr {
	var zero T
	return layout.AlignUp(unsafe.Sizeof(UniqueArray[T, A]{}), unsafe.Alignof(zero))
}

func uniqueArraySize[T any, A mem.Allocator](n int) uintptr {
	var zero T
	elem := uint64(unsafe.Sizeof(zero))
	if uint64(n) > maxBlockBytes || elem > maxBlockBytes {
		return 0
	}
	total := uint64(uniqueElemOff[T, A]()) + uint64(n)*elem
	if total > maxBlockBytes {
		return 0
	}
	return uintptr(total)
}

// MakeUniqueArray allocates a single-owner array of n zero-valued
// elements.
func MakeUniqueArray[T any, A mem.Allocator](a A, n int) (*UniqueArray[T, A], error) {
	if n < 0 {
		return nil, ErrLength
	}
	size := uniqueArraySize[T, A](n)
	if size == 0 {
		return nil, ErrTooLarge
	}
	tab := uniqueArrayTable[T, A]()

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	blk := (*UniqueArray[T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.length = n
	blk.hdr.tab = tab
	blk.alloc = a

	if tab.scan {
		gcrange.AddRange(unsafe.Pointer(blk), size)
	}
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(int64(n))
	return blk, nil
}

// MakeUniqueArrayFrom allocates a single-owner array copied from src.
func MakeUniqueArrayFrom[T any, A mem.Allocator](a A, src []T) (*UniqueArray[T, A], error) {
	blk, err := MakeUniqueArray[T, A](a, len(src))
	if err != nil {
		return nil, err
	}
	copy(blk.Elems(), src)
	return blk, nil
}

// Len returns the element count fixed at construction.
func (b *UniqueArray[T, A]) Len() int { return b.length }

// Elems returns the element span. It stays valid until Destroy.
func (b *UniqueArray[T, A]) Elems() []T {
	base := unsafe.Add(unsafe.Pointer(b), uniqueElemOff[T, A]())
	return unsafe.Slice((*T)(base), b.length)
}

// Destroy finalizes all elements, and releases the block's memory too
// when deallocate is true. Call it once.
func (b *UniqueArray[T, A]) Destroy(deallocate bool) {
	b.hdr.tab.manualDestroy(&b.hdr, deallocate)
}

func uniqueArrayTable[T any, A mem.Allocator]() *table {
	return tableFor[UniqueArray[T, A]](func() *table {
		var probe UniqueArray[T, A]
		headerOff := unsafe.Offsetof(probe.hdr)

		t := &table{scan: layout.HasPointers[T]()}

		fromHeader := func(h *header) *UniqueArray[T, A] {
			return (*UniqueArray[T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		t.manualDestroy = func(h *header, dealloc bool) {
			blk := fromHeader(h)
			if t.scan {
				gcrange.RemoveRange(unsafe.Pointer(blk))
			}
			// length survives the clear so the size below stays right.
			clear(blk.Elems())
			memdiag.RemoveConstructions(int64(blk.length))
			if dealloc {
				size := uniqueArraySize[T, A](blk.length)
				a := blk.alloc
				a.Free(unsafe.Slice((*byte)(unsafe.Pointer(blk)), size))
				memdiag.RemoveAllocation(size)
			}
		}
		return t
	})
}

// UniqueExternal is a single-owner wrapper around an externally owned
// pointer and its deleter.
type UniqueExternal[T any, A mem.Allocator] struct {
	hdr   header
	alloc A
	data  *T
	del   func(*T)
}

// MakeUniqueExternal allocates a single-owner wrapper around data.
// Destroy calls del exactly once with data; a nil del skips teardown.
func MakeUniqueExternal[T any, A mem.Allocator](a A, data *T, del func(*T)) (*UniqueExternal[T, A], error) {
	tab := uniqueExternalTable[T, A]()
	size := unsafe.Sizeof(UniqueExternal[T, A]{})

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	blk := (*UniqueExternal[T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.hdr.tab = tab
	blk.alloc = a
	blk.data = data
	blk.del = del

	externalPins.Store(&blk.hdr, externalPin{data: data, del: del})
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(1)
	return blk, nil
}

// Value returns the managed pointer.
func (b *UniqueExternal[T, A]) Value() *T { return b.data }

// Destroy runs the deleter, and releases the wrapper's memory too when
// deallocate is true. Call it once.
func (b *UniqueExternal[T, A]) Destroy(deallocate bool) {
	b.hdr.tab.manualDestroy(&b.hdr, deallocate)
}

func uniqueExternalTable[T any, A mem.Allocator]() *table {
	return tableFor[UniqueExternal[T, A]](func() *table {
		var probe UniqueExternal[T, A]
		headerOff := unsafe.Offsetof(probe.hdr)
		size := unsafe.Sizeof(probe)

		t := &table{}

		fromHeader := func(h *header) *UniqueExternal[T, A] {
			return (*UniqueExternal[T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		t.manualDestroy = func(h *header, dealloc bool) {
			blk := fromHeader(h)
			data, del := blk.data, blk.del
			blk.data, blk.del = nil, nil
			externalPins.Delete(&blk.hdr)
			if del != nil {
				del(data)
			}
			memdiag.RemoveConstructions(1)
			if dealloc {
				a := blk.alloc
				a.Free(unsafe.Slice((*byte)(unsafe.Pointer(blk)), size))
				memdiag.RemoveAllocation(size)
			}
		}
		return t
	})
}
