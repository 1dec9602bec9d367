package block

import (
	"unsafe"

	"github.com/joshuapare/refkit/gcrange"
	"github.com/joshuapare/refkit/internal/layout"
	"github.com/joshuapare/refkit/internal/memdiag"
	"github.com/joshuapare/refkit/mem"
)

// Object is a counted block holding one inline payload of type T: the
// control, the allocator instance (zero bytes when A is stateless), and
// the payload share a single allocation.
type Object[O Ordering, T any, A mem.Allocator] struct {
	ctrl  Control[O]
	alloc A
	value T
}

// MakeObject allocates and constructs an Object with both counts at 0,
// meaning one shared owner. Allocation failure returns ErrAllocFailed.
func MakeObject[O Ordering, T any, A mem.Allocator](a A, v T) (*Object[O, T, A], error) {
	tab := objectTable[O, T, A]()
	size := unsafe.Sizeof(Object[O, T, A]{})

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	// Alloc returns zeroed memory, so both counts already sit at 0.
	blk := (*Object[O, T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.ctrl.hdr.tab = tab
	blk.alloc = a
	blk.value = v

	if tab.scan {
		gcrange.AddRange(unsafe.Pointer(blk), size)
	}
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(1)
	return blk, nil
}

// Value returns the payload. The pointer stays valid until shared
// finalization runs.
func (b *Object[O, T, A]) Value() *T { return &b.value }

// Control exposes the block's counters.
func (b *Object[O, T, A]) Control() *Control[O] { return &b.ctrl }

// objectTable interns the finalizer table for this configuration.
func objectTable[O Ordering, T any, A mem.Allocator]() *table {
	return tableFor[Object[O, T, A]](func() *table {
		var probe Object[O, T, A]
		headerOff := unsafe.Offsetof(probe.ctrl) + unsafe.Offsetof(probe.ctrl.hdr)
		size := unsafe.Sizeof(probe)

		t := &table{scan: layout.HasPointers[T]()}

		fromHeader := func(h *header) *Object[O, T, A] {
			return (*Object[O, T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		destruct := func(blk *Object[O, T, A]) {
			if t.scan {
				gcrange.RemoveRange(unsafe.Pointer(blk))
			}
			var zero T
			blk.value = zero
			memdiag.RemoveConstructions(1)
		}
		deallocate := func(blk *Object[O, T, A]) {
			// Copy the allocator out before the block's bytes go away.
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
