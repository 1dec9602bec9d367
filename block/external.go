package block

import (
	"sync"
	"unsafe"

	"github.com/joshuapare/refkit/internal/memdiag"
	"github.com/joshuapare/refkit/mem"
)

// External is a counted block that manages a payload it does not
// contain: an externally owned pointer paired with the deleter that
// tears it down. Only the wrapper lives in allocator memory.
type External[O Ordering, T any, A mem.Allocator] struct {
	ctrl  Control[O]
	alloc A
	data  *T
	del   func(*T)
}

// externalPins keeps each wrapper's referent and deleter visible to
// the garbage collector while the wrapper lives in untraced allocator
// memory. Keyed by the block's header.
var externalPins sync.Map // *header -> externalPin

type externalPin struct {
	data any
	del  any
}

// MakeExternal allocates a counted wrapper around data, owned by one
// shared reference. When the last shared owner releases, del is called
// exactly once with data; a nil del skips teardown. A nil data is
// allowed and still passed to del, matching adopt-then-delete use.
func MakeExternal[O Ordering, T any, A mem.Allocator](a A, data *T, del func(*T)) (*External[O, T, A], error) {
	tab := externalTable[O, T, A]()
	size := unsafe.Sizeof(External[O, T, A]{})

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	blk := (*External[O, T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.ctrl.hdr.tab = tab
	blk.alloc = a
	blk.data = data
	blk.del = del

	externalPins.Store(&blk.ctrl.hdr, externalPin{data: data, del: del})
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(1)
	return blk, nil
}

// Value returns the managed pointer.
func (b *External[O, T, A]) Value() *T { return b.data }

// Control exposes the block's counters.
func (b *External[O, T, A]) Control() *Control[O] { return &b.ctrl }

// externalTable interns the finalizer table for this configuration.
// External wrappers never register GC ranges themselves: the pin
// registry carries their referent and deleter for the collector.
func externalTable[O Ordering, T any, A mem.Allocator]() *table {
	return tableFor[External[O, T, A]](func() *table {
		var probe External[O, T, A]
		headerOff := unsafe.Offsetof(probe.ctrl) + unsafe.Offsetof(probe.ctrl.hdr)
		size := unsafe.Sizeof(probe)

		t := &table{}

		fromHeader := func(h *header) *External[O, T, A] {
			return (*External[O, T, A])(unsafe.Add(unsafe.Pointer(h), -int(headerOff)))
		}
		destruct := func(blk *External[O, T, A]) {
			data, del := blk.data, blk.del
			blk.data, blk.del = nil, nil
			externalPins.Delete(&blk.ctrl.hdr)
			if del != nil {
				del(data)
			}
			memdiag.RemoveConstructions(1)
		}
		deallocate := func(blk *External[O, T, A]) {
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
