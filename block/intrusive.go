package block

import (
	"reflect"
	"unsafe"

	"github.com/joshuapare/refkit/gcrange"
	"github.com/joshuapare/refkit/internal/layout"
	"github.com/joshuapare/refkit/internal/memdiag"
	"github.com/joshuapare/refkit/mem"
)

// Hook is the counted header a payload type embeds to become an
// intrusive payload. Embedding it by value, directly or through nested
// embedded structs, makes the payload's pointer type satisfy Embedder.
type Hook[O Ordering] struct {
	ctrl Control[O]
}

// RefHook returns the embedded hook; payload types inherit this method
// by embedding Hook.
func (h *Hook[O]) RefHook() *Hook[O] { return h }

// Control exposes the hook's counters.
func (h *Hook[O]) Control() *Control[O] { return &h.ctrl }

// Embedder is satisfied by pointer-to-payload types that embed exactly
// one Hook[O].
type Embedder[O Ordering] interface {
	RefHook() *Hook[O]
}

// Intrusive is a counted block whose control lives inside the payload
// itself, at the payload's embedded Hook. The block adds only the
// allocator instance around the payload.
type Intrusive[O Ordering, T any, A mem.Allocator] struct {
	alloc A
	value T
}

// hookOffset returns the byte offset of the embedded hook inside T,
// fixed per payload type.
func hookOffset[O Ordering, T any, PT interface {
	*T
	Embedder[O]
}]() uintptr {
	var probe T
	return uintptr(unsafe.Pointer(PT(&probe).RefHook())) - uintptr(unsafe.Pointer(&probe))
}

// MakeIntrusive allocates and constructs an intrusive block around a
// copy of v, resetting the embedded hook to one shared owner. The
// ordering O must be named at the call site; the remaining type
// arguments are inferred.
func MakeIntrusive[O Ordering, T any, PT interface {
	*T
	Embedder[O]
}, A mem.Allocator](a A, v T) (*Intrusive[O, T, A], error) {
	tab := intrusiveTable[O, T, PT, A]()
	size := unsafe.Sizeof(Intrusive[O, T, A]{})

	buf := a.Alloc(int(size))
	if len(buf) == 0 {
		return nil, ErrAllocFailed
	}

	blk := (*Intrusive[O, T, A])(unsafe.Pointer(unsafe.SliceData(buf)))
	blk.alloc = a
	blk.value = v

	// The copy of v brought the caller's hook bytes along; start the
	// embedded control fresh at one shared owner.
	hook := PT(&blk.value).RefHook()
	hook.ctrl = Control[O]{hdr: header{tab: tab}}

	if tab.scan {
		gcrange.AddRange(unsafe.Pointer(blk), size)
	}
	memdiag.AddAllocation(size)
	memdiag.AddConstructions(1)
	return blk, nil
}

// Value returns the payload. The pointer stays valid until shared
// finalization runs.
func (b *Intrusive[O, T, A]) Value() *T { return &b.value }

// Owner recovers the payload containing hook h. O and T must name the
// same configuration the block was made with.
func Owner[O Ordering, T any, PT interface {
	*T
	Embedder[O]
}](h *Hook[O]) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(h), -int(hookOffset[O, T, PT]())))
}

// intrusiveTable interns the finalizer table for this configuration.
func intrusiveTable[O Ordering, T any, PT interface {
	*T
	Embedder[O]
}, A mem.Allocator]() *table {
	return tableFor[Intrusive[O, T, A]](func() *table {
		var probe Intrusive[O, T, A]
		var hookProbe Hook[O]
		valueOff := unsafe.Offsetof(probe.value)
		hookOff := hookOffset[O, T, PT]()
		hdrOff := valueOff + hookOff + unsafe.Offsetof(hookProbe.ctrl) + unsafe.Offsetof(hookProbe.ctrl.hdr)
		hookSize := unsafe.Sizeof(Hook[O]{})
		valueSize := unsafe.Sizeof(probe.value)
		size := unsafe.Sizeof(probe)

		// The hook's internal table pointer references process-lifetime
		// data; only pointers outside the hook need tracing.
		t := &table{scan: layout.HasPointersExcept(reflect.TypeFor[T](), reflect.TypeFor[Hook[O]]())}

		fromHeader := func(h *header) *Intrusive[O, T, A] {
			return (*Intrusive[O, T, A])(unsafe.Add(unsafe.Pointer(h), -int(hdrOff)))
		}
		// destruct zeroes the payload around the hook: the counters must
		// survive payload destruction for concurrent weak holders.
		destruct := func(blk *Intrusive[O, T, A]) {
			if t.scan {
				gcrange.RemoveRange(unsafe.Pointer(blk))
			}
			base := unsafe.Pointer(&blk.value)
			clear(unsafe.Slice((*byte)(base), hookOff))
			clear(unsafe.Slice((*byte)(unsafe.Add(base, hookOff+hookSize)), valueSize-hookOff-hookSize))
			memdiag.RemoveConstructions(1)
		}
		deallocate := func(blk *Intrusive[O, T, A]) {
			a := blk.alloc
			a.Free(unsafe.Slice((*byte)(unsafe.Pointer(blk)), size))
			memdiag.RemoveAllocation(size)
		}

		t.onZeroShared = func(h *header) {
			blk := fromHeader(h)
			hook := PT(&blk.value).RefHook()
			destruct(blk)
			hook.ctrl.ReleaseWeak()
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
