// Package block implements reference-counted control blocks that live
// inside caller-supplied allocator memory rather than on the Go heap.
//
// # Overview
//
// A block packs a control header, an optional allocator instance, and
// a payload into one contiguous allocation. The header carries a
// pointer to an interned finalizer table with three entries: one fired
// when the shared count collapses, one fired when the weak count
// collapses, and one for explicit destruction on single-owner blocks.
// Tables are built at most once per block configuration and published
// through a sync.Map, so every block of the same shape shares one
// table.
//
// # Counting Model
//
// Counts start at zero, which already means one owner: a block fresh
// from a Make function is owned by exactly one shared reference, and
// its weak count of zero stands for the implicit weak reference all
// shared owners hold together. Retain and Release move the shared
// count up and down; the transition below zero is the death sentinel,
// fires the shared finalizer exactly once, and hands the implicit weak
// reference back. The weak finalizer therefore always runs after the
// payload has been destructed. Releasing a count that is already dead
// panics rather than corrupting state.
//
// TryRetain is the revival gate for weak holders: it loops on a
// compare and swap, succeeds only while the shared count is still
// live, and never fails spuriously.
//
// # Orderings
//
// Counter operations are parameterized by an Ordering: Atomic uses
// sync/atomic and is safe across goroutines, Local uses plain loads
// and stores for single-goroutine use. The choice is a type parameter,
// so it costs nothing at run time.
//
// # Variants
//
//   - Object: control and payload value side by side.
//   - Array: element count ahead of the control, elements trailing.
//   - Intrusive: the control lives inside the payload at an embedded
//     Hook; Owner recovers the payload from a hook pointer.
//   - External: the block only wraps a pointer it does not contain,
//     paired with a deleter.
//   - UniqueObject, UniqueArray, UniqueExternal: no counters, explicit
//     Destroy.
//
// # Usage Example
//
//	blk, err := block.MakeObject[block.Atomic](mem.Heap{}, 42)
//	if err != nil {
//		return err
//	}
//	fmt.Println(*blk.Value())
//	blk.Control().Release()
//
// # Garbage Collector Contract
//
// Allocator memory is invisible to the collector. Blocks whose payload
// type contains Go pointers register their span with package gcrange
// at construction and deregister at destruction; the default tracker
// refuses such payloads until the caller installs a policy. External
// wrappers instead pin their referent and deleter in a scanned
// registry, so they are safe with any payload. Stateful allocators
// such as *mem.Arena must be kept reachable by the caller for as long
// as blocks carved from them live.
//
// # Allocation Failure
//
// Make functions return ErrAllocFailed when the allocator comes back
// empty; nothing panics on exhaustion. Array sizes that cannot be
// laid out return ErrLength or ErrTooLarge.
//
// # Related Packages
//
//   - github.com/joshuapare/refkit/mem: allocators blocks live in
//   - github.com/joshuapare/refkit/gcrange: collector range policies
//   - github.com/joshuapare/refkit/pkg/rc: ergonomic handle layer
package block
