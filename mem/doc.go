// Package mem provides raw storage allocators for reference-counted blocks.
//
// # Overview
//
// Block construction packs control metadata, an optional allocator
// instance, and payload storage into one contiguous buffer. This package
// defines the Allocator interface those buffers come from and ships four
// implementations with different lifetime models.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Alloc(n): return n zeroed bytes aligned to MaxAlign, or nil on failure
//   - Free(buf): take back a buffer previously returned by Alloc
//
// Allocation failure is always a nil result, never a panic; callers turn
// it into an error at their own layer. Every implementation accepts a
// reconstructed span in Free as long as it starts at the base address of
// an Alloc result; byte length in equals byte length out.
//
// # Implementations
//
// Heap: stateless, zero-size, backed by the Go heap
//
//   - Free is a no-op; the collector reclaims buffers once unreferenced
//   - interior handle pointers keep a block's whole buffer alive
//
// Arena: bump-pointer region for batch lifetimes
//
//   - O(1) allocation, no per-allocation overhead
//   - Free is a no-op; Reset reclaims everything at once
//   - not safe for concurrent use
//
// Pool: size-class recycler
//
//   - freed buffers park on lock-free per-class stacks
//   - cold classes carve from shared slabs
//   - safe for concurrent use
//
// Mmap: page-granular anonymous mappings (unix; heap-backed elsewhere)
//
//   - buffers live outside the Go heap and never move
//   - Free unmaps immediately; Close unmaps everything outstanding
//
// # Usage Example
//
//	a, err := mem.NewArena(1 << 20)
//	if err != nil {
//	    return err
//	}
//
//	buf := a.Alloc(256)
//	if buf == nil {
//	    return errOutOfSpace
//	}
//
//	// ... use buf ...
//
//	a.Reset() // reclaim the whole region
//
// # Alignment Requirements
//
// All buffers start at MaxAlign (8-byte) aligned addresses, the largest
// alignment Go types require, so any block layout can be placed at the
// buffer base without adjustment.
//
// # Thread Safety
//
// Heap, Pool, and Mmap are safe for concurrent use. Arena is not; it is
// built for single-goroutine batch construction.
//
// # Related Packages
//
//   - github.com/joshuapare/refkit/block: block layouts built on these buffers
//   - github.com/joshuapare/refkit/gcrange: collector visibility for raw spans
package mem
