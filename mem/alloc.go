package mem

import "unsafe"

// MaxAlign is the alignment guarantee for every buffer an Allocator
// returns: the address of the first byte is a multiple of MaxAlign.
// It matches the largest alignment any Go type requires.
const MaxAlign = 8

// maxAllocBytes caps a single allocation at just under 2GB, matching
// the signed 32-bit arithmetic used in block layouts.
const maxAllocBytes = 1<<31 - 8

// Allocator provides raw storage for blocks.
//
// Alloc returns a zeroed buffer of exactly n bytes, aligned to MaxAlign,
// or nil when storage cannot be provided. Allocation failure is a value,
// never a panic. Free takes back a buffer previously returned by Alloc;
// implementations may recycle it, unmap it, or ignore the call.
//
// Stateless allocators are zero-size types; a block embedding one spends
// no bytes on the instance.
type Allocator interface {
	Alloc(n int) []byte
	Free(buf []byte)
}

// Heap allocates from the Go heap. Free is a no-op: the collector
// reclaims a buffer once no pointer into it remains, so a handle
// pointing anywhere inside a block keeps the whole block alive.
// Heap is stateless.
type Heap struct{}

// Alloc returns n zeroed bytes backed by a word-aligned heap slice.
func (Heap) Alloc(n int) []byte {
	if n <= 0 || n > maxAllocBytes {
		return nil
	}
	words := (n + MaxAlign - 1) / MaxAlign
	backing := make([]uint64, words)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(backing))), n)
}

// Free is a no-op for heap buffers.
func (Heap) Free([]byte) {}

// Compile-time interface check
var _ Allocator = Heap{}
