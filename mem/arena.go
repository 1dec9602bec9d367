package mem

import "github.com/joshuapare/refkit/internal/layout"

// Arena is a bump-pointer allocator over one contiguous region.
// It uses a simple bump approach for O(1) initialization and O(1)
// allocation.
//
// Key characteristics:
//   - O(1) allocation: pure bump pointer, no heap operations
//   - Zero per-allocation overhead: no free lists, no indexes, no maps
//   - Free is a no-op; space is reclaimed in bulk by Reset
//
// An Arena is ideal for batch construction where many blocks share one
// lifetime and are dropped together.
//
// An Arena is not safe for concurrent use. Callers sharing one across
// goroutines must synchronize externally, and callers must keep the
// *Arena reachable for as long as any block allocated from it lives.
type Arena struct {
	buf []byte // backing region, MaxAlign-aligned base

	// off is the current bump pointer - the offset at which the next
	// allocation will be carved.
	off int

	// peak is the high-water usage mark, preserved across Resets.
	peak int

	// allocs counts allocations served since construction.
	allocs int
}

// NewArena creates an arena with the given capacity in bytes.
func NewArena(capacity int) (*Arena, error) {
	if capacity <= 0 || capacity > maxAllocBytes {
		return nil, ErrArenaSize
	}
	return &Arena{buf: Heap{}.Alloc(capacity)}, nil
}

// Alloc carves n zeroed bytes from the region, or returns nil when the
// remaining space cannot satisfy the request. Carve offsets stay
// MaxAlign-aligned.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 || n > maxAllocBytes {
		return nil
	}
	need := int(layout.AlignUp(uintptr(n), MaxAlign))
	if a.off+need > len(a.buf) {
		return nil
	}
	span := a.buf[a.off : a.off+n : a.off+need]
	a.off += need
	if a.off > a.peak {
		a.peak = a.off
	}
	a.allocs++

	// The region may hold stale bytes from before a Reset.
	clear(span)
	return span
}

// Free is a no-op; arena space is reclaimed in bulk by Reset.
func (a *Arena) Free([]byte) {}

// Reset rewinds the bump pointer, invalidating every buffer the arena
// has handed out. The caller must guarantee no block allocated from
// this arena is still live; the arena does not track them.
func (a *Arena) Reset() {
	a.off = 0
}

// Len returns the number of bytes currently in use.
func (a *Arena) Len() int { return a.off }

// Cap returns the total capacity in bytes.
func (a *Arena) Cap() int { return len(a.buf) }

// Peak returns the high-water usage mark across Resets.
func (a *Arena) Peak() int { return a.peak }

// Allocs returns the number of allocations served since construction.
func (a *Arena) Allocs() int { return a.allocs }

// Compile-time interface check
var _ Allocator = (*Arena)(nil)
