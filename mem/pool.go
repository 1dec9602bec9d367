package mem

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Default pool geometry. Classes run in linear steps through the small
// range, then double up to the largest pooled size; larger requests
// bypass the pool and go straight to the heap.
const (
	defaultSlabSize = 64 << 10
	defaultMaxClass = 16 << 10
	smallStep       = 16
	smallMax        = 256
)

// Pool is a size-class allocator. Freed buffers park on per-class free
// stacks and satisfy later allocations of the same class without a new
// heap allocation; cold classes are carved from shared slabs.
//
// A Pool is safe for concurrent use: the free stacks are lock-free and
// slab carving takes a short mutex.
type Pool struct {
	bounds   []int // ascending upper size bound per class
	stacks   []freeStack
	slabSize int

	mu   sync.Mutex
	slab []byte // current carve target
	off  int

	stats poolCounters
}

type poolCounters struct {
	allocCalls atomic.Int64
	freeCalls  atomic.Int64
	reuses     atomic.Int64
	carves     atomic.Int64
	slabs      atomic.Int64
	oversize   atomic.Int64
}

// PoolStats is a point-in-time copy of pool counters.
type PoolStats struct {
	AllocCalls int64 // total Alloc calls
	FreeCalls  int64 // total Free calls
	Reuses     int64 // allocations served from a free stack
	Carves     int64 // allocations carved from a slab
	Slabs      int64 // slabs created
	Oversize   int64 // requests above the largest class (heap direct)
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	slabSize int
	maxClass int
}

// WithSlabSize sets the slab carve size in bytes (default 64KB).
// Values that cannot hold the largest class are raised to it.
func WithSlabSize(n int) PoolOption {
	return func(c *poolConfig) {
		if n > 0 {
			c.slabSize = n
		}
	}
}

// WithMaxClass sets the largest pooled size in bytes (default 16KB).
// Requests above the last class boundary at or under this value go
// straight to the heap.
func WithMaxClass(n int) PoolOption {
	return func(c *poolConfig) {
		if n > 0 {
			c.maxClass = n
		}
	}
}

// NewPool creates a pool with the given options.
func NewPool(opts ...PoolOption) *Pool {
	cfg := poolConfig{slabSize: defaultSlabSize, maxClass: defaultMaxClass}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxClass < smallMax {
		cfg.maxClass = smallMax
	}

	// Phase 1: small classes in linear steps.
	bounds := make([]int, 0, 32)
	for b := smallStep; b <= smallMax; b += smallStep {
		bounds = append(bounds, b)
	}
	// Phase 2: doubling classes up to the configured maximum.
	for b := smallMax * 2; b <= cfg.maxClass; b *= 2 {
		bounds = append(bounds, b)
	}

	if cfg.slabSize < bounds[len(bounds)-1] {
		cfg.slabSize = bounds[len(bounds)-1]
	}
	return &Pool{
		bounds:   bounds,
		stacks:   make([]freeStack, len(bounds)),
		slabSize: cfg.slabSize,
	}
}

// classFor returns the class index whose bound covers size, or -1 when
// size is above the largest class. Binary search over the bounds.
func (p *Pool) classFor(size int) int {
	lo, hi := 0, len(p.bounds)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= p.bounds[mid] {
			// Check if this is the smallest bound that fits
			if mid == 0 || size > p.bounds[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return -1
}

// Alloc returns n zeroed bytes, recycled from the matching class stack
// when possible. Returns nil when storage cannot be provided.
func (p *Pool) Alloc(n int) []byte {
	if n <= 0 || n > maxAllocBytes {
		return nil
	}
	p.stats.allocCalls.Add(1)

	cls := p.classFor(n)
	if cls < 0 {
		p.stats.oversize.Add(1)
		return Heap{}.Alloc(n)
	}
	if full := p.stacks[cls].pop(); full != nil {
		p.stats.reuses.Add(1)
		clear(full)
		return full[:n:len(full)]
	}
	return p.carve(n, cls)
}

// carve cuts one class-sized span out of the current slab, starting a
// fresh slab when the remainder cannot hold the class.
func (p *Pool) carve(n, cls int) []byte {
	size := p.bounds[cls]

	p.mu.Lock()
	if len(p.slab)-p.off < size {
		slab := Heap{}.Alloc(p.slabSize)
		if slab == nil {
			p.mu.Unlock()
			return nil
		}
		p.slab = slab
		p.off = 0
		p.stats.slabs.Add(1)
	}
	full := p.slab[p.off : p.off+size : p.off+size]
	p.off += size
	p.mu.Unlock()

	p.stats.carves.Add(1)
	return full[:n:size]
}

// Free parks a buffer on its class stack for reuse. Buffers above the
// largest class are dropped for the collector to reclaim. Free accepts
// any span that starts at the base of a buffer Alloc returned, so
// callers may hand back a reconstructed slice of the original length.
func (p *Pool) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	p.stats.freeCalls.Add(1)

	cls := p.classFor(len(buf))
	if cls < 0 {
		return
	}
	// Rebuild the full class span from the buffer base; the pool carved
	// bounds[cls] bytes there even if the caller's slice is shorter.
	size := p.bounds[cls]
	p.stacks[cls].push(unsafe.Slice(unsafe.SliceData(buf), size))
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		AllocCalls: p.stats.allocCalls.Load(),
		FreeCalls:  p.stats.freeCalls.Load(),
		Reuses:     p.stats.reuses.Load(),
		Carves:     p.stats.carves.Load(),
		Slabs:      p.stats.slabs.Load(),
		Oversize:   p.stats.oversize.Load(),
	}
}

// freeStack is a lock-free stack of recycled class spans. Every push
// allocates a fresh node, so a node address never re-enters the stack
// and the pop CAS cannot be fooled by address reuse.
type freeStack struct {
	head atomic.Pointer[poolNode]
}

type poolNode struct {
	span []byte
	next *poolNode
}

func (s *freeStack) push(span []byte) {
	node := &poolNode{span: span}
	for {
		old := s.head.Load()
		node.next = old
		if s.head.CompareAndSwap(old, node) {
			return
		}
	}
}

func (s *freeStack) pop() []byte {
	for {
		node := s.head.Load()
		if node == nil {
			return nil
		}
		if s.head.CompareAndSwap(node, node.next) {
			return node.span
		}
	}
}

// Compile-time interface check
var _ Allocator = (*Pool)(nil)
