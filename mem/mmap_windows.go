//go:build windows

package mem

import (
	"sync"
	"unsafe"
)

// Mmap degrades to heap-backed buffers on Windows. The bookkeeping and
// ownership checks match the unix implementation so caller behavior is
// identical across platforms.
type Mmap struct {
	mu       sync.Mutex
	mappings map[uintptr][]byte // base address -> full buffer
}

// NewMmap creates the heap-backed stand-in allocator.
func NewMmap() *Mmap {
	return &Mmap{mappings: make(map[uintptr][]byte)}
}

// Alloc returns n zeroed heap bytes tracked like a mapping.
func (m *Mmap) Alloc(n int) []byte {
	buf := Heap{}.Alloc(n)
	if buf == nil {
		return nil
	}
	m.mu.Lock()
	m.mappings[uintptr(unsafe.Pointer(&buf[0]))] = buf
	m.mu.Unlock()
	return buf
}

// Free releases the tracked buffer for the collector to reclaim.
// Freeing a buffer this allocator does not own panics.
func (m *Mmap) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	base := uintptr(unsafe.Pointer(&buf[0]))

	m.mu.Lock()
	_, ok := m.mappings[base]
	delete(m.mappings, base)
	m.mu.Unlock()

	if !ok {
		panic("mem: free of a buffer this allocator does not own")
	}
}

// Live returns the number of outstanding buffers.
func (m *Mmap) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}

// Close drops every outstanding buffer.
func (m *Mmap) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.mappings)
	return nil
}

// Compile-time interface check
var _ Allocator = (*Mmap)(nil)
