//go:build unix

package mem

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/refkit/internal/layout"
)

// Mmap allocates page-granular anonymous mappings outside the Go heap.
// Mapped buffers never move and are invisible to the collector, so
// payloads stored in them must be pointer-free (the block layer
// enforces this through its scan contract).
//
// Free unmaps the whole mapping a buffer came from; Close unmaps every
// outstanding mapping at once.
type Mmap struct {
	mu       sync.Mutex
	mappings map[uintptr][]byte // base address -> full mapping
}

// NewMmap creates an anonymous-mapping allocator.
func NewMmap() *Mmap {
	return &Mmap{mappings: make(map[uintptr][]byte)}
}

// Alloc maps n bytes rounded up to whole pages and returns the first n
// of them, zero-filled by the kernel. Returns nil when mapping fails.
func (m *Mmap) Alloc(n int) []byte {
	if n <= 0 || n > maxAllocBytes {
		return nil
	}
	size := int(layout.AlignUp(uintptr(n), uintptr(os.Getpagesize())))
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil
	}

	m.mu.Lock()
	m.mappings[uintptr(unsafe.Pointer(&buf[0]))] = buf
	m.mu.Unlock()
	return buf[:n:n]
}

// Free unmaps the mapping holding buf. The base address identifies the
// mapping, so any span starting at the base of an Alloc result is
// accepted. Freeing a buffer this allocator does not own panics.
func (m *Mmap) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	base := uintptr(unsafe.Pointer(&buf[0]))

	m.mu.Lock()
	full, ok := m.mappings[base]
	delete(m.mappings, base)
	m.mu.Unlock()

	if !ok {
		panic("mem: free of a buffer this allocator does not own")
	}
	_ = unix.Munmap(full)
}

// Live returns the number of outstanding mappings.
func (m *Mmap) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}

// Close unmaps every outstanding mapping. All blocks allocated from
// this allocator must be dropped first.
func (m *Mmap) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for base, full := range m.mappings {
		if err := unix.Munmap(full); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.mappings, base)
	}
	return firstErr
}

// Compile-time interface check
var _ Allocator = (*Mmap)(nil)
