package gcrange

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Tracker receives the byte ranges of blocks whose payloads hold Go
// pointers in raw memory. AddRange is called exactly once when such a
// block is constructed and RemoveRange exactly once when its payload is
// destructed.
type Tracker interface {
	AddRange(p unsafe.Pointer, n uintptr)
	RemoveRange(p unsafe.Pointer)
}

// Guard is the default tracker. The Go runtime offers no way to make
// the collector trace raw spans, so Guard refuses pointer-bearing
// payloads outright instead of letting their referents be collected
// out from under the block.
type Guard struct{}

// AddRange always panics; see the package documentation for the ways a
// caller can take responsibility for pointer-bearing payloads.
func (Guard) AddRange(p unsafe.Pointer, n uintptr) {
	panic("gcrange: payload type holds Go pointers, which the collector cannot see in raw block memory; " +
		"keep the referents reachable elsewhere and install gcrange.Nop, or use a pointer-free payload")
}

// RemoveRange is a no-op: no range can have been registered.
func (Guard) RemoveRange(unsafe.Pointer) {}

// Nop accepts every registration and does nothing. Installing it is the
// caller's statement that every referent reachable from registered
// payloads is kept alive by other means for the block's lifetime.
type Nop struct{}

func (Nop) AddRange(unsafe.Pointer, uintptr) {}

func (Nop) RemoveRange(unsafe.Pointer) {}

// Set records registered ranges and holds a reference to each span,
// keeping heap-backed buffers reachable while registered. It carries
// the same keep-referents-alive caveat as Nop; what it adds is
// bookkeeping: tests call CheckLeaks to find blocks that were
// constructed but never destructed.
type Set struct {
	mu     sync.Mutex
	ranges map[uintptr][]byte // base address -> pinned span
}

// NewSet creates an empty range set.
func NewSet() *Set {
	return &Set{ranges: make(map[uintptr][]byte)}
}

// AddRange records [p, p+n). Registering a base address twice panics.
func (s *Set) AddRange(p unsafe.Pointer, n uintptr) {
	base := uintptr(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ranges[base]; ok {
		panic("gcrange: duplicate range registration")
	}
	s.ranges[base] = unsafe.Slice((*byte)(p), n)
}

// RemoveRange drops the range starting at p. Removing an address that
// was never registered panics.
func (s *Set) RemoveRange(p unsafe.Pointer) {
	base := uintptr(p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ranges[base]; !ok {
		panic("gcrange: remove of unregistered range")
	}
	delete(s.ranges, base)
}

// Live returns the number of currently registered ranges.
func (s *Set) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ranges)
}

// CheckLeaks logs a warning for every still-registered range and
// returns how many there were. Intended for test teardown.
func (s *Set) CheckLeaks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for base, span := range s.ranges {
		slog.Warn("gcrange: leaked range", "base", base, "len", len(span))
	}
	return len(s.ranges)
}

var defaultTracker atomic.Pointer[Tracker]

func init() {
	t := Tracker(Guard{})
	defaultTracker.Store(&t)
}

// Default returns the tracker receiving registrations.
func Default() Tracker {
	return *defaultTracker.Load()
}

// SetDefault installs t as the process-wide tracker and returns the
// previous one. A nil t reinstalls Guard.
func SetDefault(t Tracker) (prev Tracker) {
	if t == nil {
		t = Guard{}
	}
	old := defaultTracker.Swap(&t)
	return *old
}

// AddRange registers [p, p+n) with the default tracker.
func AddRange(p unsafe.Pointer, n uintptr) {
	Default().AddRange(p, n)
}

// RemoveRange deregisters the range starting at p with the default tracker.
func RemoveRange(p unsafe.Pointer) {
	Default().RemoveRange(p)
}

// Compile-time interface checks
var (
	_ Tracker = Guard{}
	_ Tracker = Nop{}
	_ Tracker = (*Set)(nil)
)
