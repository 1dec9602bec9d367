// Package memdiag keeps process-wide counters of live block allocations
// and live payload constructions. Tests snapshot the counters before a
// scenario and assert they return to the same values afterward to catch
// leaked blocks or unbalanced construct/destruct pairs.
//
// The counters are plain atomics and always on; they never change
// allocation behavior.
package memdiag

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugTrace = false

// Runtime debug flag for allocation logging - controlled by REFKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("REFKIT_LOG_ALLOC") != ""

var (
	liveAllocations   atomic.Int64
	liveConstructions atomic.Int64
)

// Snapshot is a point-in-time copy of the diagnostic counters.
type Snapshot struct {
	LiveAllocations   int64 // blocks allocated and not yet deallocated
	LiveConstructions int64 // payload values constructed and not yet destructed
}

// Capture returns the current counter values.
func Capture() Snapshot {
	return Snapshot{
		LiveAllocations:   liveAllocations.Load(),
		LiveConstructions: liveConstructions.Load(),
	}
}

// AddAllocation records one block allocation.
func AddAllocation(size uintptr) {
	n := liveAllocations.Add(1)
	if debugTrace || logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] +%d bytes (live=%d)\n", size, n)
	}
}

// RemoveAllocation records one block deallocation.
func RemoveAllocation(size uintptr) {
	n := liveAllocations.Add(-1)
	if debugTrace || logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] -%d bytes (live=%d)\n", size, n)
	}
}

// AddConstructions records n payload constructions (n > 1 for arrays).
func AddConstructions(n int64) {
	liveConstructions.Add(n)
}

// RemoveConstructions records n payload destructions.
func RemoveConstructions(n int64) {
	liveConstructions.Add(-n)
}
