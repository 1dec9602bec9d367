package block

import "github.com/joshuapare/refkit/internal/memdiag"

// Stats reports package-wide lifecycle balance, useful in tests and
// leak hunts. Both gauges return to their starting values once every
// block made since has been fully released.
type Stats struct {
	// LiveAllocations is the number of blocks currently holding
	// allocator memory.
	LiveAllocations int64

	// LiveConstructions is the number of currently constructed
	// payloads, counting each array element separately.
	LiveConstructions int64
}

// LiveStats captures the current lifecycle gauges.
func LiveStats() Stats {
	snap := memdiag.Capture()
	return Stats{
		LiveAllocations:   snap.LiveAllocations,
		LiveConstructions: snap.LiveConstructions,
	}
}
