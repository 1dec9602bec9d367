package block

import (
	"reflect"
	"sync"
)

// table is the finalizer table: the three type-erased callbacks that
// destroy and free one block configuration, plus cached per-
// configuration constants. One immutable table exists per block type
// for the life of the process; every block of that configuration
// carries a reference to it.
//
// onZeroShared destructs the payload and releases the shared owners'
// implicit weak reference. onZeroWeak deallocates the block; the weak
// count cannot reach Dead before shared finalization, so the payload is
// always gone by then. manualDestroy serves unique ownership: it always
// destructs and deallocates only when asked, supporting destroy-now,
// free-later replacement. The counted callbacks are nil on tables for
// unique-ownership blocks, which have no counters to trigger them.
type table struct {
	onZeroShared  func(*header)
	onZeroWeak    func(*header)
	manualDestroy func(h *header, deallocate bool)

	// scan marks configurations whose payload holds Go pointers and
	// must register its range with the gcrange tracker.
	scan bool
}

var tables sync.Map // reflect.Type -> *table

// tableFor returns the finalizer table for block type B, building it at
// most once per process. Racing builders may each construct a
// candidate, but LoadOrStore publishes exactly one fully-built table,
// and its synchronization guarantees no caller ever observes a
// partially initialized one.
func tableFor[B any](build func() *table) *table {
	key := reflect.TypeFor[B]()
	if v, ok := tables.Load(key); ok {
		return v.(*table)
	}
	v, _ := tables.LoadOrStore(key, build())
	return v.(*table)
}
