// Package gcrange is the collector-visibility hook for blocks kept in
// raw memory.
//
// # Overview
//
// Raw buffers are opaque to the Go collector: pointers stored in them
// do not keep their referents alive. Block configurations whose payload
// types contain Go pointers therefore register their byte range with a
// Tracker at construction and deregister it at destruction, exactly
// once each.
//
// Go has no runtime call that would make the collector trace an
// arbitrary range, so no tracker can make such payloads safe by itself.
// The shipped trackers split the options honestly:
//
//   - Guard (default): panics on the first pointer-bearing registration,
//     pointing at the contract instead of allowing silent dangling
//     references.
//   - Nop: accepts everything; the caller asserts referents are kept
//     alive elsewhere (reachable globals, a live object graph, arena
//     self-references).
//   - Set: Nop plus bookkeeping; pins registered spans and reports
//     ranges still registered at test teardown.
//
// Pointer-free payloads never touch the tracker, so the default Guard
// costs nothing on the common path.
//
// # Usage Example
//
//	set := gcrange.NewSet()
//	prev := gcrange.SetDefault(set)
//	defer gcrange.SetDefault(prev)
//
//	// ... build and drop pointer-bearing blocks ...
//
//	if n := set.CheckLeaks(); n != 0 {
//	    t.Fatalf("%d ranges leaked", n)
//	}
//
// # Related Packages
//
//   - github.com/joshuapare/refkit/block: decides per configuration whether
//     registration is needed
package gcrange
