// Package rc provides ergonomic reference-counted handles over package
// block, fixed to the process heap allocator.
//
// # Overview
//
// Each handle type wraps one block configuration:
//
//   - Shared and Weak: atomic counting, safe across goroutines.
//   - Rc and RcWeak: plain counting for single-goroutine values.
//   - SharedSlice: atomic counting over a fixed-length element block.
//   - Unique: single owner, no counters.
//   - Adopted: counted ownership of an external value and its deleter.
//
// Handles are small values holding one pointer. The zero value of
// every handle is empty and safe to use: accessors return nil or 0 and
// Release is a no-op. Release empties the handle it is called on, so
// releasing twice through the same variable is harmless; each Clone
// must still be released exactly once.
//
// # Usage Example
//
//	s, err := rc.NewShared(42)
//	if err != nil {
//		return err
//	}
//	defer s.Release()
//
//	w := s.Downgrade()
//	defer w.Release()
//
//	if v, ok := w.Lock(); ok {
//		fmt.Println(*v.Get())
//		v.Release()
//	}
//
// # Pointerful Payloads
//
// Handle storage lives outside the garbage collector's view. Payload
// types containing Go pointers require a gcrange tracking policy
// before the first New call; see package gcrange. Adopt is exempt:
// adopted values are pinned for the collector regardless of their
// type.
//
// # Related Packages
//
//   - github.com/joshuapare/refkit/block: the block layer underneath
//   - github.com/joshuapare/refkit/gcrange: collector range policies
package rc
