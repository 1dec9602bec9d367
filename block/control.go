package block

// Dead is the counter sentinel meaning no owners remain. Counts start
// at 0 meaning one owner, so a count of n means n+1 owners while live;
// the decrement that moves a count from 0 to Dead runs the matching
// finalizer exactly once.
const Dead int32 = -1

// header is the part of every block the finalizer table dispatches on.
// Unique-ownership blocks embed a bare header; counted blocks embed it
// through Control.
type header struct {
	tab *table
}

// Control is the counted block header: the finalizer table reference
// plus shared and weak counts under ordering discipline O.
//
// The weak count follows the implicit-reference scheme: the shared
// owners collectively hold one weak reference, represented by the weak
// count starting at 0. Shared finalization releases that implicit
// reference, so the weak count can only reach Dead, and the block can
// only deallocate, after the payload has been destructed.
type Control[O Ordering] struct {
	// hdr must stay the first field: finalizer callbacks recover a
	// control, and from it the owning block, from the header address.
	hdr    header
	shared int32
	weak   int32
}

// SharedCount returns the current shared count: 0 means one owner,
// Dead means the payload has been finalized.
func (c *Control[O]) SharedCount() int32 {
	var o O
	return o.Load(&c.shared)
}

// WeakCount returns the current weak count, not including the implicit
// reference held by the shared owners.
func (c *Control[O]) WeakCount() int32 {
	var o O
	return o.Load(&c.weak)
}

// Retain adds one shared owner.
func (c *Control[O]) Retain() {
	var o O
	o.Add(&c.shared, 1)
}

// RetainWeak adds one weak owner.
func (c *Control[O]) RetainWeak() {
	var o O
	o.Add(&c.weak, 1)
}

// Release drops one shared owner. The release that moves the count from
// 0 to Dead destructs the payload and releases the shared owners'
// implicit weak reference; exactly one releaser takes that path.
// Releasing a block whose payload was already finalized panics.
func (c *Control[O]) Release() {
	var o O
	switch n := o.Add(&c.shared, -1); {
	case n == Dead:
		c.hdr.tab.onZeroShared(&c.hdr)
	case n < Dead:
		panic("block: release of a block with no shared owners")
	}
}

// ReleaseWeak drops one weak owner. The release that moves the count
// from 0 to Dead deallocates the block; it is reachable only after
// shared finalization has released the implicit reference. Releasing
// below Dead panics.
func (c *Control[O]) ReleaseWeak() {
	var o O
	switch n := o.Add(&c.weak, -1); {
	case n == Dead:
		c.hdr.tab.onZeroWeak(&c.hdr)
	case n < Dead:
		panic("block: weak release of a block with no weak owners")
	}
}

// TryRetain attempts a weak-to-shared upgrade: it adds a shared owner
// only if the payload is still live, and reports whether it did. The
// compare-and-swap loop is lock-free; it returns false only once the
// shared count is observed at Dead, never spuriously.
func (c *Control[O]) TryRetain() bool {
	var o O
	for {
		cur := o.Load(&c.shared)
		if cur == Dead {
			return false
		}
		if o.CompareAndSwap(&c.shared, cur, cur+1) {
			return true
		}
	}
}
