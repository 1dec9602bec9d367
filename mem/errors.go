package mem

import "errors"

var (
	// ErrArenaSize indicates an arena capacity that is not positive or
	// exceeds the per-allocation limit.
	ErrArenaSize = errors.New("mem: arena capacity out of range")
)
