package block

import "errors"

var (
	// ErrAllocFailed indicates the allocator could not provide storage.
	ErrAllocFailed = errors.New("block: allocation failed")

	// ErrLength indicates a negative array length.
	ErrLength = errors.New("block: negative array length")

	// ErrTooLarge indicates a block layout whose size overflows the
	// per-allocation limit.
	ErrTooLarge = errors.New("block: block size too large")
)

// maxBlockBytes mirrors the allocator-side per-allocation cap; array
// layouts are range-checked against it before asking the allocator.
const maxBlockBytes = 1<<31 - 8
