package mem

import (
	"errors"
	"testing"
	"unsafe"
)

func Test_Arena_NewValidatesCapacity(t *testing.T) {
	if _, err := NewArena(0); !errors.Is(err, ErrArenaSize) {
		t.Fatalf("NewArena(0) err = %v, want ErrArenaSize", err)
	}
	if _, err := NewArena(-1); !errors.Is(err, ErrArenaSize) {
		t.Fatalf("NewArena(-1) err = %v, want ErrArenaSize", err)
	}
	a, err := NewArena(1024)
	if err != nil {
		t.Fatalf("NewArena(1024) err = %v", err)
	}
	if a.Cap() != 1024 || a.Len() != 0 {
		t.Fatalf("fresh arena Cap=%d Len=%d, want 1024/0", a.Cap(), a.Len())
	}
}

func Test_Arena_BumpsUntilExhausted(t *testing.T) {
	a, _ := NewArena(128)

	if buf := a.Alloc(64); buf == nil || len(buf) != 64 {
		t.Fatal("first Alloc(64) failed")
	}
	if buf := a.Alloc(64); buf == nil {
		t.Fatal("second Alloc(64) failed")
	}
	if buf := a.Alloc(1); buf != nil {
		t.Fatal("Alloc past capacity must return nil")
	}
	if a.Len() != 128 {
		t.Fatalf("Len = %d, want 128", a.Len())
	}
	if a.Allocs() != 2 {
		t.Fatalf("Allocs = %d, want 2", a.Allocs())
	}
}

func Test_Arena_CarvesAligned(t *testing.T) {
	a, _ := NewArena(256)

	first := a.Alloc(3)
	second := a.Alloc(5)
	if first == nil || second == nil {
		t.Fatal("small allocations failed")
	}
	for _, buf := range [][]byte{first, second} {
		addr := uintptr(unsafe.Pointer(&buf[0]))
		if addr%MaxAlign != 0 {
			t.Fatalf("carve base %#x not aligned", addr)
		}
	}
	// 3 bytes round up to one 8-byte step
	if a.Len() != 16 {
		t.Fatalf("Len = %d, want 16", a.Len())
	}
}

func Test_Arena_ResetReusesZeroed(t *testing.T) {
	a, _ := NewArena(64)

	buf := a.Alloc(32)
	for i := range buf {
		buf[i] = 0xAA
	}
	a.Reset()

	if a.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", a.Len())
	}
	if a.Peak() != 32 {
		t.Fatalf("Peak after Reset = %d, want 32", a.Peak())
	}

	again := a.Alloc(32)
	for i, b := range again {
		if b != 0 {
			t.Fatalf("recycled byte %d not zeroed: %#x", i, b)
		}
	}
}

func Test_Arena_FreeIsNoOp(t *testing.T) {
	a, _ := NewArena(64)
	buf := a.Alloc(16)
	a.Free(buf)
	if a.Len() != 16 {
		t.Fatalf("Free changed Len to %d", a.Len())
	}
}
