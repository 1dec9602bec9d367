package mem

import (
	"sync"
	"testing"
	"unsafe"
)

func Test_Pool_ReusesSameClass(t *testing.T) {
	p := NewPool()

	// 97 and 100 share the (96, 112] class.
	buf := p.Alloc(100)
	if buf == nil || len(buf) != 100 {
		t.Fatal("Alloc(100) failed")
	}
	base := unsafe.SliceData(buf)
	for i := range buf {
		buf[i] = 0xFF
	}
	p.Free(buf)

	again := p.Alloc(97)
	if unsafe.SliceData(again) != base {
		t.Fatal("same-class allocation did not reuse the freed buffer")
	}
	for i, b := range again {
		if b != 0 {
			t.Fatalf("recycled byte %d not zeroed: %#x", i, b)
		}
	}

	st := p.Stats()
	if st.Reuses != 1 {
		t.Fatalf("Reuses = %d, want 1", st.Reuses)
	}
}

func Test_Pool_FreeAcceptsReconstructedSpan(t *testing.T) {
	p := NewPool()

	buf := p.Alloc(40)
	// Callers that recover a block from a raw pointer hand back a fresh
	// slice header over the same base.
	span := unsafe.Slice(unsafe.SliceData(buf), len(buf))
	p.Free(span)

	again := p.Alloc(40)
	if unsafe.SliceData(again) != unsafe.SliceData(buf) {
		t.Fatal("reconstructed span was not recycled")
	}
}

func Test_Pool_OversizeBypassesClasses(t *testing.T) {
	p := NewPool()

	n := defaultMaxClass + 1
	buf := p.Alloc(n)
	if buf == nil || len(buf) != n {
		t.Fatalf("oversize Alloc(%d) failed", n)
	}
	p.Free(buf) // dropped, not parked

	st := p.Stats()
	if st.Oversize != 1 {
		t.Fatalf("Oversize = %d, want 1", st.Oversize)
	}
	if st.Reuses != 0 {
		t.Fatalf("oversize free must not feed a class stack")
	}
}

func Test_Pool_AllocFailureIsNil(t *testing.T) {
	p := NewPool()
	if p.Alloc(0) != nil || p.Alloc(-1) != nil {
		t.Fatal("non-positive sizes must fail")
	}
	if p.Alloc(maxAllocBytes+1) != nil {
		t.Fatal("oversized Alloc must fail")
	}
}

func Test_Pool_CarvesAligned(t *testing.T) {
	p := NewPool()
	for i := 0; i < 16; i++ {
		buf := p.Alloc(24)
		addr := uintptr(unsafe.Pointer(&buf[0]))
		if addr%MaxAlign != 0 {
			t.Fatalf("carve %d base %#x not aligned", i, addr)
		}
	}
}

func Test_Pool_ConcurrentAllocFree(t *testing.T) {
	p := NewPool()

	const goroutines = 8
	const cycles = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			for i := 0; i < cycles; i++ {
				buf := p.Alloc(64)
				if buf == nil {
					t.Error("Alloc returned nil under concurrency")
					return
				}
				for j := range buf {
					buf[j] = seed
				}
				p.Free(buf)
			}
		}(byte(g + 1))
	}
	wg.Wait()

	st := p.Stats()
	if st.AllocCalls != goroutines*cycles {
		t.Fatalf("AllocCalls = %d, want %d", st.AllocCalls, goroutines*cycles)
	}
	if st.FreeCalls != goroutines*cycles {
		t.Fatalf("FreeCalls = %d, want %d", st.FreeCalls, goroutines*cycles)
	}
	if st.Reuses+st.Carves != st.AllocCalls {
		t.Fatalf("reuse+carve = %d, want %d", st.Reuses+st.Carves, st.AllocCalls)
	}
}
