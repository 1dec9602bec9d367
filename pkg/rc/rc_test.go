package rc_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/refkit/block"
	"github.com/joshuapare/refkit/gcrange"
	"github.com/joshuapare/refkit/pkg/rc"
)

func TestSharedCloneRelease(t *testing.T) {
	base := block.LiveStats()

	s, err := rc.NewShared(42)
	require.NoError(t, err)
	require.Equal(t, 42, *s.Get())
	require.Equal(t, 1, s.UseCount())

	c := s.Clone()
	require.Equal(t, 2, s.UseCount())
	require.Same(t, s.Get(), c.Get())
	require.True(t, s.Equal(&c))

	c.Release()
	require.Equal(t, 1, s.UseCount())
	require.Equal(t, 42, *s.Get())

	s.Release()
	require.Equal(t, base, block.LiveStats())
}

func TestSharedZeroValueIsEmpty(t *testing.T) {
	var s rc.Shared[int]
	require.Nil(t, s.Get())
	require.Equal(t, 0, s.UseCount())
	s.Release()

	c := s.Clone()
	require.Nil(t, c.Get())

	w := s.Downgrade()
	_, ok := w.Lock()
	require.False(t, ok)
	require.True(t, w.Expired())
}

func TestSharedReleaseEmptiesHandle(t *testing.T) {
	prev := gcrange.SetDefault(gcrange.Nop{})
	defer gcrange.SetDefault(prev)

	s, err := rc.NewShared("x")
	require.NoError(t, err)

	s.Release()
	require.Nil(t, s.Get())
	s.Release()
}

func TestWeakLockLifecycle(t *testing.T) {
	base := block.LiveStats()

	s, err := rc.NewShared(7)
	require.NoError(t, err)
	w := s.Downgrade()
	require.False(t, w.Expired())
	require.Equal(t, 1, w.UseCount())

	locked, ok := w.Lock()
	require.True(t, ok)
	require.Equal(t, 7, *locked.Get())
	require.Equal(t, 2, w.UseCount())
	locked.Release()

	s.Release()
	require.True(t, w.Expired())
	require.Equal(t, 0, w.UseCount())
	_, ok = w.Lock()
	require.False(t, ok)

	w.Release()
	require.Equal(t, base, block.LiveStats())
}

func TestWeakConcurrentLock(t *testing.T) {
	base := block.LiveStats()

	s, err := rc.NewShared(uint64(99))
	require.NoError(t, err)
	w := s.Downgrade()

	const goroutines = 8
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wc := w.Clone()
			defer wc.Release()
			for {
				locked, ok := wc.Lock()
				if !ok {
					return
				}
				if got := *locked.Get(); got != 99 {
					panic("payload corrupted under lock")
				}
				locked.Release()
			}
		}()
	}
	s.Release()
	wg.Wait()

	w.Release()
	require.Equal(t, base, block.LiveStats())
}

func TestRcLifecycle(t *testing.T) {
	base := block.LiveStats()

	r2, err := rc.NewRc(17)
	require.NoError(t, err)
	c := r2.Clone()
	require.Equal(t, 2, r2.UseCount())
	require.True(t, r2.Equal(&c))

	*c.Get() = 18
	require.Equal(t, 18, *r2.Get())

	c.Release()
	r2.Release()
	require.Equal(t, base, block.LiveStats())
}

func TestRcWeakExpiry(t *testing.T) {
	r, err := rc.NewRc(64)
	require.NoError(t, err)
	w := r.Downgrade()

	locked, ok := w.Lock()
	require.True(t, ok)
	locked.Release()

	r.Release()
	require.True(t, w.Expired())
	_, ok = w.Lock()
	require.False(t, ok)
	w.Release()
}

func TestUniqueReleaseAndSwap(t *testing.T) {
	base := block.LiveStats()

	u, err := rc.NewUnique(10)
	require.NoError(t, err)
	require.Equal(t, 10, *u.Get())

	old, err := u.Swap(20)
	require.NoError(t, err)
	require.Equal(t, 10, old)
	require.Equal(t, 20, *u.Get())

	u.Release()
	require.Nil(t, u.Get())
	u.Release()
	require.Equal(t, base, block.LiveStats())

	var empty rc.Unique[int]
	old, err = empty.Swap(5)
	require.NoError(t, err)
	require.Equal(t, 0, old)
	require.Equal(t, 5, *empty.Get())
	empty.Release()
	require.Equal(t, base, block.LiveStats())
}

func TestSharedSlice(t *testing.T) {
	base := block.LiveStats()

	s, err := rc.NewSharedSliceFrom([]int32{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())
	require.Equal(t, []int32{1, 2, 3, 4}, s.Elems())

	c := s.Clone()
	c.Elems()[2] = 33
	require.Equal(t, int32(33), s.Elems()[2])
	require.Equal(t, 2, s.UseCount())

	c.Release()
	s.Release()
	require.Equal(t, base, block.LiveStats())

	z, err := rc.NewSharedSlice[byte](0)
	require.NoError(t, err)
	require.Equal(t, 0, z.Len())
	z.Release()
}

func TestAdoptDeleterRunsOnce(t *testing.T) {
	base := block.LiveStats()

	data := new(int)
	*data = 55
	var calls int
	var got *int

	a, err := rc.Adopt(data, func(p *int) {
		calls++
		got = p
	})
	require.NoError(t, err)
	require.Same(t, data, a.Get())

	c := a.Clone()
	require.Equal(t, 2, a.UseCount())
	a.Release()
	require.Zero(t, calls)

	c.Release()
	require.Equal(t, 1, calls)
	require.Same(t, data, got)
	require.Equal(t, 55, *data)
	require.Equal(t, base, block.LiveStats())
}

func TestPointerPayloadWithTracker(t *testing.T) {
	set := gcrange.NewSet()
	prev := gcrange.SetDefault(set)
	defer gcrange.SetDefault(prev)

	v := 3
	s, err := rc.NewShared(&v)
	require.NoError(t, err)
	require.Equal(t, 1, set.Live())
	require.Equal(t, 3, **s.Get())

	s.Release()
	require.Equal(t, 0, set.Live())
	require.Zero(t, set.CheckLeaks())
}
