package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/cache"
)

func TestMemo_GetOrLoad(t *testing.T) {
	m := cache.NewMemo[[]string](4)
	var calls int

	load := func() ([]string, error) {
		calls++
		return []string{"SwiftFox"}, nil
	}

	first, err := m.GetOrLoad("k", load)
	require.NoError(t, err)
	second, err := m.GetOrLoad("k", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Len())
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	m := cache.NewMemo[int](4)
	boom := errors.New("boom")

	_, err := m.GetOrLoad("k", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Zero(t, m.Len())

	v, err := m.GetOrLoad("k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMemo_Forget(t *testing.T) {
	m := cache.NewMemo[int](4)
	_, _ = m.GetOrLoad("k", func() (int, error) { return 1, nil })
	m.Forget("k")

	v, err := m.GetOrLoad("k", func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestMemo_CollapsesConcurrentMisses(t *testing.T) {
	m := cache.NewMemo[int](4)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func() (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := m.GetOrLoad("shared", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines a moment to pile up behind the first load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, int32(1), calls.Load())
}
