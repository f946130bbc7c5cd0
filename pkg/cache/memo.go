package cache

import "golang.org/x/sync/singleflight"

// Memo memoizes the results of an expensive, pure computation keyed by string.
// Results live in a bounded LRU, and concurrent misses for the same key share a
// single computation.
type Memo[V any] struct {
	lru   *LRU[string, V]
	group singleflight.Group
}

// NewMemo creates a Memo that keeps at most capacity results.
func NewMemo[V any](capacity int) *Memo[V] {
	return &Memo[V]{lru: NewLRU[string, V](capacity)}
}

// GetOrLoad returns the memoized value for key, calling load on a miss.
// Errors are returned to every waiting caller and are never cached.
func (m *Memo[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := m.lru.Get(key); ok {
		return v, nil
	}

	res, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.lru.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		m.lru.Put(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Len returns the number of memoized results.
func (m *Memo[V]) Len() int {
	return m.lru.Len()
}

// Forget drops the memoized result for key.
func (m *Memo[V]) Forget(key string) {
	m.lru.Remove(key)
	m.group.Forget(key)
}
