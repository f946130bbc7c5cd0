// Package cache provides small, generic, thread-safe in-memory caches.
//
// LRU is a fixed-capacity least-recently-used cache. Memo builds on it to
// memoize pure computations: results are bounded by the LRU capacity and
// concurrent misses for the same key are collapsed into a single computation
// with golang.org/x/sync/singleflight.
//
// # Usage
//
//	memo := cache.NewMemo[*Selection](256)
//
//	sel, err := memo.GetOrLoad(key, func() (*Selection, error) {
//		return buildSelection(filters), nil
//	})
//
// Memo is intended for values that are immutable once computed. Callers that
// hand cached values to untrusted code should copy them first.
//
// # Capacity
//
// Both types panic when created with a non-positive capacity: a zero-sized
// cache is always a configuration mistake.
package cache
