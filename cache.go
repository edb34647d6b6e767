package byname

import "sync"

// Lazy returns a function that looks name up on its first call and returns
// the same value on every later call. Concurrent first calls block until the
// single lookup finishes. If the lookup fails, every call panics.
func Lazy[T any](lookup Lookup[T], name string) func() T {
	return sync.OnceValue(func() T {
		return Must(lookup, name)
	})
}

// Cache memoizes lookups by member name.
// The zero value is not usable; create caches with NewCache.
type Cache[T any] struct {
	lookup Lookup[T]

	mu     sync.RWMutex
	values map[string]T
}

// NewCache creates a Cache resolving names with lookup.
func NewCache[T any](lookup Lookup[T]) *Cache[T] {
	return &Cache[T]{
		lookup: lookup,
		values: make(map[string]T),
	}
}

// Get returns the value for name, looking it up on first use.
// It is safe for concurrent use; each name is looked up at most once.
// Get panics if the lookup fails, and the failure is not cached.
func (c *Cache[T]) Get(name string) T {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have stored it while we waited for the write lock.
	if v, ok := c.values[name]; ok {
		return v
	}

	v = Must(c.lookup, name)
	c.values[name] = v
	return v
}

// Len returns the number of cached names.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
