// Package cache provides a thread-safe LRU cache for compiled Rill
// programs.
//
// Parsing and tree construction live outside this module, so the cache is
// keyed by a caller-supplied string (typically the program's source text)
// and is generic over the compilation product. It avoids re-running type
// inference for a program that the pipeline instantiates many times, for
// example one transform applied across many topology partitions.
//
// # Example
//
//	c := cache.New[*rill.Program](256)
//	prog, err := c.GetOrCompile(src, func() (*rill.Program, error) {
//	    return rill.Compile(buildTree(src))
//	})
package cache

import (
	"container/list"
	"sync"
)

// entry is a cache entry stored in the doubly-linked list.
type entry[V any] struct {
	key  string
	prog V
}

// Cache is a thread-safe LRU (Least Recently Used) cache of compiled
// programs. Once the capacity is reached, the least recently accessed
// entry is evicted.
//
// Safe for concurrent use by multiple goroutines. Note that the cached
// programs themselves are not reentrant; callers hand out exclusive
// access per execution, the cache only shares ownership of the compiled
// artifact.
type Cache[V any] struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled program from the cache.
// Returns (prog, true) if found and moves the entry to front (MRU).
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	// If the element is already at the front, skip the write lock.
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}

	if !alreadyFront {
		// Promote to front under write lock; re-check in case of
		// concurrent eviction.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			var zero V
			return zero, false
		}
	}
	return el.Value.(*entry[V]).prog, true
}

// Set inserts or replaces a program in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache[V]) Set(key string, prog V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).prog = prog
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry[V]{key: key, prog: prog})
	c.items[key] = el
}

// GetOrCompile retrieves the program for key from cache, or calls
// compile() to create it, caches the result, and returns it.
// Errors are not negatively cached.
func (c *Cache[V]) GetOrCompile(key string, compile func() (V, error)) (V, error) {
	if prog, ok := c.Get(key); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, prog)
	return prog, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache[V]) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
