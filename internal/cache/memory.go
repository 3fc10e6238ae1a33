package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is an LRU cache bounded by the total byte size of its values.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[string]*list.Element
	lru      *list.List
	stats    Stats
}

type memoryEntry struct {
	key     string
	value   []byte
	created time.Time
}

// NewMemoryCache creates a memory cache holding at most capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the value for key and marks it recently used.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.lru.MoveToFront(elem)
	c.stats.Hits++
	return elem.Value.(*memoryEntry).value, true
}

// Put stores value under key, evicting least recently used entries as needed.
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(value))
	if n > c.capacity {
		return ErrItemTooLarge
	}
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	for c.size+n > c.capacity && c.lru.Len() > 0 {
		c.remove(c.lru.Back())
		c.stats.Evictions++
	}

	c.items[key] = c.lru.PushFront(&memoryEntry{key: key, value: value, created: time.Now()})
	c.size += n
	return nil
}

// Delete removes key. Missing keys are not an error.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Clear empties the cache.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.size = 0
	return nil
}

// Contains reports whether key is cached without touching its recency.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Prune removes entries created more than maxAge ago.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).created.Before(cutoff) {
			c.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Capacity = c.capacity
	s.Size = c.size
	s.Items = int64(len(c.items))
	return s
}

// remove must be called with mu held.
func (c *MemoryCache) remove(elem *list.Element) {
	entry := c.lru.Remove(elem).(*memoryEntry)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.value))
}
