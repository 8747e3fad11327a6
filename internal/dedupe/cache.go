package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// Cache remembers recently processed document ids inside a TTL window, with a
// hard capacity bound. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	seen     map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
}

type record struct {
	key string
	ts  time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		seen:     make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Observe records the key and reports whether it had already been observed
// inside the ttl window. The empty key is never deduplicated.
func (c *Cache) Observe(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired(now)

	if _, ok := c.seen[key]; ok {
		return true
	}

	c.seen[key] = c.order.PushBack(record{key: key, ts: now})
	c.evictOverCapacity()
	return false
}

// evictExpired drops entries older than the ttl. Entries are ordered by
// insertion time, so it can stop at the first fresh one; everything left
// afterwards is inside the window.
func (c *Cache) evictExpired(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for c.order.Len() > 0 {
		front := c.order.Front()
		rec := front.Value.(record)
		if !rec.ts.Before(cutoff) {
			break
		}
		c.order.Remove(front)
		delete(c.seen, rec.key)
	}
}

// evictOverCapacity runs after each insert and drops the oldest entries until
// no more than capacity remain.
func (c *Cache) evictOverCapacity() {
	for len(c.seen) > c.capacity {
		front := c.order.Front()
		delete(c.seen, front.Value.(record).key)
		c.order.Remove(front)
	}
}
