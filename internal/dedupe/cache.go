// ABOUTME: TTL cache of recently seen notification event keys
// ABOUTME: Suppresses duplicate dispatch when the stream redelivers an event

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	seenAt  time.Time
	element *list.Element
}

// Cache remembers event keys for a TTL, capped at maxSize entries with
// oldest-first eviction. Expired entries are reaped lazily on writes, so no
// background goroutine is needed for the handful of events a client sees.
type Cache struct {
	mu      sync.Mutex
	seen    map[string]*entry
	order   *list.List // keys in insertion order, oldest at front
	ttl     time.Duration
	maxSize int
}

// New creates a cache with the given TTL and size cap.
func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		seen:    make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Seen atomically checks whether key was delivered within the TTL and marks
// it if not. Returns true for a duplicate that should be dropped.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.reap(now)

	if e, ok := c.seen[key]; ok && now.Sub(e.seenAt) < c.ttl {
		return true
	}

	c.mark(key, now)
	return false
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reap(time.Now())
	return len(c.seen)
}

// mark records key, evicting the oldest entry at capacity. Must hold mu.
func (c *Cache) mark(key string, now time.Time) {
	if e, ok := c.seen[key]; ok {
		e.seenAt = now
		c.order.MoveToBack(e.element)
		return
	}

	if len(c.seen) >= c.maxSize {
		if front := c.order.Front(); front != nil {
			delete(c.seen, front.Value.(string))
			c.order.Remove(front)
		}
	}

	c.seen[key] = &entry{seenAt: now, element: c.order.PushBack(key)}
}

// reap drops expired entries from the front of the order list. Must hold mu.
func (c *Cache) reap(now time.Time) {
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		key := front.Value.(string)
		e := c.seen[key]
		if now.Sub(e.seenAt) < c.ttl {
			return
		}
		delete(c.seen, key)
		c.order.Remove(front)
	}
}
