package cache

import (
	"sync"
	"time"

	"github.com/kumar-cmd/syngenta-ai/internal/metrics"
)

// Cache memoizes answers for repeated document queries. Every lookup is
// recorded as a hit or a miss, so callers get cache accounting for free.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Purge()
}

type node[V any] struct {
	key     string
	value   V
	expires time.Time
	prev    *node[V]
	next    *node[V]
}

// lru is a bounded map plus an intrusive recency list. head.next is the
// most recently used entry, tail.prev the eviction candidate.
type lru[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*node[V]
	head     *node[V]
	tail     *node[V]
}

// NewLRU creates an LRU cache with capacity and default TTL.
func NewLRU[V any](capacity int, ttl time.Duration) Cache[V] {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &lru[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*node[V], capacity),
		head:     &node[V]{},
		tail:     &node[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

func (c *lru[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	n, ok := c.items[key]
	if !ok {
		metrics.IncCache("miss")
		return zero, false
	}
	if !n.expires.IsZero() && !time.Now().Before(n.expires) {
		c.unlink(n)
		delete(c.items, key)
		metrics.IncCache("miss")
		return zero, false
	}
	c.unlink(n)
	c.pushFront(n)
	metrics.IncCache("hit")
	return n.value, true
}

// Set stores value under key. ttl <= 0 falls back to the cache default.
func (c *lru[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.items[key]; ok {
		n.value = value
		n.expires = c.expiry(ttl)
		c.unlink(n)
		c.pushFront(n)
		return
	}

	if len(c.items) >= c.capacity {
		if oldest := c.tail.prev; oldest != c.head {
			c.unlink(oldest)
			delete(c.items, oldest.key)
		}
	}

	n := &node[V]{key: key, value: value, expires: c.expiry(ttl)}
	c.items[key] = n
	c.pushFront(n)
}

func (c *lru[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*node[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *lru[V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func (c *lru[V]) unlink(n *node[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *lru[V]) pushFront(n *node[V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}
