package predict

import (
	"sync"

	"github.com/okian/neuropulse/internal/domain/model"
)

// node is a doubly-linked list entry tracking recency order.
type node struct {
	key        string
	value      model.Prediction
	prev, next *node
}

// lruCache is a fixed-capacity map with explicit least-recently-used
// eviction order. The map indexes list nodes; the list head is the most
// recently used entry. Safe for concurrent get/put from the scoring and
// assessment paths.
type lruCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // most recently used
	tail     *node // least recently used
	capacity int
}

// newLRUCache creates a cache holding at most capacity entries.
func newLRUCache(capacity int) *lruCache {
	if capacity < 1 {
		capacity = 1
	}
	return &lruCache{
		entries:  make(map[string]*node, capacity),
		capacity: capacity,
	}
}

// Get returns the cached prediction for key and marks it most recently
// used.
func (c *lruCache) Get(key string) (model.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return model.Prediction{}, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Put stores a prediction under key, evicting the least recently used
// entry when at capacity.
func (c *lruCache) Put(key string, value model.Prediction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictTail()
	}

	n := &node{key: key, value: value}
	c.pushFront(n)
	c.entries[key] = n
}

// Len returns the current number of cached entries.
func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset discards all entries.
func (c *lruCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*node, c.capacity)
	c.head = nil
	c.tail = nil
}

// pushFront inserts n at the head. Must be called with c.mu held.
func (c *lruCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlink removes n from the list. Must be called with c.mu held.
func (c *lruCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

// moveToFront marks n most recently used. Must be called with c.mu held.
func (c *lruCache) moveToFront(n *node) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// evictTail removes the least recently used entry. Must be called with
// c.mu held.
func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.entries, victim.key)
}
