// Package dedup provides the bounded seen-transaction cache used to compute
// upload deltas. The cache tracks "seen", not "uploaded": reserved
// transactions are cached too so they do not reappear every cycle.
package dedup

import (
	"sync"

	"github.com/dstapel/banksync/internal/domain"
)

// DefaultCapacity matches the reference queue size of the original system.
const DefaultCapacity = 100

// Cache is a fixed-capacity, insertion-ordered set of transaction identities.
// Inserting beyond capacity evicts the oldest entry (FIFO). All operations
// are safe for concurrent use; callers running concurrent cycles must still
// serialize their own contains-then-add sequences.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    []domain.Key
	members  map[domain.Key]struct{}
}

// New creates a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		members:  make(map[domain.Key]struct{}, capacity),
	}
}

// Contains reports whether a transaction with the same canonical identity
// has been seen.
func (c *Cache) Contains(t domain.Transaction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.members[t.Key()]
	return ok
}

// Add records a transaction as seen, evicting the oldest entry when the
// cache is full. Adding an already-seen transaction is a no-op.
func (c *Cache) Add(t domain.Transaction) {
	key := t.Key()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.members[key]; ok {
		return
	}
	if len(c.order) == c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.members, oldest)
	}
	c.order = append(c.order, key)
	c.members[key] = struct{}{}
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
