package completion

import (
	"sync"
	"time"

	"github.com/rlch/nqls"
)

// Cache holds the results of the most recent remote fetch.
// It has a single slot: every Put overwrites the previous entry.
type Cache struct {
	ttl time.Duration

	mu        sync.Mutex
	filled    bool
	prefix    string
	results   []nqls.Candidate
	fetchedAt time.Time
}

// NewCache returns an empty cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns the cached results if the entry was stored for exactly prefix
// and is younger than the TTL at now.
func (c *Cache) Get(prefix string, now time.Time) ([]nqls.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.filled || c.prefix != prefix || now.Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}

	return c.results, true
}

// Put replaces the entry.
func (c *Cache) Put(prefix string, results []nqls.Candidate, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filled = true
	c.prefix = prefix
	c.results = results
	c.fetchedAt = now
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
