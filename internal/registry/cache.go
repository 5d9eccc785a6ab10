package registry

import (
	"sync"
	"time"

	"registrar/internal"
)

type cacheEntry struct {
	company  internal.Company
	storedAt time.Time
}

// Cache holds recently read companies keyed by sheet name. Entries expire
// after the configured TTL; expired entries are dropped on read.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: map[string]cacheEntry{},
		now:     time.Now,
	}
}

func (c *Cache) Get(sheetName string) (internal.Company, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sheetName]
	if !ok {
		return internal.Company{}, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, sheetName)
		return internal.Company{}, false
	}
	return entry.company, true
}

func (c *Cache) Set(sheetName string, company internal.Company) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sheetName] = cacheEntry{company: company, storedAt: c.now()}
}

// Invalidate drops one entry after a write to that company.
func (c *Cache) Invalidate(sheetName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sheetName)
}

// InvalidateAll drops everything, used after a full sync.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}
