package storage

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body         []byte
	versionToken string
	fetchedAt    time.Time
}

// TTLCache maps document names to the last fetched body and version token.
// Entries expire after a fixed TTL; there is no size eviction because the
// document set is small and fixed. State lives for the process lifetime only.
type TTLCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewTTLCache creates a cache with the given entry time-to-live
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached body and version token for a document, or ok=false
// when the entry is absent or older than the TTL.
func (c *TTLCache) Get(name string) ([]byte, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.entries[name]
	if !exists {
		return nil, "", false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, "", false
	}
	return entry.body, entry.versionToken, true
}

// Token returns the last known version token for a document regardless of
// entry age. An expired body must be re-fetched, but its token is still the
// newest revision this process has seen and is what a write must precondition
// on.
func (c *TTLCache) Token(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.entries[name]
	if !exists {
		return "", false
	}
	return entry.versionToken, true
}

// Put stores a document body and version token with fetchedAt = now
func (c *TTLCache) Put(name string, body []byte, versionToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cacheEntry{
		body:         body,
		versionToken: versionToken,
		fetchedAt:    c.now(),
	}
}

// Invalidate removes a document's entry
func (c *TTLCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
