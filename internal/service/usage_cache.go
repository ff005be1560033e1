package service

import (
	"sync"
	"time"

	"github.com/showscribe/showscribe/internal/model"
)

// UsageCache caches computed ledger entries per (user, month). It is an
// explicit dependency of the usage service rather than package-level state,
// and every successful usage update must call Invalidate for the affected
// key so readers never see stale counters for long.
type UsageCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]usageCacheEntry
}

type usageCacheEntry struct {
	entry   model.UsageLedgerEntry
	expires time.Time
}

// NewUsageCache creates a cache whose entries expire after ttl.
func NewUsageCache(ttl time.Duration) *UsageCache {
	return &UsageCache{
		ttl:     ttl,
		entries: make(map[string]usageCacheEntry),
	}
}

// Get returns the cached entry for (userID, month) if present and fresh.
func (c *UsageCache) Get(userID, month string) (model.UsageLedgerEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[cacheKey(userID, month)]
	if !ok || time.Now().After(cached.expires) {
		return model.UsageLedgerEntry{}, false
	}
	return cached.entry, true
}

// Set stores the entry for (userID, month).
func (c *UsageCache) Set(userID, month string, entry model.UsageLedgerEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(userID, month)] = usageCacheEntry{
		entry:   entry,
		expires: time.Now().Add(c.ttl),
	}
}

// Invalidate drops the cached entry for (userID, month).
func (c *UsageCache) Invalidate(userID, month string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey(userID, month))
}

func cacheKey(userID, month string) string {
	return userID + "/" + month
}
