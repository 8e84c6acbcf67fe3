package folio

import (
	"sync"
	"time"
)

const (
	cacheKeySitemap = "sitemap"
	cacheKeyFeed    = "feed"
)

// FeedCache keeps rendered sitemap and feed documents. Entries expire after
// the TTL and are dropped whenever the live layer replaces a collection.
type FeedCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	body    []byte
	fetched time.Time
}

// NewFeedCache creates an empty cache with the given TTL.
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func (c *FeedCache) valid(e cacheEntry) bool {
	return e.body != nil && time.Since(e.fetched) < c.ttl
}

// Invalidate clears the cache so the next read rebuilds.
func (c *FeedCache) Invalidate() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Get returns the cached document for key, calling build when it is missing
// or stale. It tries a read lock first; only takes a write lock if a rebuild
// is needed.
func (c *FeedCache) Get(key string, build func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	if ok && c.valid(e) {
		c.mu.RUnlock()
		return e.body, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && c.valid(e) {
		return e.body, nil
	}
	body, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{body: body, fetched: time.Now()}
	return body, nil
}
