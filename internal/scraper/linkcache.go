package scraper

import (
	"sync"
	"time"
)

// DefaultLinkCacheTTL is how long a resolved CFP link is reused
const DefaultLinkCacheTTL = 6 * time.Hour

// LinkCache stores resolved CFP links by detail-page URL with a TTL.
// A nil *LinkCache is a disabled cache.
type LinkCache struct {
	mu       sync.Mutex
	links    map[string]string    // detail URL → external CFP link
	cachedAt map[string]time.Time // detail URL → cache time
	ttl      time.Duration
	now      func() time.Time
}

// NewLinkCache creates an empty cache; a non-positive ttl uses DefaultLinkCacheTTL
func NewLinkCache(ttl time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = DefaultLinkCacheTTL
	}
	return &LinkCache{
		links:    make(map[string]string),
		cachedAt: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached link for a detail URL if present and not expired
func (c *LinkCache) Get(detailURL string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	link, exists := c.links[detailURL]
	if !exists {
		return "", false
	}

	cachedTime, hasTime := c.cachedAt[detailURL]
	if !hasTime || c.now().Sub(cachedTime) > c.ttl {
		delete(c.links, detailURL)
		delete(c.cachedAt, detailURL)
		return "", false
	}

	return link, true
}

// Set stores a resolved link
func (c *LinkCache) Set(detailURL, link string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.links[detailURL] = link
	c.cachedAt[detailURL] = c.now()
}

// CleanExpired removes expired entries and returns how many were removed
func (c *LinkCache) CleanExpired() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, cachedTime := range c.cachedAt {
		if now.Sub(cachedTime) > c.ttl {
			delete(c.links, key)
			delete(c.cachedAt, key)
			removed++
		}
	}

	return removed
}

// Size returns the number of cached entries
func (c *LinkCache) Size() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.links)
}
