package provider

import (
	"time"

	"warpgate.gg/internal/warps"
)

type cacheKey struct {
	UserID string
	Panel  string
}

type cacheEntry struct {
	warps   []warps.Warp
	expires time.Time
}

// Cache holds fetched warp sets per (user, panel) with a short TTL. Expired
// entries are dropped opportunistically on read and in bulk by Sweep. Only
// the engine goroutine touches it.
type Cache struct {
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: map[cacheKey]cacheEntry{}}
}

// Get never returns an entry past its expiry.
func (c *Cache) Get(userID, panel string, now time.Time) ([]warps.Warp, bool) {
	k := cacheKey{UserID: userID, Panel: panel}
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if now.After(e.expires) {
		delete(c.entries, k)
		return nil, false
	}
	return e.warps, true
}

func (c *Cache) Put(userID, panel string, ws []warps.Warp, now time.Time) {
	c.entries[cacheKey{UserID: userID, Panel: panel}] = cacheEntry{
		warps:   ws,
		expires: now.Add(c.ttl),
	}
}

// Invalidate drops every entry for a user (disconnect, mutating action).
func (c *Cache) Invalidate(userID string) {
	for k := range c.entries {
		if k.UserID == userID {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) Clear(userID, panel string) {
	delete(c.entries, cacheKey{UserID: userID, Panel: panel})
}

func (c *Cache) Sweep(now time.Time) int {
	n := 0
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int { return len(c.entries) }
