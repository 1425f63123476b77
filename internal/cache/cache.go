// Package cache provides the TTL and size bounded result cache used by the
// match orchestrator, keyed by a versioned request fingerprint.
package cache

import (
	"sort"
	"sync"
	"time"

	"jobmate/match-service/internal/model"
)

// entry pairs a result payload with its insertion timestamp.
type entry struct {
	matches    []model.JobMatch
	insertedAt time.Time
}

// Cache is an in-process key/value store. Expired entries are
// indistinguishable from absent ones. When the size bound is exceeded the
// oldest half of the entries is evicted in one pass; there is no per-access
// LRU bookkeeping.
//
// A single exclusive lock guards the whole cache. Get and Set are therefore
// linearizable per key; last writer wins by insertion timestamp.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New returns a Cache with the given TTL and size bound.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached matches for fingerprint, or false when the entry is
// absent or past its TTL. The returned slice is a copy: callers filter and
// mutate their view without touching the cached payload.
func (c *Cache) Get(fingerprint string) ([]model.JobMatch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, fingerprint)
		return nil, false
	}

	out := make([]model.JobMatch, len(e.matches))
	copy(out, e.matches)
	return out, true
}

// Set stores matches under fingerprint, evicting the oldest half of all
// entries when the size bound is exceeded.
func (c *Cache) Set(fingerprint string, matches []model.JobMatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]model.JobMatch, len(matches))
	copy(stored, matches)
	c.entries[fingerprint] = entry{matches: stored, insertedAt: c.now()}

	if len(c.entries) > c.maxEntries {
		c.evictOldestHalf()
	}
}

// PurgeExpired removes every entry past its TTL and returns how many were
// dropped. Called periodically by the scheduler; Get already treats expired
// entries as absent, so this only reclaims memory.
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for k, e := range c.entries {
		if c.now().Sub(e.insertedAt) >= c.ttl {
			delete(c.entries, k)
			purged++
		}
	}
	return purged
}

// Len returns the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestHalf drops the oldest half of the entries by insertion
// timestamp. Caller must hold the lock.
func (c *Cache) evictOldestHalf() {
	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, at: e.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	for _, a := range all[:len(all)/2] {
		delete(c.entries, a.key)
	}
}
