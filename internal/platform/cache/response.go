// Package cache provides the in-process response cache that deduplicates
// report fetches against the Google Ads API within a freshness window.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when no explicit limit is configured.
const DefaultMaxEntries = 500

// trimThresholdPct and trimFractionPct control the size-based phase of
// Cleanup: when more than trimThresholdPct percent of MaxEntries survive
// expiration, the oldest trimFractionPct percent of them are dropped.
const (
	trimThresholdPct = 90
	trimFractionPct  = 20
)

// entry is a single cached payload. An entry is live while
// now <= createdAt + ttl; expired entries are never returned and are
// removed lazily on access or eagerly during Cleanup.
type entry struct {
	key       string
	value     any
	createdAt time.Time
	ttl       time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.createdAt.Add(e.ttl))
}

// Stats reports lookup counters and the current cache footprint.
// Size is an entry-count proxy, not a byte measurement.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
	Size    int   `json:"size"`
}

// ResponseCache is a bounded TTL cache keyed by report fingerprints.
// Eviction is FIFO by insertion age, not LRU: a frequently re-read old
// entry is trimmed at the same priority as one never read again.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxEntries int
	hits       int64
	misses     int64

	// now is swapped out in tests for deterministic clocks.
	now func() time.Time
}

// NewResponseCache creates a cache bounded to maxEntries live entries.
// Values <= 0 fall back to DefaultMaxEntries.
func NewResponseCache(maxEntries int) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &ResponseCache{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the live value stored under key. Expired entries are
// removed on access and count as misses. The returned value is shared,
// not copied; callers must treat it as read-only.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if e.expired(c.now()) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under key for ttl. When the cache is at capacity the
// cleanup pass runs first, so the live entry count never exceeds
// maxEntries across a Set call.
func (c *ResponseCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.cleanupLocked()
	}

	c.entries[key] = &entry{
		key:       key,
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	}
}

// Has reports whether Get would return a value for key. It shares Get's
// expiration handling, so it mutates the hit/miss counters the same way.
func (c *ResponseCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key unconditionally and reports whether an entry was removed.
func (c *ResponseCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// DeleteByPattern removes every entry whose key contains substr as a
// literal substring and returns the number removed. Used for targeted
// invalidation of key fragments embedded by GenerateKey.
func (c *ResponseCache) DeleteByPattern(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateCustomer removes every cached report for the given customer
// account, matching the customerId param fragment that GenerateKey embeds.
func (c *ResponseCache) InvalidateCustomer(customerID string) int {
	return c.DeleteByPattern("customerId=" + customerID)
}

// Cleanup removes expired entries, then trims the oldest entries if the
// cache is still above the soft capacity threshold. Expiration runs
// first so stale data is never retained in favor of fresher entries.
func (c *ResponseCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
}

// cleanupLocked implements the two-phase policy. Caller must hold mu.
func (c *ResponseCache) cleanupLocked() {
	now := c.now()

	// Phase 1: drop everything past its TTL.
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}

	// Phase 2: if still above the threshold, trim the oldest survivors.
	if len(c.entries)*100 <= c.maxEntries*trimThresholdPct {
		return
	}

	survivors := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		survivors = append(survivors, e)
	}
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].createdAt.Before(survivors[j].createdAt)
	})

	trim := len(survivors) * trimFractionPct / 100
	for _, e := range survivors[:trim] {
		delete(c.entries, e.key)
	}
}

// Clear wipes all entries and resets the hit/miss counters. This is the
// operator escape hatch for full invalidation (for example after an ads
// API quota reset), distinct from expiration-driven cleanup.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns the lookup counters and current entry count.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
		Size:    len(c.entries),
	}
}

// HitRate returns hits/(hits+misses) as a percentage in [0, 100].
// Returns 0 before any lookups have occurred.
func (c *ResponseCache) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}
