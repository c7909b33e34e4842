// Package cache holds recently seen aircraft keyed by ICAO hex so that a
// contact missing from one poll does not vanish from the map until it has
// been silent for a full retention window.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
)

// DefaultRetention is how long an entry survives without a fresh observation.
const DefaultRetention = 10 * time.Second

// Config configures a Cache.
type Config struct {
	// Retention controls how long an aircraft is kept without updates.
	Retention time.Duration

	// Validity decides which cached records Snapshot and Get expose. Records
	// without a position are never cached.
	Validity adsb.ValidityRule
}

// MergeStats summarizes one Merge call.
type MergeStats struct {
	Added   int
	Updated int
	// Skipped counts records without a hex or position and records older than
	// the cached one.
	Skipped int
	Evicted int
}

type entry struct {
	aircraft adsb.Aircraft
	lastSeen time.Time
}

// Cache is a freshness-bounded aircraft store. All methods are safe for
// concurrent use; writers are serialized by the cache mutex.
type Cache struct {
	mu      sync.RWMutex
	cfg     Config
	entries map[string]entry
}

// New creates an empty cache.
func New(cfg Config) *Cache {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	return &Cache{
		cfg:     cfg,
		entries: make(map[string]entry),
	}
}

// Retention returns the configured retention window.
func (c *Cache) Retention() time.Duration { return c.cfg.Retention }

// Merge inserts or refreshes every positioned record under category, stamping it
// with now, then evicts entries that have been silent longer than the
// retention window. An entry already observed after now is left alone, so a
// late-arriving older batch never overwrites newer data.
func (c *Cache) Merge(records []adsb.Aircraft, category adsb.Category, now time.Time) MergeStats {
	var stats MergeStats

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ac := range records {
		if ac.Hex == "" || !ac.HasPosition() {
			stats.Skipped++
			continue
		}

		existing, ok := c.entries[ac.Hex]
		if ok && now.Before(existing.lastSeen) {
			stats.Skipped++
			continue
		}

		ac.Source = category
		c.entries[ac.Hex] = entry{aircraft: ac, lastSeen: now}
		if ok {
			stats.Updated++
		} else {
			stats.Added++
		}
	}

	stats.Evicted = c.evictLocked(now)
	return stats
}

// Evict drops entries silent for longer than the retention window and returns
// how many were removed.
func (c *Cache) Evict(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked(now)
}

func (c *Cache) evictLocked(now time.Time) int {
	evicted := 0
	for hex, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, hex)
			evicted++
		}
	}
	return evicted
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return now.Sub(e.lastSeen) > c.cfg.Retention
}

// Snapshot returns the unexpired entries that pass the validity rule and whose
// category is in enabled, ordered by barometric altitude descending. Aircraft without an altitude
// follow, and ties are broken by hex so the order is deterministic.
func (c *Cache) Snapshot(now time.Time, enabled adsb.CategorySet) []adsb.Aircraft {
	c.mu.RLock()
	out := make([]adsb.Aircraft, 0, len(c.entries))
	for _, e := range c.entries {
		if c.expired(e, now) || !enabled.Has(e.aircraft.Source) || !c.cfg.Validity.Usable(e.aircraft) {
			continue
		}
		out = append(out, e.aircraft)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].AltBaro, out[j].AltBaro
		switch {
		case ai != nil && aj != nil && *ai != *aj:
			return *ai > *aj
		case ai != nil && aj == nil:
			return true
		case ai == nil && aj != nil:
			return false
		}
		return out[i].Hex < out[j].Hex
	})

	return out
}

// Get returns one unexpired aircraft that passes the validity rule, regardless
// of category.
func (c *Cache) Get(hex string, now time.Time) (adsb.Aircraft, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[hex]
	if !ok || c.expired(e, now) || !c.cfg.Validity.Usable(e.aircraft) {
		return adsb.Aircraft{}, time.Time{}, false
	}
	return e.aircraft, e.lastSeen, true
}

// Flush removes every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries, including any not yet evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
