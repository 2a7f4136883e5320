package cache

import (
	"sync"

	"github.com/akosarev/metaserve/internal/metatile"
	"github.com/akosarev/metaserve/pkg/metrics"
)

// DefaultMaxBytes is the metatile cache budget used when none is configured.
const DefaultMaxBytes int64 = 100 * 1000 * 1000 // ~100 MB

type lfuEntry struct {
	value *metatile.StorageResponse
	freq  uint64
}

// LFUCache is an in-memory metatile cache bounded by the total byte size of
// the cached payloads rather than entry count. When an insert would exceed
// the budget, the least-frequently-used entries are evicted until it fits.
// Entries larger than the whole budget are rejected outright.
type LFUCache struct {
	mu       sync.Mutex
	entries  map[metatile.Tile]*lfuEntry
	maxBytes int64
	curBytes int64
}

var _ MetatileCache = (*LFUCache)(nil)

func NewLFUCache(maxBytes int64) *LFUCache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &LFUCache{
		entries:  make(map[metatile.Tile]*lfuEntry),
		maxBytes: maxBytes,
	}
}

func (c *LFUCache) Get(k metatile.Tile) (*metatile.StorageResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	e.freq++
	return e.value, true
}

func (c *LFUCache) Set(k metatile.Tile, v *metatile.StorageResponse) {
	size := int64(len(v.Data))
	if size > c.maxBytes {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[k]; ok {
		c.curBytes -= int64(len(old.value.Data))
		delete(c.entries, k)
	}

	for c.curBytes+size > c.maxBytes && len(c.entries) > 0 {
		c.evictLocked()
	}

	c.entries[k] = &lfuEntry{value: v, freq: 1}
	c.curBytes += size
	metrics.MetatileCacheBytes.Set(float64(c.curBytes))
}

// evictLocked removes the entry with the lowest access frequency. The linear
// scan is fine here: residency is bounded by budget/metatile size, which
// keeps the map at a few hundred entries at most.
func (c *LFUCache) evictLocked() {
	var (
		victim metatile.Tile
		found  bool
		low    uint64
	)
	for k, e := range c.entries {
		if !found || e.freq < low {
			victim, low, found = k, e.freq, true
		}
	}
	if !found {
		return
	}
	c.curBytes -= int64(len(c.entries[victim].value.Data))
	delete(c.entries, victim)
	metrics.MetatileCacheEvictions.Inc()
}

// SizeBytes reports the total payload bytes currently resident.
func (c *LFUCache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}
