package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/halcyde/librecur/event"
)

// CacheEntry holds one memoized expansion result
type CacheEntry struct {
	Starts     []time.Time
	Truncated  bool
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// ExpansionCache memoizes the start instants computed for a
// template/rule pair so repeated expansions of the same series skip
// the date arithmetic. Series identity is not cached: every Expand
// call still mints a fresh series ID.
type ExpansionCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// CacheConfig holds configuration for the expansion cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for expansion caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute, // Cache results for 15 minutes
	MaxEntries:      1000,             // Keep up to 1000 cached results
	CleanupInterval: 5 * time.Minute,  // Cleanup every 5 minutes
}

// NewExpansionCache creates a cache with the given configuration and
// starts its cleanup loop. Non-positive fields fall back to
// DefaultCacheConfig values.
func NewExpansionCache(config CacheConfig) *ExpansionCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}

	cache := &ExpansionCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// generateCacheKey creates a unique key from the expansion inputs.
// Only the seed instant and the rule move any dates; cosmetic
// template fields are left out on purpose.
func (c *ExpansionCache) generateCacheKey(tmpl event.Template, r Rule) string {
	hasher := sha256.New()

	hasher.Write([]byte(tmpl.StartInstant().Format(time.RFC3339Nano)))

	fmt.Fprintf(hasher, "|%d|%d", r.Kind, r.Interval)
	for _, d := range r.Weekdays {
		fmt.Fprintf(hasher, "|wd%d", d)
	}
	fmt.Fprintf(hasher, "|%d|%d|%d|%d|%d|%d|%d",
		r.MonthlyMode, r.YearlyMode, r.Month, r.MonthDay, r.Week, r.Weekday, r.Unit)
	fmt.Fprintf(hasher, "|%d|%d|%s", r.End.Mode, r.End.Count, r.End.Date.Format(time.RFC3339Nano))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a memoized result if it exists and hasn't expired.
// The returned slice is a copy and safe to keep.
func (c *ExpansionCache) Get(tmpl event.Template, r Rule) ([]time.Time, bool, bool) {
	key := c.generateCacheKey(tmpl, r)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		// Entry expired, remove it
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false, false
	}

	c.mutex.Lock()
	entry.AccessedAt = now
	starts := make([]time.Time, len(entry.Starts))
	copy(starts, entry.Starts)
	truncated := entry.Truncated
	c.mutex.Unlock()

	return starts, truncated, true
}

// Set stores an expansion result in the cache.
func (c *ExpansionCache) Set(tmpl event.Template, r Rule, starts []time.Time, truncated bool) {
	key := c.generateCacheKey(tmpl, r)
	now := time.Now()

	stored := make([]time.Time, len(starts))
	copy(stored, starts)

	entry := &CacheEntry{
		Starts:     stored,
		Truncated:  truncated,
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	// If we're over the limit, trigger cleanup
	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries and the least recently accessed
// entries if still over the limit. Callers must hold the write lock.
func (c *ExpansionCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) > c.maxEntries {
		type keyAccess struct {
			key        string
			accessedAt time.Time
		}

		keyAccessList := make([]keyAccess, 0, len(c.entries))
		for key, entry := range c.entries {
			keyAccessList = append(keyAccessList, keyAccess{
				key:        key,
				accessedAt: entry.AccessedAt,
			})
		}

		sort.Slice(keyAccessList, func(i, j int) bool {
			return keyAccessList[i].accessedAt.Before(keyAccessList[j].accessedAt)
		})

		entriesToRemove := len(c.entries) - c.maxEntries
		for i := 0; i < entriesToRemove && i < len(keyAccessList); i++ {
			delete(c.entries, keyAccessList[i].key)
		}
	}
}

// cleanupLoop runs periodic cleanup
func (c *ExpansionCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache. It is safe
// to call more than once.
func (c *ExpansionCache) Close() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *ExpansionCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache usage
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
