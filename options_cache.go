package tokens

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the rule set.
func WithProgramCache(cache ProgramCache) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.programCache = cache
	}
}

const (
	defaultProgramTTL      = 30 * time.Minute
	defaultProgramCapacity = 512
)

// TTLProgramCache is a ProgramCache backed by ttlcache. Entries expire after
// the configured TTL and the least recently used entry is evicted once the
// capacity is reached.
type TTLProgramCache struct {
	cache *ttlcache.Cache[string, any]
}

// NewTTLProgramCache builds a cache. Non-positive arguments select defaults.
func NewTTLProgramCache(ttl time.Duration, capacity uint64) *TTLProgramCache {
	if ttl <= 0 {
		ttl = defaultProgramTTL
	}
	if capacity == 0 {
		capacity = defaultProgramCapacity
	}
	cache := ttlcache.New[string, any](
		ttlcache.WithTTL[string, any](ttl),
		ttlcache.WithCapacity[string, any](capacity),
	)
	return &TTLProgramCache{cache: cache}
}

// Get implements ProgramCache.
func (c *TTLProgramCache) Get(key string) (any, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements ProgramCache.
func (c *TTLProgramCache) Set(key string, value any) {
	c.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Len returns the number of cached programs.
func (c *TTLProgramCache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached program.
func (c *TTLProgramCache) Purge() {
	c.cache.DeleteAll()
}
