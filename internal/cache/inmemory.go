package cache

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/tariff/internal/config"
	goCache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration      = 30 * time.Minute
	DefaultCleanupInterval = time.Hour
)

// InMemoryCache is a process local Cache. When disabled every call is a no-op and
// every lookup misses.
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// NewInMemoryCache creates a new InMemoryCache from the cache section of the config
func NewInMemoryCache(cfg config.CacheConfig) *InMemoryCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &InMemoryCache{
		cache:   goCache.New(ttl, min(ttl, DefaultCleanupInterval)),
		enabled: cfg.Enabled,
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	if !c.enabled {
		return
	}
	c.cache.Delete(key)
}

// DeleteByPrefix drops every key under prefix, e.g. all plans of one tenant
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	if !c.enabled {
		return
	}
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

func (c *InMemoryCache) Flush(_ context.Context) {
	if !c.enabled {
		return
	}
	c.cache.Flush()
}

// ItemCount includes expired items the janitor has not removed yet
func (c *InMemoryCache) ItemCount() int {
	return c.cache.ItemCount()
}
