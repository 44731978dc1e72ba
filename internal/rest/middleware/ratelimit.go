package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/tariff/internal/cache"
	"github.com/flexprice/tariff/internal/config"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	prefixRateLimit       = "rate_limit:v1:"
	defaultLimiterIdleTTL = 10 * time.Minute
)

// tenantLimiters hands out one token bucket per tenant. Buckets live in a cache with
// a sliding TTL so tenants that stop calling are forgotten; the tenant header is
// caller supplied when auth is off.
type tenantLimiters struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets *cache.InMemoryCache
}

func newTenantLimiters(cfg config.RateLimitConfig) *tenantLimiters {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = defaultLimiterIdleTTL
	}
	return &tenantLimiters{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		buckets: cache.NewInMemoryCache(config.CacheConfig{Enabled: true, TTL: ttl}),
	}
}

func (t *tenantLimiters) get(ctx context.Context, tenantID string) *rate.Limiter {
	key := cache.GenerateKey(prefixRateLimit, tenantID)

	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.buckets.Get(ctx, key)
	limiter, _ := l.(*rate.Limiter)
	if !ok || limiter == nil {
		limiter = rate.NewLimiter(t.limit, t.burst)
	}
	// re-set on every hit to slide the expiry
	t.buckets.Set(ctx, key, limiter, 0)
	return limiter
}

// RateLimitMiddleware throttles requests per tenant. It must run after the
// authentication middleware so the tenant is known.
func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return newTenantLimiters(cfg).middleware
}

func (t *tenantLimiters) middleware(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := types.GetTenantID(ctx)
	if !t.get(ctx, tenantID).Allow() {
		c.Error(ierr.NewErrorf("rate limit exceeded for tenant %s", tenantID).
			WithHint("Too many requests, slow down").
			Mark(ierr.ErrRateLimited))
		c.Abort()
		return
	}
	c.Next()
}
