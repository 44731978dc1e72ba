package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(t *tenantLimiters) func(tenant string) int {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler(logger.NewNoopLogger(), nil), GuestAuthenticateMiddleware, t.middleware)
	r.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	return func(tenant string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		req.Header.Set("X-Tenant-ID", tenant)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(
		ErrorHandler(logger.NewNoopLogger(), nil),
		GuestAuthenticateMiddleware,
		RateLimitMiddleware(config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}),
	)
	r.GET("/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(tenant string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		req.Header.Set("X-Tenant-ID", tenant)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("tenant_a"))
	assert.Equal(t, http.StatusOK, call("tenant_a"))
	assert.Equal(t, http.StatusTooManyRequests, call("tenant_a"))

	// buckets are per tenant
	assert.Equal(t, http.StatusOK, call("tenant_b"))
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(config.RateLimitConfig{Enabled: false, Burst: 0}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitEvictsIdleTenants(t *testing.T) {
	limiters := newTenantLimiters(config.RateLimitConfig{
		Enabled: true, RequestsPerSecond: 0.001, Burst: 1, IdleTTL: 300 * time.Millisecond,
	})
	call := limitedRouter(limiters)

	require.Equal(t, http.StatusOK, call("tenant_a"))
	require.Equal(t, http.StatusTooManyRequests, call("tenant_a"))

	// one bucket per distinct header value, all dropped once idle
	for i := 0; i < 500; i++ {
		call(fmt.Sprintf("tenant_%d", i))
	}
	assert.Equal(t, 501, limiters.buckets.ItemCount())
	assert.Eventually(t, func() bool {
		return limiters.buckets.ItemCount() == 0
	}, 3*time.Second, 20*time.Millisecond)

	// an evicted tenant starts over with a full bucket
	assert.Equal(t, http.StatusOK, call("tenant_a"))
}

func TestRateLimitIdleTTLSlidesOnUse(t *testing.T) {
	limiters := newTenantLimiters(config.RateLimitConfig{
		Enabled: true, RequestsPerSecond: 0.001, Burst: 1, IdleTTL: 200 * time.Millisecond,
	})
	call := limitedRouter(limiters)

	require.Equal(t, http.StatusOK, call("tenant_a"))
	time.Sleep(120 * time.Millisecond)
	require.Equal(t, http.StatusTooManyRequests, call("tenant_a"))
	time.Sleep(120 * time.Millisecond)

	// 240ms since the first call, but only 120ms since the last one
	assert.Equal(t, http.StatusTooManyRequests, call("tenant_a"))
}
