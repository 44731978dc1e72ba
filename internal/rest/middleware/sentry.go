package middleware

import (
	"time"

	"github.com/flexprice/tariff/internal/config"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware attaches a Sentry hub to every request, recovers panics into Sentry
// and repanics so gin.Recovery still answers 500. Probes are not traced.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	handler := sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/health", cfg.Metrics.Path:
			c.Next()
		default:
			handler(c)
		}
	}
}
