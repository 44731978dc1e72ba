package middleware

import (
	"net/http"

	"github.com/flexprice/tariff/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSMiddleware handles CORS headers for browser clients estimating as the user types
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	allowAll := lo.Contains(cfg.Server.AllowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(cfg.Server.AllowedOrigins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "*")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
