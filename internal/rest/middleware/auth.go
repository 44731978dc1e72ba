package middleware

import (
	"github.com/flexprice/tariff/internal/auth"
	"github.com/flexprice/tariff/internal/config"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/types"
	"github.com/gin-gonic/gin"
)

// GuestAuthenticateMiddleware resolves the tenant from the X-Tenant-ID and X-User-ID
// headers, falling back to the default tenant
func GuestAuthenticateMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	c.Request = c.Request.WithContext(types.WithCaller(c.Request.Context(), tenantID, userID))
	c.Next()
}

// AuthenticateMiddleware authenticates requests with an API key and takes the tenant
// from the key's configuration
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	if !cfg.Auth.Enabled {
		return GuestAuthenticateMiddleware
	}

	return func(c *gin.Context) {
		apiKey := c.GetHeader(cfg.Auth.APIKey.Header)
		if apiKey == "" {
			c.Error(ierr.NewError("missing api key").
				WithHint("Unauthorized").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		tenantID, userID, valid := auth.ValidateAPIKey(cfg.Auth.APIKey, apiKey)
		if !valid || tenantID == "" {
			logger.Debugw("invalid api key")
			c.Error(ierr.NewError("invalid api key").
				WithHint("Invalid API key").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(types.WithCaller(c.Request.Context(), tenantID, userID))
		c.Next()
	}
}
