package cache

import (
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/logger"
)

// Initialize initializes the cache system
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system",
		"enabled", cfg.Cache.Enabled,
		"ttl", cfg.Cache.TTL.String(),
	)
	return NewInMemoryCache(cfg.Cache)
}
