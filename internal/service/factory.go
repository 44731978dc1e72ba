package service

import (
	"github.com/flexprice/tariff/internal/cache"
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/metrics"
	"github.com/flexprice/tariff/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Sentry  *sentry.Service

	// Repositories
	TariffPlanRepo tariffplan.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	metrics *metrics.Metrics,
	sentry *sentry.Service,
	tariffPlanRepo tariffplan.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		Cache:          cache,
		Metrics:        metrics,
		Sentry:         sentry,
		TariffPlanRepo: tariffPlanRepo,
	}
}
