package api

import (
	v1 "github.com/flexprice/tariff/internal/api/v1"
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/metrics"
	"github.com/flexprice/tariff/internal/rest/middleware"
	"github.com/flexprice/tariff/internal/sentry"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	TariffPlan *v1.TariffPlanHandler
	Estimate   *v1.EstimateHandler
	Health     *v1.HealthHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, m *metrics.Metrics, sentrySvc *sentry.Service) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		m.Middleware(),
		middleware.ErrorHandler(logger, sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, m.Handler())
	}

	v1Group := router.Group("/v1")
	v1Group.Use(
		middleware.AuthenticateMiddleware(cfg, logger),
		middleware.RateLimitMiddleware(cfg.Server.RateLimit),
	)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	estimates := router.Group("/estimates")
	{
		estimates.POST("", handlers.Estimate.Estimate)
		estimates.POST("/preview", handlers.Estimate.Preview)
	}

	plans := router.Group("/plans")
	{
		plans.POST("", handlers.TariffPlan.CreateTariffPlan)
		plans.GET("", handlers.TariffPlan.GetTariffPlans)
		plans.GET("/:id", handlers.TariffPlan.GetTariffPlan)
		plans.PUT("/:id", handlers.TariffPlan.UpdateTariffPlan)
		plans.DELETE("/:id", handlers.TariffPlan.DeleteTariffPlan)
		plans.POST("/:id/estimate", handlers.Estimate.EstimatePlan)
	}
}
