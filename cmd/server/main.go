package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/tariff/internal/api"
	v1 "github.com/flexprice/tariff/internal/api/v1"
	"github.com/flexprice/tariff/internal/cache"
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/httpclient"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/metrics"
	"github.com/flexprice/tariff/internal/postgres"
	"github.com/flexprice/tariff/internal/repository"
	"github.com/flexprice/tariff/internal/sentry"
	"github.com/flexprice/tariff/internal/service"
	"github.com/flexprice/tariff/internal/types"
	"github.com/flexprice/tariff/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		// Validator backs the package level ValidateRequest
		fx.Invoke(validator.NewValidator),
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Metrics
			metrics.NewMetrics,

			// Postgres, nil in remote mode
			provideDB,

			// HTTP Client for the remote plan store
			httpclient.NewPlanStoreClient,

			// Repositories
			repository.NewTariffPlanRepository,
		),
		sentry.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewTariffPlanService,
			service.NewEstimateService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDB(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	if cfg.Deployment.Mode == types.ModeRemote {
		log.Info("remote mode, plans are read from the plan store")
		return nil, nil
	}

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	if cfg.Deployment.Mode == types.ModeLocal || cfg.Postgres.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func provideHandlers(
	logger *logger.Logger,
	db *postgres.DB,
	tariffPlanService service.TariffPlanService,
	estimateService service.EstimateService,
) api.Handlers {
	return api.Handlers{
		TariffPlan: v1.NewTariffPlanHandler(tariffPlanService, logger),
		Estimate:   v1.NewEstimateHandler(estimateService, logger),
		Health:     v1.NewHealthHandler(db, logger),
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
