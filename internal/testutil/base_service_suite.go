package testutil

import (
	"context"
	"time"

	"github.com/flexprice/tariff/internal/cache"
	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/metrics"
	"github.com/flexprice/tariff/internal/types"
	"github.com/flexprice/tariff/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TariffPlanRepo tariffplan.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Estimator.MaxPreviewLines = 10
	cfg.Estimator.MaxPreviewConcurrency = 4

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TariffPlanRepo: NewInMemoryTariffPlanStore(),
	}
	s.cache = cache.NewInMemoryCache(s.config.Cache)
	s.metrics = metrics.NewMetrics()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TariffPlanRepo.(*InMemoryTariffPlanStore).Clear()
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the plan cache shared by the services under test
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetMetrics returns the metrics registry of the current test
func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
