package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/tariff/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Auth       AuthConfig
	Postgres   PostgresConfig
	Cache      CacheConfig
	PlanStore  PlanStoreConfig `mapstructure:"plan_store"`
	Estimator  EstimatorConfig
	Sentry     SentryConfig
	Metrics    MetricsConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api remote"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// AllowedOrigins for browser clients, "*" allows any origin
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig throttles /v1 requests per tenant
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
	// IdleTTL drops the bucket of a tenant idle for this long
	IdleTTL time.Duration `mapstructure:"idle_ttl" validate:"gte=0"`
}

// AuthConfig enables API key authentication. When disabled the tenant is read from
// the X-Tenant-ID header.
type AuthConfig struct {
	Enabled bool
	APIKey  APIKeyConfig `mapstructure:"api_key"`
}

type APIKeyConfig struct {
	Header string `validate:"required"`
	// Keys maps the sha256 hex digest of an API key to its owner
	Keys map[string]APIKeyDetails `mapstructure:"keys"`
}

type APIKeyDetails struct {
	TenantID string `mapstructure:"tenant_id" json:"tenant_id"`
	UserID   string `mapstructure:"user_id" json:"user_id"`
	Name     string `mapstructure:"name" json:"name"`
	IsActive bool   `mapstructure:"is_active" json:"is_active"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
	// ConnectTimeout bounds the retries of the initial connection
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type CacheConfig struct {
	Enabled bool
	// TTL of a cached plan definition
	TTL time.Duration `mapstructure:"ttl"`
}

// PlanStoreConfig points at the billing backend that owns the plan definitions
type PlanStoreConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type EstimatorConfig struct {
	// MaxPreviewLines caps the number of lines in one billing preview
	MaxPreviewLines int `mapstructure:"max_preview_lines" validate:"gte=0"`
	// MaxPreviewConcurrency caps the goroutines used to estimate one preview
	MaxPreviewConcurrency int `mapstructure:"max_preview_concurrency" validate:"gte=0"`
}

type SentryConfig struct {
	Enabled     bool
	DSN         string `mapstructure:"dsn"`
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func NewConfig() (*Configuration, error) {
	// .env is optional, values already in the environment win
	_ = godotenv.Load()

	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tariff")

	// Set up environment variables support
	v.SetEnvPrefix("TARIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()
	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)
	v.SetDefault("server.rate_limit.requests_per_second", defaults.Server.RateLimit.RequestsPerSecond)
	v.SetDefault("server.rate_limit.burst", defaults.Server.RateLimit.Burst)
	v.SetDefault("server.rate_limit.idle_ttl", defaults.Server.RateLimit.IdleTTL)
	v.SetDefault("auth.api_key.header", defaults.Auth.APIKey.Header)
	v.SetDefault("postgres.host", defaults.Postgres.Host)
	v.SetDefault("postgres.port", defaults.Postgres.Port)
	v.SetDefault("postgres.sslmode", defaults.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", defaults.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", defaults.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", defaults.Postgres.ConnMaxLifetimeMinutes)
	v.SetDefault("postgres.connect_timeout", defaults.Postgres.ConnectTimeout)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("plan_store.timeout", defaults.PlanStore.Timeout)
	v.SetDefault("plan_store.max_retries", defaults.PlanStore.MaxRetries)
	v.SetDefault("estimator.max_preview_lines", defaults.Estimator.MaxPreviewLines)
	v.SetDefault("estimator.max_preview_concurrency", defaults.Estimator.MaxPreviewConcurrency)
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.path", defaults.Metrics.Path)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	switch c.Deployment.Mode {
	case types.ModeLocal, types.ModeAPI:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres.host is required in %s mode", c.Deployment.Mode)
		}
	case types.ModeRemote:
		if c.PlanStore.BaseURL == "" {
			return fmt.Errorf("plan_store.base_url is required in %s mode", c.Deployment.Mode)
		}
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      RateLimitConfig{RequestsPerSecond: 50, Burst: 100, IdleTTL: 10 * time.Minute},
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Auth:    AuthConfig{APIKey: APIKeyConfig{Header: "x-api-key"}},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 30,
			ConnectTimeout:         30 * time.Second,
		},
		Cache:     CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		PlanStore: PlanStoreConfig{Timeout: 10 * time.Second, MaxRetries: 3},
		Estimator: EstimatorConfig{MaxPreviewLines: 200, MaxPreviewConcurrency: 8},
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
