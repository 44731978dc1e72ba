package sentry

import (
	"context"
	"time"

	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/types"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

// Service reports errors and spans to sentry. A nil or disabled Service is a no-op.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// Module provides the Service and its lifecycle hooks
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewSentryService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks initialises the client on start and flushes buffered events on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error { return svc.init() },
		OnStop: func(context.Context) error {
			if svc.enabled() {
				sentry.Flush(flushTimeout)
			}
			return nil
		},
	})
}

const flushTimeout = 2 * time.Second

// probes and scrapes never produce transactions
func (s *Service) sampler(sc sentry.SamplingContext) float64 {
	switch sc.Span.Name {
	case "GET /health", "GET " + s.cfg.Metrics.Path:
		return 0
	}
	return s.cfg.Sentry.SampleRate
}

func (s *Service) init() error {
	if !s.enabled() {
		s.logger.Info("sentry disabled")
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.cfg.Sentry.DSN,
		Environment:      s.cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: s.cfg.Sentry.SampleRate,
		TracesSampler:    s.sampler,
	})
	if err != nil {
		s.logger.Errorw("sentry init failed", "error", err)
		return err
	}
	s.logger.Infow("sentry enabled",
		"environment", s.cfg.Sentry.Environment,
		"sample_rate", s.cfg.Sentry.SampleRate,
	)
	return nil
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.cfg.Sentry.Enabled
}

// CaptureException reports an error tagged with the tenant and request of the context
func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.enabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("tenant_id", types.GetTenantID(ctx))
		scope.SetTag("request_id", types.GetRequestID(ctx))
		hub.CaptureException(err)
	})
}

// StartSpan starts a child span of the transaction in the context.
// It returns a nil span when Sentry is disabled, FinishSpan accepts it.
func (s *Service) StartSpan(ctx context.Context, op, description string, data map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, op)
	span.Description = description
	for k, v := range data {
		span.SetData(k, v)
	}
	return span, span.Context()
}

// FinishSpan marks the span with the outcome and finishes it, handling nil spans
func FinishSpan(span *sentry.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}
