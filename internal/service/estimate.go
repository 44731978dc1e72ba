package service

import (
	"context"
	"time"

	"github.com/flexprice/tariff/internal/api/dto"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/sentry"
	"github.com/flexprice/tariff/internal/tariff"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

type EstimateService interface {
	// EstimatePlan estimates the cost of usage on a stored plan
	EstimatePlan(ctx context.Context, planID string, usage decimal.Decimal) (*dto.EstimateResponse, error)
	// EstimateInline estimates the cost of usage on a plan definition carried by the request
	EstimateInline(ctx context.Context, req dto.EstimateRequest) (*dto.EstimateResponse, error)
	// Preview estimates every line of a billing preview, failing as a whole on the first bad line
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error)
}

type estimateService struct {
	ServiceParams
}

func NewEstimateService(params ServiceParams) EstimateService {
	return &estimateService{ServiceParams: params}
}

func (s *estimateService) EstimatePlan(ctx context.Context, planID string, usage decimal.Decimal) (*dto.EstimateResponse, error) {
	if planID == "" {
		return nil, ierr.NewError("plan id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation)
	}
	// reject bad usage before paying for a plan lookup
	if err := tariff.ValidateUsage(usage); err != nil {
		return nil, err
	}

	plan, err := loadPlan(ctx, s.ServiceParams, planID)
	if err != nil {
		return nil, err
	}
	return s.estimate(ctx, plan, usage)
}

func (s *estimateService) EstimateInline(ctx context.Context, req dto.EstimateRequest) (*dto.EstimateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	usage, err := req.Usage.Decimal()
	if err != nil {
		return nil, err
	}
	plan, err := req.Plan.ToPlan()
	if err != nil {
		return nil, err
	}
	return s.estimate(ctx, plan, usage)
}

func (s *estimateService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	if err := req.Validate(s.Config.Estimator.MaxPreviewLines); err != nil {
		return nil, err
	}
	s.Metrics.ObservePreview(len(req.Lines))

	span, ctx := s.Sentry.StartSpan(ctx, "tariff.preview", "billing preview", map[string]interface{}{
		"lines": len(req.Lines),
	})

	lines := make([]dto.PreviewLineResponse, len(req.Lines))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	if n := s.Config.Estimator.MaxPreviewConcurrency; n > 0 {
		p = p.WithMaxGoroutines(n)
	}

	for i := range req.Lines {
		i, line := i, req.Lines[i]
		p.Go(func(ctx context.Context) error {
			resp, err := s.previewLine(ctx, line)
			if err != nil {
				return ierr.WithError(err).
					WithMessagef("preview line %d", i).
					WithReportableDetails(map[string]any{
						"line_index": i,
						"line_id":    line.LineID,
					}).
					Error()
			}
			lines[i] = dto.PreviewLineResponse{LineID: line.LineID, EstimateResponse: resp}
			return nil
		})
	}

	err := p.Wait()
	sentry.FinishSpan(span, err)
	if err != nil {
		return nil, err
	}

	return summarizePreview(lines)
}

func (s *estimateService) previewLine(ctx context.Context, line dto.PreviewLineRequest) (*dto.EstimateResponse, error) {
	usage, err := line.Usage.Decimal()
	if err != nil {
		return nil, err
	}
	if line.Plan != nil {
		plan, err := line.Plan.ToPlan()
		if err != nil {
			return nil, err
		}
		return s.estimate(ctx, plan, usage)
	}
	return s.EstimatePlan(ctx, line.PlanID, usage)
}

// summarizePreview totals the lines. Amounts in different currencies are never added.
func summarizePreview(lines []dto.PreviewLineResponse) (*dto.PreviewResponse, error) {
	resp := &dto.PreviewResponse{
		ID:    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREVIEW),
		Lines: lines,
		Total: decimal.Zero,
	}
	for _, line := range lines {
		if line.Currency != "" {
			if resp.Currency != "" && resp.Currency != line.Currency {
				return nil, ierr.NewErrorf("preview mixes currencies %s and %s", resp.Currency, line.Currency).
					WithHint("All lines of a preview must use the same currency").
					Mark(ierr.ErrValidation)
			}
			resp.Currency = line.Currency
		}
		resp.Total = resp.Total.Add(line.Total)
	}
	return resp, nil
}

func (s *estimateService) estimate(ctx context.Context, plan *tariffplan.Plan, usage decimal.Decimal) (*dto.EstimateResponse, error) {
	start := time.Now()
	b, err := tariff.EstimateDetailed(plan, usage)
	s.Metrics.ObserveEstimate(string(plan.EstimateMethod), start, b.Clamped, err)

	log := s.Logger.WithContext(ctx)
	if err != nil {
		log.Debugw("estimate failed",
			"plan_id", plan.ID,
			"estimate_method", plan.EstimateMethod,
			"usage", usage.String(),
			"error", err,
		)
		return nil, err
	}

	log.Debugw("estimated cost",
		"plan_id", plan.ID,
		"estimate_method", plan.EstimateMethod,
		"usage", usage.String(),
		"total", b.Total.String(),
		"clamped", b.Clamped,
	)
	return dto.NewEstimateResponse(plan.ID, plan.Currency, b), nil
}
