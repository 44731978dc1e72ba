package service

import (
	"context"

	"github.com/flexprice/tariff/internal/api/dto"
	"github.com/flexprice/tariff/internal/cache"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	"github.com/flexprice/tariff/internal/sentry"
	"github.com/flexprice/tariff/internal/types"
	"github.com/samber/lo"
)

type TariffPlanService interface {
	CreateTariffPlan(ctx context.Context, req dto.CreateTariffPlanRequest) (*dto.TariffPlanResponse, error)
	GetTariffPlan(ctx context.Context, id string) (*dto.TariffPlanResponse, error)
	GetTariffPlans(ctx context.Context, filter *types.TariffPlanFilter) (*dto.ListTariffPlansResponse, error)
	UpdateTariffPlan(ctx context.Context, id string, req dto.UpdateTariffPlanRequest) (*dto.TariffPlanResponse, error)
	DeleteTariffPlan(ctx context.Context, id string) error
}

type tariffPlanService struct {
	ServiceParams
}

func NewTariffPlanService(params ServiceParams) TariffPlanService {
	return &tariffPlanService{ServiceParams: params}
}

func (s *tariffPlanService) CreateTariffPlan(ctx context.Context, req dto.CreateTariffPlanRequest) (*dto.TariffPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := req.ToPlan(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.TariffPlanRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("created tariff plan",
		"plan_id", plan.ID,
		"estimate_method", plan.EstimateMethod,
	)
	return &dto.TariffPlanResponse{Plan: plan}, nil
}

func (s *tariffPlanService) GetTariffPlan(ctx context.Context, id string) (*dto.TariffPlanResponse, error) {
	plan, err := loadPlan(ctx, s.ServiceParams, id)
	if err != nil {
		return nil, err
	}
	return &dto.TariffPlanResponse{Plan: plan}, nil
}

func (s *tariffPlanService) GetTariffPlans(ctx context.Context, filter *types.TariffPlanFilter) (*dto.ListTariffPlansResponse, error) {
	if filter == nil {
		filter = types.NewTariffPlanFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	plans, err := s.TariffPlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.TariffPlanRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(plans, func(p *tariffplan.Plan, _ int) *dto.TariffPlanResponse {
		return &dto.TariffPlanResponse{Plan: p}
	})
	resp := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *tariffPlanService) UpdateTariffPlan(ctx context.Context, id string, req dto.UpdateTariffPlanRequest) (*dto.TariffPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.TariffPlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := req.Apply(plan); err != nil {
		return nil, err
	}

	if err := s.TariffPlanRepo.Update(ctx, plan); err != nil {
		return nil, err
	}

	invalidatePlan(ctx, s.ServiceParams, id)
	return &dto.TariffPlanResponse{Plan: plan}, nil
}

func (s *tariffPlanService) DeleteTariffPlan(ctx context.Context, id string) error {
	if err := s.TariffPlanRepo.Delete(ctx, id); err != nil {
		return err
	}
	invalidatePlan(ctx, s.ServiceParams, id)
	return nil
}

func planCacheKey(ctx context.Context, id string) string {
	return cache.GenerateKey(cache.PrefixTariffPlan, types.GetTenantID(ctx), id)
}

// loadPlan reads a plan through the plan cache. Callers receive their own copy.
func loadPlan(ctx context.Context, params ServiceParams, id string) (*tariffplan.Plan, error) {
	key := planCacheKey(ctx, id)
	if params.Cache != nil {
		if cached, found := params.Cache.Get(ctx, key); found {
			if plan, ok := cached.(*tariffplan.Plan); ok {
				params.Metrics.ObserveCacheLookup(true)
				return plan.Copy(), nil
			}
		}
		params.Metrics.ObserveCacheLookup(false)
	}

	span, spanCtx := params.Sentry.StartSpan(ctx, "tariff.plan.load", "load tariff plan", map[string]interface{}{
		"plan_id": id,
	})
	plan, err := params.TariffPlanRepo.Get(spanCtx, id)
	sentry.FinishSpan(span, err)
	if err != nil {
		return nil, err
	}

	if params.Cache != nil {
		params.Cache.Set(ctx, key, plan.Copy(), params.Config.Cache.TTL)
	}
	return plan, nil
}

func invalidatePlan(ctx context.Context, params ServiceParams, id string) {
	if params.Cache != nil {
		params.Cache.Delete(ctx, planCacheKey(ctx, id))
	}
}
