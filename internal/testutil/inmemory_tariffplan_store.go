package testutil

import (
	"context"
	"strings"

	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/samber/lo"
)

// InMemoryTariffPlanStore implements tariffplan.Repository
type InMemoryTariffPlanStore struct {
	*InMemoryStore[*tariffplan.Plan]
}

// NewInMemoryTariffPlanStore creates a new in-memory tariff plan store
func NewInMemoryTariffPlanStore() *InMemoryTariffPlanStore {
	return &InMemoryTariffPlanStore{
		InMemoryStore: NewInMemoryStore[*tariffplan.Plan](),
	}
}

// tariffPlanFilterFn implements filtering logic for plans
func tariffPlanFilterFn(ctx context.Context, p *tariffplan.Plan, filter interface{}) bool {
	if p == nil {
		return false
	}

	// Check tenant ID
	if tenantID := types.GetTenantID(ctx); tenantID != "" && p.TenantID != tenantID {
		return false
	}

	if p.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.TariffPlanFilter)
	if !ok || f == nil {
		return true // No filter applied
	}

	if f.QueryFilter != nil && f.Status != nil && p.Status != *f.Status {
		return false
	}

	if len(f.PlanIDs) > 0 && !lo.Contains(f.PlanIDs, p.ID) {
		return false
	}

	if len(f.EstimateMethods) > 0 && !lo.Contains(f.EstimateMethods, p.EstimateMethod) {
		return false
	}

	return true
}

// newest first, id breaks ties so pages are stable
func tariffPlanSortFn(a, b *tariffplan.Plan) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (s *InMemoryTariffPlanStore) Create(ctx context.Context, p *tariffplan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, p.ID, p.Copy())
}

func (s *InMemoryTariffPlanStore) Get(ctx context.Context, id string) (*tariffplan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tariffPlanFilterFn(ctx, p, nil) {
		return nil, ierr.NewErrorf("tariff plan %s not found", id).
			WithHintf("Tariff plan %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p.Copy(), nil
}

func (s *InMemoryTariffPlanStore) List(ctx context.Context, filter *types.TariffPlanFilter) ([]*tariffplan.Plan, error) {
	if filter == nil {
		filter = types.NewNoLimitTariffPlanFilter()
	}
	plans, err := s.InMemoryStore.List(ctx, filter, tariffPlanFilterFn, tariffPlanSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(p *tariffplan.Plan, _ int) *tariffplan.Plan {
		return p.Copy()
	}), nil
}

func (s *InMemoryTariffPlanStore) Count(ctx context.Context, filter *types.TariffPlanFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitTariffPlanFilter()
	}
	return s.InMemoryStore.Count(ctx, filter, tariffPlanFilterFn)
}

func (s *InMemoryTariffPlanStore) Update(ctx context.Context, p *tariffplan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	p.Touch(ctx)
	return s.InMemoryStore.Update(ctx, p.ID, p.Copy())
}

func (s *InMemoryTariffPlanStore) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	p.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, p)
}
