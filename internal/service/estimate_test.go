package service

import (
	"testing"

	"github.com/flexprice/tariff/internal/api/dto"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/metrics"
	"github.com/flexprice/tariff/internal/testutil"
	"github.com/flexprice/tariff/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EstimateServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  EstimateService
	planRepo *testutil.InMemoryTariffPlanStore
	stepPlan *tariffplan.Plan
}

func TestEstimateService(t *testing.T) {
	suite.Run(t, new(EstimateServiceSuite))
}

func (s *EstimateServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.planRepo = s.GetStores().TariffPlanRepo.(*testutil.InMemoryTariffPlanStore)
	s.service = NewEstimateService(s.params())
	s.setupTestData()
}

func (s *EstimateServiceSuite) params() ServiceParams {
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetCache(),
		s.GetMetrics(),
		nil,
		s.GetStores().TariffPlanRepo,
	)
}

func (s *EstimateServiceSuite) setupTestData() {
	s.stepPlan = &tariffplan.Plan{
		ID:             "tplan_step",
		Name:           "Step",
		EstimateMethod: types.ESTIMATE_METHOD_STEP,
		FixedCost:      decimal.NewFromInt(7),
		Currency:       "eur",
		Tiers: tariffplan.TierTable{
			{ThresholdLevel: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(100)},
			{ThresholdLevel: decimal.NewFromInt(20), UnitPrice: decimal.NewFromInt(80)},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.planRepo.Create(s.GetContext(), s.stepPlan))
}

func (s *EstimateServiceSuite) TestEstimatePlan() {
	tests := []struct {
		name      string
		usage     string
		total     string
		tierIndex *int
	}{
		{name: "first step", usage: "5", total: "107", tierIndex: lo.ToPtr(0)},
		{name: "second step", usage: "15", total: "87", tierIndex: lo.ToPtr(1)},
		{name: "beyond every step", usage: "25", total: "7"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.EstimatePlan(s.GetContext(), s.stepPlan.ID, decimal.RequireFromString(tt.usage))
			s.Require().NoError(err)
			s.True(decimal.RequireFromString(tt.total).Equal(resp.Total), "got %s", resp.Total)
			s.Equal(tt.tierIndex, resp.TierIndex)
			s.Equal(types.ESTIMATE_METHOD_STEP, resp.EstimateMethod)
			s.Equal("eur", resp.Currency)
			s.Equal(s.stepPlan.ID, resp.PlanID)
		})
	}
}

func (s *EstimateServiceSuite) TestEstimatePlanErrors() {
	_, err := s.service.EstimatePlan(s.GetContext(), s.stepPlan.ID, decimal.NewFromInt(-1))
	s.True(ierr.IsInvalidUsage(err))

	_, err = s.service.EstimatePlan(s.GetContext(), "tplan_missing", decimal.NewFromInt(1))
	s.True(ierr.IsNotFound(err))

	_, err = s.service.EstimatePlan(s.GetContext(), "", decimal.NewFromInt(1))
	s.True(ierr.IsValidation(err))
}

func (s *EstimateServiceSuite) TestEstimatePlanUsesCache() {
	ctx := s.GetContext()
	_, err := s.service.EstimatePlan(ctx, s.stepPlan.ID, decimal.NewFromInt(5))
	s.Require().NoError(err)

	// removed behind the service's back, the cached copy still answers
	s.Require().NoError(s.planRepo.Delete(ctx, s.stepPlan.ID))
	resp, err := s.service.EstimatePlan(ctx, s.stepPlan.ID, decimal.NewFromInt(5))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(107).Equal(resp.Total))

	m := s.GetMetrics()
	s.Equal(1.0, promtestutil.ToFloat64(m.PlanCacheLookupTotal.WithLabelValues("hit")))
	s.Equal(2.0, promtestutil.ToFloat64(m.EstimatesTotal.WithLabelValues("STEP", metrics.OutcomeSuccess)))
}

func (s *EstimateServiceSuite) TestEstimatePlanIsolatedPerTenant() {
	other := testutil.SetupTenantContext("tenant_other")
	_, err := s.service.EstimatePlan(other, s.stepPlan.ID, decimal.NewFromInt(5))
	s.True(ierr.IsNotFound(err))
}

func (s *EstimateServiceSuite) TestEstimateInline() {
	req := dto.EstimateRequest{
		Plan: dto.PlanDefinition{
			EstimateMethod: "accumulated",
			TaxPercent:     lo.ToPtr(decimal.NewFromInt(10)),
			Tiers: []dto.TierRequest{
				{ThresholdLevel: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1)},
				{ThresholdLevel: decimal.NewFromInt(20), UnitPrice: decimal.NewFromInt(2)},
			},
		},
		Usage: "25",
	}

	// 10*1 + 10*2 + 5*2 = 40, plus 10% tax
	resp, err := s.service.EstimateInline(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal(types.ESTIMATE_METHOD_PROGRESSIVE, resp.EstimateMethod)
	s.True(decimal.NewFromInt(40).Equal(resp.Subtotal))
	s.True(decimal.NewFromInt(4).Equal(resp.TaxAmount))
	s.True(decimal.NewFromInt(44).Equal(resp.Total))
	s.Nil(resp.TierIndex)
}

func (s *EstimateServiceSuite) TestEstimateInlineErrors() {
	tests := []struct {
		name  string
		req   dto.EstimateRequest
		check func(error) bool
	}{
		{
			name: "non numeric usage",
			req: dto.EstimateRequest{
				Plan:  dto.PlanDefinition{EstimateMethod: "fix"},
				Usage: "ten",
			},
			check: ierr.IsInvalidUsage,
		},
		{
			name: "negative usage",
			req: dto.EstimateRequest{
				Plan:  dto.PlanDefinition{EstimateMethod: "fix"},
				Usage: "-3",
			},
			check: ierr.IsInvalidUsage,
		},
		{
			name: "unknown method",
			req: dto.EstimateRequest{
				Plan:  dto.PlanDefinition{EstimateMethod: "per-seat"},
				Usage: "3",
			},
			check: ierr.IsMisconfiguredPlan,
		},
		{
			name: "tiered method without tiers",
			req: dto.EstimateRequest{
				Plan:  dto.PlanDefinition{EstimateMethod: "mass"},
				Usage: "3",
			},
			check: ierr.IsMissingTierData,
		},
		{
			name: "missing usage",
			req: dto.EstimateRequest{
				Plan: dto.PlanDefinition{EstimateMethod: "unit"},
			},
			check: ierr.IsValidation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.EstimateInline(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.True(tt.check(err), "unexpected error %v", err)
		})
	}
}

func (s *EstimateServiceSuite) TestPreview() {
	req := dto.PreviewRequest{
		Lines: []dto.PreviewLineRequest{
			{LineID: "storage", PlanID: s.stepPlan.ID, Usage: "15"},
			{LineID: "seats", Plan: &dto.PlanDefinition{
				EstimateMethod: "unit",
				BasePrice:      decimal.RequireFromString("2.5"),
				FreeQuantity:   decimal.NewFromInt(2),
				Currency:       "EUR",
			}, Usage: "6"},
			{LineID: "support", Plan: &dto.PlanDefinition{
				EstimateMethod: "FLAT",
				BasePrice:      decimal.NewFromInt(30),
			}, Usage: "0"},
		},
	}

	resp, err := s.service.Preview(s.GetContext(), req)
	s.Require().NoError(err)
	s.Require().Len(resp.Lines, 3)

	// lines come back in request order
	s.Equal("storage", resp.Lines[0].LineID)
	s.True(decimal.NewFromInt(87).Equal(resp.Lines[0].Total))
	s.Equal("seats", resp.Lines[1].LineID)
	s.True(decimal.NewFromInt(10).Equal(resp.Lines[1].Total))
	s.Equal("support", resp.Lines[2].LineID)

	s.True(decimal.NewFromInt(127).Equal(resp.Total), "got %s", resp.Total)
	s.Equal("eur", resp.Currency)
	s.NotEmpty(resp.ID)
}

func (s *EstimateServiceSuite) TestPreviewFailsAsAWhole() {
	req := dto.PreviewRequest{
		Lines: []dto.PreviewLineRequest{
			{LineID: "ok", PlanID: s.stepPlan.ID, Usage: "15"},
			{LineID: "missing", PlanID: "tplan_missing", Usage: "1"},
		},
	}

	resp, err := s.service.Preview(s.GetContext(), req)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))
}

func (s *EstimateServiceSuite) TestPreviewValidation() {
	ctx := s.GetContext()

	_, err := s.service.Preview(ctx, dto.PreviewRequest{})
	s.True(ierr.IsValidation(err))

	_, err = s.service.Preview(ctx, dto.PreviewRequest{
		Lines: []dto.PreviewLineRequest{{LineID: "both", PlanID: "x", Plan: &dto.PlanDefinition{EstimateMethod: "fix"}, Usage: "1"}},
	})
	s.True(ierr.IsValidation(err))

	tooMany := make([]dto.PreviewLineRequest, s.GetConfig().Estimator.MaxPreviewLines+1)
	for i := range tooMany {
		tooMany[i] = dto.PreviewLineRequest{PlanID: s.stepPlan.ID, Usage: "1"}
	}
	_, err = s.service.Preview(ctx, dto.PreviewRequest{Lines: tooMany})
	s.True(ierr.IsValidation(err))
}

func (s *EstimateServiceSuite) TestPreviewRejectsMixedCurrencies() {
	req := dto.PreviewRequest{
		Lines: []dto.PreviewLineRequest{
			{PlanID: s.stepPlan.ID, Usage: "15"},
			{Plan: &dto.PlanDefinition{EstimateMethod: "fix", BasePrice: decimal.NewFromInt(1), Currency: "usd"}, Usage: "1"},
		},
	}

	_, err := s.service.Preview(s.GetContext(), req)
	s.True(ierr.IsValidation(err))
}
