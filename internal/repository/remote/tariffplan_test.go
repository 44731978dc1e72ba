package remote

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/httpclient"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/testutil"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RemoteRepositorySuite struct {
	suite.Suite
	server *httptest.Server
	repo   tariffplan.Repository
}

func TestRemoteRepository(t *testing.T) {
	suite.Run(t, new(RemoteRepositorySuite))
}

func (s *RemoteRepositorySuite) SetupTest() {
	mux := http.NewServeMux()
	mux.HandleFunc("/plans/tplan_mass", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("key", r.Header.Get("X-API-Key"))
		s.Equal(types.DefaultTenantID, r.Header.Get(types.HeaderTenantID))
		w.Write([]byte(`{
			"id": "tplan_mass",
			"name": "Mass",
			"method": "mass",
			"fixed_cost": 7,
			"tax": "21",
			"currency": "EUR",
			"tiers": [
				{"threshold": "10", "price": 5, "free": 3},
				{"threshold": 20, "price": "4", "free": "5"}
			]
		}`))
	})
	mux.HandleFunc("/plans/tplan_bogus", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "tplan_bogus", "method": "per-seat", "base_price": 1}`))
	})
	mux.HandleFunc("/plans/tplan_untiered", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "tplan_untiered", "method": "step", "fixed_cost": 1}`))
	})
	mux.HandleFunc("/plans", func(w http.ResponseWriter, r *http.Request) {
		s.Equal([]string{"fix"}, r.URL.Query()["method"])
		w.Write([]byte(`{"total": 2, "items": [
			{"id": "a", "method": "fix", "base_price": "10"},
			{"id": "b", "method": "FIX ", "base_price": 12.5}
		]}`))
	})
	s.server = httptest.NewServer(mux)

	client := httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: time.Second}, logger.NewNoopLogger())
	s.repo = NewTariffPlanRepository(client, config.PlanStoreConfig{
		BaseURL: s.server.URL + "/",
		APIKey:  "key",
	}, logger.NewNoopLogger())
}

func (s *RemoteRepositorySuite) TearDownTest() {
	s.server.Close()
}

func (s *RemoteRepositorySuite) TestGetMapsSourcePayload() {
	plan, err := s.repo.Get(testutil.SetupContext(), "tplan_mass")
	s.Require().NoError(err)

	s.Equal(types.ESTIMATE_METHOD_BRACKET, plan.EstimateMethod)
	s.True(plan.FixedCost.Equal(decimal.NewFromInt(7)))
	s.True(plan.TaxPercent.Equal(decimal.NewFromInt(21)))
	s.Equal("eur", plan.Currency)
	s.Require().Len(plan.Tiers, 2)
	s.True(plan.Tiers[1].ThresholdLevel.Equal(decimal.NewFromInt(20)))
	s.True(plan.Tiers[1].FreeAllowance.Equal(decimal.NewFromInt(5)))
	s.Equal(types.DefaultTenantID, plan.TenantID)
}

func (s *RemoteRepositorySuite) TestGetUnknownMethod() {
	_, err := s.repo.Get(testutil.SetupContext(), "tplan_bogus")
	s.Require().Error(err)
	s.True(ierr.IsMisconfiguredPlan(err))
}

func (s *RemoteRepositorySuite) TestGetTieredWithoutTiers() {
	_, err := s.repo.Get(testutil.SetupContext(), "tplan_untiered")
	s.Require().Error(err)
	s.True(ierr.IsMissingTierData(err))
}

func (s *RemoteRepositorySuite) TestGetNotFound() {
	_, err := s.repo.Get(testutil.SetupContext(), "tplan_nope")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RemoteRepositorySuite) TestListAndCount() {
	ctx := testutil.SetupContext()
	filter := types.NewNoLimitTariffPlanFilter()
	filter.EstimateMethods = []types.EstimateMethod{types.ESTIMATE_METHOD_FLAT}

	plans, err := s.repo.List(ctx, filter)
	s.Require().NoError(err)
	s.Len(plans, 2)
	s.True(plans[1].BasePrice.Equal(decimal.RequireFromString("12.5")))

	count, err := s.repo.Count(ctx, filter)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RemoteRepositorySuite) TestWritesAreRejected() {
	ctx := testutil.SetupContext()
	err := s.repo.Create(ctx, &tariffplan.Plan{})
	s.True(ierr.Is(err, ierr.ErrInvalidOperation))
	s.True(ierr.Is(s.repo.Delete(ctx, "a"), ierr.ErrInvalidOperation))
}
