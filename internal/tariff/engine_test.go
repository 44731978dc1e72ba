package tariff

import (
	"sync"
	"testing"

	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tier(threshold, price, free string) tariffplan.Tier {
	return tariffplan.Tier{
		ThresholdLevel: d(threshold),
		UnitPrice:      d(price),
		FreeAllowance:  d(free),
	}
}

type EngineSuite struct {
	suite.Suite
	fixedCost decimal.Decimal
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.fixedCost = d("7")
}

func (s *EngineSuite) estimate(plan *tariffplan.Plan, usage string) decimal.Decimal {
	got, err := Estimate(plan, d(usage))
	s.Require().NoError(err)
	return got
}

func (s *EngineSuite) assertAmount(expected string, actual decimal.Decimal) {
	s.True(d(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func (s *EngineSuite) TestFlatIgnoresUsage() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_FLAT,
		BasePrice:      d("49.90"),
		FixedCost:      s.fixedCost,
	}

	for _, usage := range []string{"0", "1", "17.5", "100000"} {
		s.assertAmount("56.90", s.estimate(plan, usage))
	}
}

func (s *EngineSuite) TestPerUnit() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PER_UNIT,
		BasePrice:      d("2.5"),
		FixedCost:      s.fixedCost,
		FreeQuantity:   d("10"),
	}

	s.assertAmount("7", s.estimate(plan, "10"))
	s.assertAmount("32", s.estimate(plan, "20"))
	s.assertAmount("33.25", s.estimate(plan, "20.5"))
}

func (s *EngineSuite) TestPerUnitMonotonicAboveFreeQuantity() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PER_UNIT,
		BasePrice:      d("0.35"),
		FixedCost:      s.fixedCost,
		FreeQuantity:   d("5"),
		TaxPercent:     d("19"),
	}

	prev := s.estimate(plan, "5")
	for usage := int64(6); usage <= 200; usage += 7 {
		cur := s.estimate(plan, decimal.NewFromInt(usage).String())
		s.True(cur.GreaterThanOrEqual(prev), "usage %d: %s < %s", usage, cur, prev)
		prev = cur
	}
}

func (s *EngineSuite) TestPerUnitBelowFreeQuantityClampsToFixedCost() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PER_UNIT,
		BasePrice:      d("3"),
		FixedCost:      d("4"),
		FreeQuantity:   d("10"),
	}

	// (2 - 10) * 3 + 4 = -20
	b, err := EstimateDetailed(plan, d("2"))
	s.Require().NoError(err)
	s.True(b.Clamped)
	s.assertAmount("-20", b.Subtotal)
	s.assertAmount("4", b.Total)
}

func (s *EngineSuite) bracketPlan() *tariffplan.Plan {
	return &tariffplan.Plan{
		ID:             "tplan_bracket",
		EstimateMethod: types.ESTIMATE_METHOD_BRACKET,
		FixedCost:      s.fixedCost,
		Tiers: tariffplan.TierTable{
			tier("10", "5", "2"),
			tier("20", "4", "0"),
		},
	}
}

func (s *EngineSuite) TestBracketBoundaries() {
	plan := s.bracketPlan()

	b, err := EstimateDetailed(plan, d("9"))
	s.Require().NoError(err)
	s.Equal(0, b.TierIndex)
	s.assertAmount("42", b.Total) // (9-2)*5 + 7

	b, err = EstimateDetailed(plan, d("15"))
	s.Require().NoError(err)
	s.Equal(1, b.TierIndex)
	s.assertAmount("67", b.Total) // 15*4 + 7

	// threshold is exclusive, 10 belongs to the second bracket
	b, err = EstimateDetailed(plan, d("10"))
	s.Require().NoError(err)
	s.Equal(1, b.TierIndex)
	s.assertAmount("47", b.Total) // 10*4 + 7
}

func (s *EngineSuite) TestBracketWithoutMatchFails() {
	plan := s.bracketPlan()

	for _, usage := range []string{"0", "1", "20", "25"} {
		_, err := Estimate(plan, d(usage))
		s.Require().Error(err, "usage %s", usage)
		s.True(ierr.IsMissingTierData(err), "usage %s: %v", usage, err)
	}
}

func (s *EngineSuite) TestBracketFirstMatchWins() {
	plan := s.bracketPlan()
	plan.Tiers = append(plan.Tiers, tier("1000", "1", "0"))

	b, err := EstimateDetailed(plan, d("19.5"))
	s.Require().NoError(err)
	s.Equal(1, b.TierIndex)
}

func (s *EngineSuite) TestStepIsNotScaledByUsage() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_STEP,
		FixedCost:      s.fixedCost,
		Tiers: tariffplan.TierTable{
			tier("10", "100", "0"),
			tier("50", "80", "0"),
		},
	}

	s.assertAmount("107", s.estimate(plan, "5"))
	s.assertAmount("107", s.estimate(plan, "0"))
	s.assertAmount("87", s.estimate(plan, "10"))
	s.assertAmount("87", s.estimate(plan, "49"))

	// beyond every threshold only the fixed cost is charged
	b, err := EstimateDetailed(plan, d("60"))
	s.Require().NoError(err)
	s.Equal(-1, b.TierIndex)
	s.assertAmount("7", b.Total)
}

func (s *EngineSuite) TestProgressive() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PROGRESSIVE,
		FixedCost:      s.fixedCost,
		Tiers: tariffplan.TierTable{
			tier("10", "5", "0"),
			tier("30", "3", "0"),
		},
	}

	s.assertAmount("7", s.estimate(plan, "0"))
	s.assertAmount("32", s.estimate(plan, "5"))   // 5*5
	s.assertAmount("57", s.estimate(plan, "10"))  // 10*5
	s.assertAmount("102", s.estimate(plan, "25")) // 50 + 15*3
	s.assertAmount("117", s.estimate(plan, "30")) // 50 + 20*3
	s.assertAmount("147", s.estimate(plan, "40")) // 50 + 60 + 10*3
}

func (s *EngineSuite) TestTaxRoundTrip() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PER_UNIT,
		BasePrice:      d("1.37"),
		FixedCost:      s.fixedCost,
	}

	for _, tax := range []string{"0", "5", "7.5", "19", "21", "100"} {
		plan.TaxPercent = d(tax)
		b, err := EstimateDetailed(plan, d("33"))
		s.Require().NoError(err)

		rate := decimal.NewFromInt(1).Add(d(tax).Shift(-2))
		back := b.Total.DivRound(rate, 12)
		s.True(back.Sub(b.Subtotal).Abs().LessThan(d("0.000000001")), "tax %s: %s != %s", tax, back, b.Subtotal)
		s.True(b.Subtotal.Add(b.TaxAmount).Equal(b.Total))
	}
}

func (s *EngineSuite) TestTaxIsApplied() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_FLAT,
		BasePrice:      d("100"),
		TaxPercent:     d("21"),
	}

	b, err := EstimateDetailed(plan, d("1"))
	s.Require().NoError(err)
	s.assertAmount("121", b.Total)
	s.assertAmount("21", b.TaxAmount)
}

func (s *EngineSuite) TestMissingTiers() {
	for _, method := range []types.EstimateMethod{
		types.ESTIMATE_METHOD_BRACKET,
		types.ESTIMATE_METHOD_STEP,
		types.ESTIMATE_METHOD_PROGRESSIVE,
	} {
		for _, tiers := range []tariffplan.TierTable{nil, {}} {
			got, err := Estimate(&tariffplan.Plan{EstimateMethod: method, Tiers: tiers}, d("5"))
			s.Require().Error(err, "method %s", method)
			s.True(ierr.IsMissingTierData(err))
			s.True(got.IsZero())
		}
	}
}

func (s *EngineSuite) TestUnknownMethod() {
	_, err := Estimate(&tariffplan.Plan{EstimateMethod: "fix"}, d("5"))
	s.Require().Error(err)
	s.True(ierr.IsMisconfiguredPlan(err))

	_, err = Estimate(&tariffplan.Plan{}, d("5"))
	s.Require().Error(err)
	s.True(ierr.IsMisconfiguredPlan(err), "empty method must not default to flat")
}

func (s *EngineSuite) TestNegativeUsage() {
	plan := &tariffplan.Plan{EstimateMethod: types.ESTIMATE_METHOD_FLAT}
	_, err := Estimate(plan, d("-1"))
	s.Require().Error(err)
	s.True(ierr.IsInvalidUsage(err))
}

func (s *EngineSuite) TestNilPlan() {
	_, err := Estimate(nil, d("1"))
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *EngineSuite) TestPlanIsNotMutated() {
	plan := s.bracketPlan()
	plan.Tiers = tariffplan.TierTable{tier("20", "4", "0"), tier("10", "5", "2")}
	before := plan.Copy()

	_, _ = Estimate(plan, d("15"))
	s.Equal(before.Tiers, plan.Tiers)
}

func (s *EngineSuite) TestConcurrentCallsAreIndependent() {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PROGRESSIVE,
		FixedCost:      s.fixedCost,
		TaxPercent:     d("10"),
		Tiers: tariffplan.TierTable{
			tier("10", "5", "0"),
			tier("30", "3", "0"),
		},
	}
	want := s.estimate(plan, "25")

	var wg sync.WaitGroup
	results := make([]decimal.Decimal, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Estimate(plan, d("25"))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		s.True(want.Equal(got))
	}
}

func TestParseUsage(t *testing.T) {
	usage, err := ParseUsage("12.75")
	require.NoError(t, err)
	assert.True(t, usage.Equal(d("12.75")))

	for _, in := range []string{"", "abc", "1,5", "-3"} {
		_, err := ParseUsage(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, ierr.IsInvalidUsage(err), "input %q", in)
	}
}

func BenchmarkEstimateProgressive(b *testing.B) {
	plan := &tariffplan.Plan{
		EstimateMethod: types.ESTIMATE_METHOD_PROGRESSIVE,
		TaxPercent:     d("21"),
		Tiers: tariffplan.TierTable{
			tier("10", "5", "0"),
			tier("30", "3", "0"),
			tier("100", "2", "0"),
		},
	}
	usage := d("75")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Estimate(plan, usage)
	}
}
