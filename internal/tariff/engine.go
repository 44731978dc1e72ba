// Package tariff turns a plan definition and a usage quantity into an estimated charge.
//
// The engine is pure: it holds no state, does no I/O and never mutates the plan it is
// given, so it is safe to call concurrently on every keystroke of a usage input.
package tariff

import (
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the detailed result of one estimation
type Breakdown struct {
	Method types.EstimateMethod
	Usage  decimal.Decimal
	// Subtotal is the method result before tax, fixed cost included
	Subtotal decimal.Decimal
	// TaxAmount is the tax computed on Subtotal
	TaxAmount decimal.Decimal
	// Total is the estimated charge. When Clamped it is the plan's fixed cost and
	// Subtotal/TaxAmount describe the unclamped computation.
	Total   decimal.Decimal
	Clamped bool
	// TierIndex is the tier that priced the usage for BRACKET and STEP, -1 otherwise
	TierIndex int
}

// Estimate returns the estimated charge, tax included, for the given usage on the plan
func Estimate(plan *tariffplan.Plan, usage decimal.Decimal) (decimal.Decimal, error) {
	b, err := EstimateDetailed(plan, usage)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// EstimateDetailed is Estimate with the intermediate amounts
func EstimateDetailed(plan *tariffplan.Plan, usage decimal.Decimal) (Breakdown, error) {
	if plan == nil {
		return Breakdown{}, ierr.NewError("plan is nil").
			WithHint("A plan definition is required to estimate a cost").
			Mark(ierr.ErrValidation)
	}
	if err := ValidateUsage(usage); err != nil {
		return Breakdown{}, err
	}
	if err := plan.EstimateMethod.Validate(); err != nil {
		return Breakdown{}, err
	}
	if plan.EstimateMethod.RequiresTiers() && len(plan.Tiers) == 0 {
		return Breakdown{}, ierr.NewErrorf("plan %s has no tiers", plan.ID).
			WithHintf("Tiers are required when estimate method is %s", plan.EstimateMethod).
			WithReportableDetails(map[string]any{
				"plan_id":         plan.ID,
				"estimate_method": plan.EstimateMethod,
			}).
			Mark(ierr.ErrMissingTierData)
	}

	var (
		subtotal  decimal.Decimal
		tierIndex = -1
		err       error
	)
	switch plan.EstimateMethod {
	case types.ESTIMATE_METHOD_FLAT:
		subtotal = flat(plan)
	case types.ESTIMATE_METHOD_PER_UNIT:
		subtotal = perUnit(plan, usage)
	case types.ESTIMATE_METHOD_BRACKET:
		subtotal, tierIndex, err = bracket(plan, usage)
	case types.ESTIMATE_METHOD_STEP:
		subtotal, tierIndex = step(plan, usage)
	case types.ESTIMATE_METHOD_PROGRESSIVE:
		subtotal = progressive(plan, usage)
	}
	if err != nil {
		return Breakdown{}, err
	}

	b := finish(plan, subtotal)
	b.Method = plan.EstimateMethod
	b.Usage = usage
	b.TierIndex = tierIndex
	return b, nil
}

// finish applies tax and floors a negative result to the fixed cost
func finish(plan *tariffplan.Plan, subtotal decimal.Decimal) Breakdown {
	// subtotal * (100 + tax) / 100, Shift keeps the division exact
	taxed := subtotal.Mul(hundred.Add(plan.TaxPercent)).Shift(-2)

	b := Breakdown{
		Subtotal:  subtotal,
		TaxAmount: taxed.Sub(subtotal),
		Total:     taxed,
	}
	if taxed.IsNegative() {
		b.Total = plan.FixedCost
		b.Clamped = true
	}
	return b
}

// ValidateUsage rejects negative usage before it reaches a calculator
func ValidateUsage(usage decimal.Decimal) error {
	if usage.IsNegative() {
		return ierr.NewErrorf("usage %s is negative", usage).
			WithHint("Usage quantity must not be negative").
			WithReportableDetails(map[string]any{
				"usage": usage.String(),
			}).
			Mark(ierr.ErrInvalidUsage)
	}
	return nil
}

// ParseUsage parses a user supplied usage quantity
func ParseUsage(s string) (decimal.Decimal, error) {
	usage, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Usage quantity must be a number").
			WithReportableDetails(map[string]any{
				"usage": s,
			}).
			Mark(ierr.ErrInvalidUsage)
	}
	if err := ValidateUsage(usage); err != nil {
		return decimal.Zero, err
	}
	return usage, nil
}
