package tariff

import (
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/shopspring/decimal"
)

// bracketFloor is the exclusive lower bound of the first bracket
var bracketFloor = decimal.NewFromInt(1)

// flat ignores usage entirely
func flat(plan *tariffplan.Plan) decimal.Decimal {
	return plan.BasePrice.Add(plan.FixedCost)
}

// perUnit charges every unit above the free quantity. The result goes negative when usage
// is below the free quantity, finish floors it.
func perUnit(plan *tariffplan.Plan, usage decimal.Decimal) decimal.Decimal {
	return usage.Sub(plan.FreeQuantity).Mul(plan.BasePrice).Add(plan.FixedCost)
}

// bracket prices the whole usage at the first tier whose range contains it. Tier i covers
// (1, threshold_0) for i == 0 and [threshold_i-1, threshold_i) after that.
func bracket(plan *tariffplan.Plan, usage decimal.Decimal) (decimal.Decimal, int, error) {
	for i, tier := range plan.Tiers {
		if !tier.ThresholdLevel.GreaterThan(usage) {
			continue
		}

		var aboveFloor bool
		if i == 0 {
			aboveFloor = bracketFloor.LessThan(usage)
		} else {
			// the previous threshold itself belongs to this tier
			aboveFloor = plan.Tiers[i-1].ThresholdLevel.LessThanOrEqual(usage)
		}
		if !aboveFloor {
			continue
		}

		subtotal := usage.Sub(tier.FreeAllowance).Mul(tier.UnitPrice).Add(plan.FixedCost)
		return subtotal, i, nil
	}

	return decimal.Zero, -1, ierr.NewErrorf("no bracket of plan %s covers usage %s", plan.ID, usage).
		WithHint("The plan has no tier covering the given usage").
		WithReportableDetails(map[string]any{
			"plan_id": plan.ID,
			"usage":   usage.String(),
		}).
		Mark(ierr.ErrMissingTierData)
}

// step charges the unit price of the first tier above the usage as a flat amount. Usage at
// or beyond every threshold carries no variable price, only the fixed cost.
func step(plan *tariffplan.Plan, usage decimal.Decimal) (decimal.Decimal, int) {
	for i, tier := range plan.Tiers {
		if tier.ThresholdLevel.GreaterThan(usage) {
			return tier.UnitPrice.Add(plan.FixedCost), i
		}
	}
	return plan.FixedCost, -1
}

// progressive charges each tier's unit price only for the portion of usage inside that
// tier. Usage above the last ceiling is charged at the last tier's price.
func progressive(plan *tariffplan.Plan, usage decimal.Decimal) decimal.Decimal {
	var (
		charged   = decimal.Zero
		consumed  = decimal.Zero
		remaining = usage
	)

	for _, tier := range plan.Tiers {
		if !remaining.IsPositive() {
			break
		}
		portion := decimal.Min(remaining, tier.ThresholdLevel.Sub(consumed))
		charged = charged.Add(portion.Mul(tier.UnitPrice))
		consumed = tier.ThresholdLevel
		remaining = remaining.Sub(portion)
	}

	if remaining.IsPositive() {
		last, _ := plan.Tiers.Last()
		charged = charged.Add(remaining.Mul(last.UnitPrice))
	}

	return charged.Add(plan.FixedCost)
}
