package types

import (
	"strings"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/samber/lo"
)

// EstimateMethod selects the formula used to turn a usage quantity into a charge
type EstimateMethod string

const (
	// ESTIMATE_METHOD_FLAT charges base price plus fixed cost regardless of usage
	ESTIMATE_METHOD_FLAT EstimateMethod = "FLAT"

	// ESTIMATE_METHOD_PER_UNIT charges every unit above the free quantity at the base price
	ESTIMATE_METHOD_PER_UNIT EstimateMethod = "PER_UNIT"

	// ESTIMATE_METHOD_BRACKET prices the whole usage at the single tier it falls into
	// ex 1-10 units at $5 each, 10-20 units at $4 each
	ESTIMATE_METHOD_BRACKET EstimateMethod = "BRACKET"

	// ESTIMATE_METHOD_STEP charges the flat amount of the first tier above the usage
	ESTIMATE_METHOD_STEP EstimateMethod = "STEP"

	// ESTIMATE_METHOD_PROGRESSIVE charges every portion of the usage at its own tier price
	ESTIMATE_METHOD_PROGRESSIVE EstimateMethod = "PROGRESSIVE"
)

// Identifiers used by the billing backend for the estimate method of a plan
const (
	SOURCE_METHOD_FIX         = "fix"
	SOURCE_METHOD_UNIT        = "unit"
	SOURCE_METHOD_MASS        = "mass"
	SOURCE_METHOD_STEP        = "step"
	SOURCE_METHOD_ACCUMULATED = "accumulated"
)

var sourceMethods = map[string]EstimateMethod{
	SOURCE_METHOD_FIX:         ESTIMATE_METHOD_FLAT,
	SOURCE_METHOD_UNIT:        ESTIMATE_METHOD_PER_UNIT,
	SOURCE_METHOD_MASS:        ESTIMATE_METHOD_BRACKET,
	SOURCE_METHOD_STEP:        ESTIMATE_METHOD_STEP,
	SOURCE_METHOD_ACCUMULATED: ESTIMATE_METHOD_PROGRESSIVE,
}

// EstimateMethods lists every supported method in declaration order
var EstimateMethods = []EstimateMethod{
	ESTIMATE_METHOD_FLAT,
	ESTIMATE_METHOD_PER_UNIT,
	ESTIMATE_METHOD_BRACKET,
	ESTIMATE_METHOD_STEP,
	ESTIMATE_METHOD_PROGRESSIVE,
}

func (m EstimateMethod) String() string {
	return string(m)
}

func (m EstimateMethod) Validate() error {
	if !lo.Contains(EstimateMethods, m) {
		return ierr.NewError("invalid estimate method").
			WithHintf("Estimate method must be one of %v", EstimateMethods).
			WithReportableDetails(map[string]any{
				"estimate_method": m,
			}).
			Mark(ierr.ErrMisconfiguredPlan)
	}
	return nil
}

// RequiresTiers reports whether the method reads the plan's tier table
func (m EstimateMethod) RequiresTiers() bool {
	switch m {
	case ESTIMATE_METHOD_BRACKET, ESTIMATE_METHOD_STEP, ESTIMATE_METHOD_PROGRESSIVE:
		return true
	default:
		return false
	}
}

// SourceIdentifier returns the billing backend identifier for the method
func (m EstimateMethod) SourceIdentifier() string {
	for id, method := range sourceMethods {
		if method == m {
			return id
		}
	}
	return ""
}

// EstimateMethodFromSource maps the billing backend identifier (fix, unit, mass, step,
// accumulated) to an EstimateMethod. Unknown identifiers are never defaulted.
func EstimateMethodFromSource(id string) (EstimateMethod, error) {
	method, ok := sourceMethods[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return "", ierr.NewErrorf("unknown estimate method identifier %q", id).
			WithHint("The plan uses an estimate method that is not supported").
			WithReportableDetails(map[string]any{
				"estimate_method": id,
			}).
			Mark(ierr.ErrMisconfiguredPlan)
	}
	return method, nil
}

// ParseEstimateMethod accepts either a method name (PER_UNIT) or a backend identifier (unit)
func ParseEstimateMethod(s string) (EstimateMethod, error) {
	method := EstimateMethod(strings.ToUpper(strings.TrimSpace(s)))
	if lo.Contains(EstimateMethods, method) {
		return method, nil
	}
	return EstimateMethodFromSource(s)
}
