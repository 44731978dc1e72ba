package tariffplan

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/shopspring/decimal"
)

// JSONB types for complex fields
type JSONBMetadata map[string]string

// Plan is a pricing plan as defined by the billing backend. It selects one estimate
// method and carries the numeric parameters that method reads.
type Plan struct {
	// ID identifier of the plan
	ID string `db:"id" json:"id"`

	// Name of the plan as shown to subscribers
	Name string `db:"name" json:"name"`

	// Description of the plan
	Description string `db:"description" json:"description"`

	// EstimateMethod selects the pricing formula ex FLAT, PER_UNIT, BRACKET, STEP, PROGRESSIVE
	EstimateMethod types.EstimateMethod `db:"estimate_method" json:"estimate_method"`

	// BasePrice is the flat price (FLAT) or the price per billable unit (PER_UNIT)
	BasePrice decimal.Decimal `db:"base_price" json:"base_price"`

	// FixedCost is charged on top of the usage based amount for every method
	FixedCost decimal.Decimal `db:"fixed_cost" json:"fixed_cost"`

	// FreeQuantity is the usage exempted before charging begins (PER_UNIT only)
	FreeQuantity decimal.Decimal `db:"free_quantity" json:"free_quantity"`

	// TaxPercent is added on top of the subtotal ex 21 means 21%
	TaxPercent decimal.Decimal `db:"tax_percent" json:"tax_percent"`

	// Currency 3 digit ISO currency code in lowercase, informational only
	Currency string `db:"currency" json:"currency"`

	// Tiers are required for BRACKET, STEP and PROGRESSIVE
	Tiers TierTable `db:"tiers" json:"tiers,omitempty"`

	// Metadata is a jsonb field for additional information
	Metadata JSONBMetadata `db:"metadata" json:"metadata,omitempty"`

	types.BaseModel
}

// Tier is one row of a plan's threshold table
type Tier struct {
	// ThresholdLevel is the usage level at which this tier ends. It is an exclusive upper
	// bound for BRACKET and STEP and a cumulative ceiling for PROGRESSIVE.
	ThresholdLevel decimal.Decimal `json:"threshold_level"`
	// UnitPrice is applied to usage falling in this tier
	UnitPrice decimal.Decimal `json:"unit_price"`
	// FreeAllowance is exempted from charge within this tier (BRACKET only)
	FreeAllowance decimal.Decimal `json:"free_allowance"`
}

// TierTable is the ordered list of tiers of a plan, ascending by threshold level
type TierTable []Tier

// Validate checks that thresholds are strictly ascending. The table is never re-sorted,
// the order it arrives in is the order it is evaluated in.
func (t TierTable) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i].ThresholdLevel.LessThanOrEqual(t[i-1].ThresholdLevel) {
			return ierr.NewErrorf("tier %d threshold %s is not above tier %d threshold %s",
				i, t[i].ThresholdLevel, i-1, t[i-1].ThresholdLevel).
				WithHint("Tier thresholds must be strictly ascending without duplicates").
				WithReportableDetails(map[string]any{
					"tier_index":      i,
					"threshold_level": t[i].ThresholdLevel.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// Last returns the tier with the highest threshold
func (t TierTable) Last() (Tier, bool) {
	if len(t) == 0 {
		return Tier{}, false
	}
	return t[len(t)-1], true
}

// Scan implements sql.Scanner for the jsonb tiers column
func (t *TierTable) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("invalid type for jsonb tiers: %T", value)
	}
	return json.Unmarshal(data, t)
}

// Value implements driver.Valuer for the jsonb tiers column
func (t TierTable) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for the jsonb metadata column
func (m *JSONBMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for jsonb metadata: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements driver.Valuer for the jsonb metadata column
func (m JSONBMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Validate checks the structural invariants of a plan: a known estimate method, a tier
// table for the tiered methods and ascending thresholds. Prices are not validated.
func (p *Plan) Validate() error {
	if p == nil {
		return ierr.NewError("plan is nil").
			WithHint("A plan definition is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.EstimateMethod.Validate(); err != nil {
		return err
	}
	if p.EstimateMethod.RequiresTiers() && len(p.Tiers) == 0 {
		return ierr.NewErrorf("plan %s uses %s without tiers", p.ID, p.EstimateMethod).
			WithHintf("Tiers are required when estimate method is %s", p.EstimateMethod).
			Mark(ierr.ErrMissingTierData)
	}
	return p.Tiers.Validate()
}

// Copy returns a deep copy so cached plans can not be mutated through a caller
func (p *Plan) Copy() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Tiers != nil {
		cp.Tiers = make(TierTable, len(p.Tiers))
		copy(cp.Tiers, p.Tiers)
	}
	if p.Metadata != nil {
		cp.Metadata = make(JSONBMetadata, len(p.Metadata))
		for k, v := range p.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
