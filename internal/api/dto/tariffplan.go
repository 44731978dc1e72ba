package dto

import (
	"context"

	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/types"
	"github.com/flexprice/tariff/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TierRequest is one row of a tier table as accepted by the API
type TierRequest struct {
	ThresholdLevel decimal.Decimal `json:"threshold_level"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	FreeAllowance  decimal.Decimal `json:"free_allowance"`
}

// PlanDefinition holds the pricing parameters of a plan. EstimateMethod accepts either a
// method name (PER_UNIT) or the billing backend identifier (unit).
type PlanDefinition struct {
	EstimateMethod string           `json:"estimate_method" validate:"required"`
	BasePrice      decimal.Decimal  `json:"base_price"`
	FixedCost      decimal.Decimal  `json:"fixed_cost"`
	FreeQuantity   decimal.Decimal  `json:"free_quantity"`
	TaxPercent     *decimal.Decimal `json:"tax_percent,omitempty"`
	Currency       string           `json:"currency" validate:"omitempty,len=3"`
	Tiers          []TierRequest    `json:"tiers,omitempty"`
}

func (d *PlanDefinition) Validate() error {
	if err := validator.ValidateRequest(d); err != nil {
		return err
	}
	plan, err := d.ToPlan()
	if err != nil {
		return err
	}
	return plan.Validate()
}

// ToPlan builds an unsaved plan carrying only the pricing parameters
func (d *PlanDefinition) ToPlan() (*tariffplan.Plan, error) {
	method, err := types.ParseEstimateMethod(d.EstimateMethod)
	if err != nil {
		return nil, err
	}

	plan := &tariffplan.Plan{
		EstimateMethod: method,
		BasePrice:      d.BasePrice,
		FixedCost:      d.FixedCost,
		FreeQuantity:   d.FreeQuantity,
		TaxPercent:     lo.FromPtrOr(d.TaxPercent, decimal.Zero),
		Currency:       types.NormalizeCurrency(d.Currency),
	}
	if len(d.Tiers) > 0 {
		plan.Tiers = lo.Map(d.Tiers, func(t TierRequest, _ int) tariffplan.Tier {
			return tariffplan.Tier{
				ThresholdLevel: t.ThresholdLevel,
				UnitPrice:      t.UnitPrice,
				FreeAllowance:  t.FreeAllowance,
			}
		})
	}
	return plan, nil
}

type CreateTariffPlanRequest struct {
	Name        string            `json:"name" validate:"required,max=255"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	PlanDefinition
}

func (r *CreateTariffPlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.PlanDefinition.Validate()
}

func (r *CreateTariffPlanRequest) ToPlan(ctx context.Context) (*tariffplan.Plan, error) {
	plan, err := r.PlanDefinition.ToPlan()
	if err != nil {
		return nil, err
	}
	plan.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TARIFF_PLAN)
	plan.Name = r.Name
	plan.Description = r.Description
	plan.Metadata = r.Metadata
	plan.BaseModel = types.GetDefaultBaseModel(ctx)
	return plan, nil
}

// UpdateTariffPlanRequest patches a stored plan, nil fields are left untouched
type UpdateTariffPlanRequest struct {
	Name           *string           `json:"name,omitempty" validate:"omitempty,max=255"`
	Description    *string           `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	EstimateMethod *string           `json:"estimate_method,omitempty"`
	BasePrice      *decimal.Decimal  `json:"base_price,omitempty"`
	FixedCost      *decimal.Decimal  `json:"fixed_cost,omitempty"`
	FreeQuantity   *decimal.Decimal  `json:"free_quantity,omitempty"`
	TaxPercent     *decimal.Decimal  `json:"tax_percent,omitempty"`
	Currency       *string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Tiers          *[]TierRequest    `json:"tiers,omitempty"`
}

func (r *UpdateTariffPlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name can not be empty").
			WithHint("Please provide a name for the plan").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Apply copies the set fields onto the plan and revalidates the result
func (r *UpdateTariffPlanRequest) Apply(plan *tariffplan.Plan) error {
	if r.EstimateMethod != nil {
		method, err := types.ParseEstimateMethod(*r.EstimateMethod)
		if err != nil {
			return err
		}
		plan.EstimateMethod = method
	}
	if r.Name != nil {
		plan.Name = *r.Name
	}
	if r.Description != nil {
		plan.Description = *r.Description
	}
	if r.Metadata != nil {
		plan.Metadata = r.Metadata
	}
	if r.BasePrice != nil {
		plan.BasePrice = *r.BasePrice
	}
	if r.FixedCost != nil {
		plan.FixedCost = *r.FixedCost
	}
	if r.FreeQuantity != nil {
		plan.FreeQuantity = *r.FreeQuantity
	}
	if r.TaxPercent != nil {
		plan.TaxPercent = *r.TaxPercent
	}
	if r.Currency != nil {
		plan.Currency = types.NormalizeCurrency(*r.Currency)
	}
	if r.Tiers != nil {
		plan.Tiers = lo.Map(*r.Tiers, func(t TierRequest, _ int) tariffplan.Tier {
			return tariffplan.Tier{
				ThresholdLevel: t.ThresholdLevel,
				UnitPrice:      t.UnitPrice,
				FreeAllowance:  t.FreeAllowance,
			}
		})
	}
	return plan.Validate()
}

type TariffPlanResponse struct {
	*tariffplan.Plan
}

// ListTariffPlansResponse represents the response for listing tariff plans
type ListTariffPlansResponse = types.ListResponse[*TariffPlanResponse]
