package dto

import (
	"encoding/json"
	"strings"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/tariff"
	"github.com/flexprice/tariff/internal/types"
	"github.com/flexprice/tariff/internal/validator"
	"github.com/shopspring/decimal"
)

// UsageQuantity is a usage value as typed by the caller. It accepts JSON numbers and
// strings and is only parsed when converted, so malformed input surfaces as invalid usage.
type UsageQuantity string

func (u *UsageQuantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*u = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UsageQuantity(s)
		return nil
	}
	*u = UsageQuantity(raw)
	return nil
}

// Decimal parses the quantity, rejecting non-numeric and negative values
func (u UsageQuantity) Decimal() (decimal.Decimal, error) {
	return tariff.ParseUsage(strings.TrimSpace(string(u)))
}

// EstimateRequest estimates a plan that has not been saved yet
type EstimateRequest struct {
	Plan  PlanDefinition `json:"plan"`
	Usage UsageQuantity  `json:"usage" validate:"required"`
}

func (r *EstimateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if _, err := r.Usage.Decimal(); err != nil {
		return err
	}
	return r.Plan.Validate()
}

// EstimatePlanRequest estimates a stored plan
type EstimatePlanRequest struct {
	Usage UsageQuantity `json:"usage" validate:"required"`
}

func (r *EstimatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := r.Usage.Decimal()
	return err
}

type EstimateResponse struct {
	PlanID         string               `json:"plan_id,omitempty"`
	EstimateMethod types.EstimateMethod `json:"estimate_method"`
	Currency       string               `json:"currency,omitempty"`
	Usage          decimal.Decimal      `json:"usage"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	Total          decimal.Decimal      `json:"total"`
	Clamped        bool                 `json:"clamped"`
	TierIndex      *int                 `json:"tier_index,omitempty"`
}

func NewEstimateResponse(planID, currency string, b tariff.Breakdown) *EstimateResponse {
	resp := &EstimateResponse{
		PlanID:         planID,
		EstimateMethod: b.Method,
		Currency:       currency,
		Usage:          b.Usage,
		Subtotal:       b.Subtotal,
		TaxAmount:      b.TaxAmount,
		Total:          b.Total,
		Clamped:        b.Clamped,
	}
	if b.TierIndex >= 0 {
		idx := b.TierIndex
		resp.TierIndex = &idx
	}
	return resp
}

// PreviewLineRequest is one line of a billing preview. Exactly one of PlanID and Plan is set.
type PreviewLineRequest struct {
	LineID string          `json:"line_id,omitempty"`
	PlanID string          `json:"plan_id,omitempty"`
	Plan   *PlanDefinition `json:"plan,omitempty"`
	Usage  UsageQuantity   `json:"usage" validate:"required"`
}

func (r *PreviewLineRequest) Validate() error {
	if (r.PlanID == "") == (r.Plan == nil) {
		return ierr.NewError("exactly one of plan_id and plan is required").
			WithHint("Each preview line needs either a plan_id or an inline plan").
			WithReportableDetails(map[string]any{
				"line_id": r.LineID,
			}).
			Mark(ierr.ErrValidation)
	}
	if _, err := r.Usage.Decimal(); err != nil {
		return err
	}
	if r.Plan != nil {
		return r.Plan.Validate()
	}
	return nil
}

// PreviewRequest estimates several lines at once, ex the usage lines of an upcoming invoice
type PreviewRequest struct {
	Lines []PreviewLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *PreviewRequest) Validate(maxLines int) error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if maxLines > 0 && len(r.Lines) > maxLines {
		return ierr.NewErrorf("preview has %d lines", len(r.Lines)).
			WithHintf("A preview can hold at most %d lines", maxLines).
			Mark(ierr.ErrValidation)
	}
	for i := range r.Lines {
		if err := r.Lines[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

type PreviewLineResponse struct {
	LineID string `json:"line_id,omitempty"`
	*EstimateResponse
}

type PreviewResponse struct {
	ID       string                `json:"id"`
	Currency string                `json:"currency,omitempty"`
	Lines    []PreviewLineResponse `json:"lines"`
	Total    decimal.Decimal       `json:"total"`
}
