package types

import (
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 500
	FILTER_DEFAULT_SORT  = "created_at"

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// BaseFilter defines common filtering capabilities
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	GetStatus() Status
	Validate() error
	IsUnlimited() bool
}

// QueryFilter represents a generic query filter with optional fields
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Status *Status `json:"status,omitempty" form:"status"`
	Order  *string `json:"order,omitempty" form:"order"`
}

// NewDefaultQueryFilter returns a filter with default pagination
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// NewNoLimitQueryFilter returns a filter with no pagination limits
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Status: lo.ToPtr(StatusPublished),
		Order:  lo.ToPtr(OrderDesc),
	}
}

// GetLimit returns the limit value or default if not set
func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return *f.Limit
}

// GetOffset returns the offset value or default if not set
func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

// GetStatus returns the status value or default if not set
func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return StatusPublished
	}
	return *f.Status
}

// GetOrder returns the order value or default if not set
func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit <= 0 || *f.Limit > FILTER_MAX_LIMIT) {
		return ierr.NewError("invalid limit").
			WithHintf("Limit must be between 1 and %d", FILTER_MAX_LIMIT).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != nil && !lo.Contains([]string{OrderAsc, OrderDesc}, *f.Order) {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TariffPlanFilter represents the filter options for tariff plans
type TariffPlanFilter struct {
	*QueryFilter

	PlanIDs         []string         `json:"plan_ids,omitempty" form:"plan_ids" validate:"omitempty"`
	EstimateMethods []EstimateMethod `json:"estimate_methods,omitempty" form:"estimate_methods" validate:"omitempty"`
}

// NewTariffPlanFilter creates a new plan filter with default options
func NewTariffPlanFilter() *TariffPlanFilter {
	return &TariffPlanFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitTariffPlanFilter creates a new plan filter without pagination
func NewNoLimitTariffPlanFilter() *TariffPlanFilter {
	return &TariffPlanFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

// Validate validates the filter options
func (f *TariffPlanFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	for _, planID := range f.PlanIDs {
		if planID == "" {
			return ierr.NewError("plan id can not be empty").
				WithHint("Plan info can not be empty").
				Mark(ierr.ErrValidation)
		}
	}
	for _, method := range f.EstimateMethods {
		if err := method.Validate(); err != nil {
			return err
		}
	}
	return nil
}
