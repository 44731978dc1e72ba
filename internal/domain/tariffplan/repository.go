package tariffplan

import (
	"context"

	"github.com/flexprice/tariff/internal/types"
)

// Repository defines the interface for tariff plan persistence operations
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, filter *types.TariffPlanFilter) ([]*Plan, error)
	Count(ctx context.Context, filter *types.TariffPlanFilter) (int, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id string) error
}
