package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/postgres"
	"github.com/flexprice/tariff/internal/types"
	"github.com/lib/pq"
)

type tariffPlanRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTariffPlanRepository(db *postgres.DB, logger *logger.Logger) tariffplan.Repository {
	return &tariffPlanRepository{db: db, logger: logger}
}

func (r *tariffPlanRepository) Create(ctx context.Context, p *tariffplan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO tariff_plans (
			id, tenant_id, name, description, estimate_method, base_price, fixed_cost,
			free_quantity, tax_percent, currency, tiers, metadata,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :tenant_id, :name, :description, :estimate_method, :base_price, :fixed_cost,
			:free_quantity, :tax_percent, :currency, :tiers, :metadata,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.WithContext(ctx).Debugw("creating tariff plan",
		"plan_id", p.ID,
		"estimate_method", p.EstimateMethod,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ierr.WithError(err).
				WithHintf("Tariff plan %s already exists", p.ID).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create tariff plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tariffPlanRepository) Get(ctx context.Context, id string) (*tariffplan.Plan, error) {
	query := `
		SELECT * FROM tariff_plans
		WHERE id = $1
		AND tenant_id = $2
		AND status != $3`

	var p tariffplan.Plan
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Tariff plan %s not found", id).
				WithReportableDetails(map[string]any{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tariff plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *tariffPlanRepository) List(ctx context.Context, filter *types.TariffPlanFilter) ([]*tariffplan.Plan, error) {
	if filter == nil {
		filter = types.NewNoLimitTariffPlanFilter()
	}

	where, args := r.buildWhere(ctx, filter)
	query := fmt.Sprintf("SELECT * FROM tariff_plans WHERE %s ORDER BY created_at %s", where, orderDirection(filter))
	if !filter.IsUnlimited() {
		args = append(args, filter.GetLimit(), filter.GetOffset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var plans []*tariffplan.Plan
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tariff plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *tariffPlanRepository) Count(ctx context.Context, filter *types.TariffPlanFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitTariffPlanFilter()
	}

	where, args := r.buildWhere(ctx, filter)
	query := fmt.Sprintf("SELECT COUNT(*) FROM tariff_plans WHERE %s", where)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count tariff plans").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *tariffPlanRepository) Update(ctx context.Context, p *tariffplan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	p.Touch(ctx)

	query := `
		UPDATE tariff_plans SET
			name = :name,
			description = :description,
			estimate_method = :estimate_method,
			base_price = :base_price,
			fixed_cost = :fixed_cost,
			free_quantity = :free_quantity,
			tax_percent = :tax_percent,
			currency = :currency,
			tiers = :tiers,
			metadata = :metadata,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id AND status != 'deleted'`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tariff plan").
			Mark(ierr.ErrDatabase)
	}
	return r.checkAffected(result, p.ID)
}

func (r *tariffPlanRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE tariff_plans SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.StatusDeleted,
		time.Now().UTC(),
		types.GetUserID(ctx),
		id,
		types.GetTenantID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete tariff plan").
			Mark(ierr.ErrDatabase)
	}
	return r.checkAffected(result, id)
}

func (r *tariffPlanRepository) checkAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewErrorf("tariff plan %s not found", id).
			WithHintf("Tariff plan %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// buildWhere returns the WHERE clause shared by List and Count with positional args
func (r *tariffPlanRepository) buildWhere(ctx context.Context, filter *types.TariffPlanFilter) (string, []interface{}) {
	conditions := []string{"tenant_id = $1", "status = $2"}
	args := []interface{}{types.GetTenantID(ctx), filter.GetStatus()}

	if len(filter.PlanIDs) > 0 {
		args = append(args, pq.Array(filter.PlanIDs))
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if len(filter.EstimateMethods) > 0 {
		methods := make([]string, len(filter.EstimateMethods))
		for i, m := range filter.EstimateMethods {
			methods[i] = string(m)
		}
		args = append(args, pq.Array(methods))
		conditions = append(conditions, fmt.Sprintf("estimate_method = ANY($%d)", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func orderDirection(filter *types.TariffPlanFilter) string {
	if filter.GetOrder() == types.OrderAsc {
		return "ASC"
	}
	return "DESC"
}
