package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/postgres"
	"github.com/flexprice/tariff/internal/testutil"
	"github.com/flexprice/tariff/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (tariffplan.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := postgres.NewFromSQL(sqlDB, logger.NewNoopLogger())
	return NewTariffPlanRepository(db, logger.NewNoopLogger()), mock
}

func bracketPlan(ctx context.Context) *tariffplan.Plan {
	return &tariffplan.Plan{
		ID:             "tplan_01",
		Name:           "Mass",
		EstimateMethod: types.ESTIMATE_METHOD_BRACKET,
		FixedCost:      decimal.NewFromInt(7),
		Tiers: tariffplan.TierTable{
			{ThresholdLevel: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5), FreeAllowance: decimal.NewFromInt(3)},
			{ThresholdLevel: decimal.NewFromInt(20), UnitPrice: decimal.NewFromInt(4), FreeAllowance: decimal.NewFromInt(5)},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

func TestTariffPlanRepository_Create(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tariff_plans")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, bracketPlan(ctx)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTariffPlanRepository_CreateDuplicate(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tariff_plans")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(ctx, bracketPlan(ctx))
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
}

func TestTariffPlanRepository_CreateRejectsInvalidPlan(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	p := bracketPlan(ctx)
	p.Tiers = nil

	err := repo.Create(ctx, p)
	require.Error(t, err)
	assert.True(t, ierr.IsMissingTierData(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTariffPlanRepository_Get(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "estimate_method", "base_price", "fixed_cost", "tiers", "status"}).
		AddRow("tplan_01", types.DefaultTenantID, "Mass", "BRACKET", "0", "7",
			[]byte(`[{"threshold_level":"10","unit_price":"5","free_allowance":"3"}]`), "published")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM tariff_plans")).
		WithArgs("tplan_01", types.DefaultTenantID, types.StatusDeleted).
		WillReturnRows(rows)

	p, err := repo.Get(ctx, "tplan_01")
	require.NoError(t, err)
	assert.Equal(t, types.ESTIMATE_METHOD_BRACKET, p.EstimateMethod)
	assert.True(t, p.FixedCost.Equal(decimal.NewFromInt(7)))
	require.Len(t, p.Tiers, 1)
	assert.True(t, p.Tiers[0].ThresholdLevel.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, types.StatusPublished, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTariffPlanRepository_GetNotFound(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM tariff_plans")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(ctx, "tplan_missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestTariffPlanRepository_List(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	filter := types.NewTariffPlanFilter()
	filter.Limit = lo.ToPtr(10)
	filter.EstimateMethods = []types.EstimateMethod{types.ESTIMATE_METHOD_STEP}

	rows := sqlmock.NewRows([]string{"id", "estimate_method"}).
		AddRow("tplan_01", "STEP").
		AddRow("tplan_02", "STEP")

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM tariff_plans WHERE tenant_id = $1 AND status = $2 AND estimate_method = ANY($3) ORDER BY created_at DESC LIMIT $4 OFFSET $5")).
		WithArgs(types.DefaultTenantID, types.StatusPublished, sqlmock.AnyArg(), 10, 0).
		WillReturnRows(rows)

	plans, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTariffPlanRepository_Count(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tariff_plans WHERE tenant_id = $1 AND status = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTariffPlanRepository_UpdateMissing(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tariff_plans SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(ctx, bracketPlan(ctx))
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestTariffPlanRepository_Delete(t *testing.T) {
	ctx := testutil.SetupContext()
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tariff_plans SET status = $1")).
		WithArgs(types.StatusDeleted, sqlmock.AnyArg(), sqlmock.AnyArg(), "tplan_01", types.DefaultTenantID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(ctx, "tplan_01"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
