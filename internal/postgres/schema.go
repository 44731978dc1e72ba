package postgres

import (
	"context"

	ierr "github.com/flexprice/tariff/internal/errors"
)

// schema is applied on start when postgres.auto_migrate is set
const schema = `
CREATE TABLE IF NOT EXISTS tariff_plans (
	id              VARCHAR(50) PRIMARY KEY,
	tenant_id       VARCHAR(50) NOT NULL,
	name            VARCHAR(255) NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	estimate_method VARCHAR(20) NOT NULL,
	base_price      NUMERIC(25,15) NOT NULL DEFAULT 0,
	fixed_cost      NUMERIC(25,15) NOT NULL DEFAULT 0,
	free_quantity   NUMERIC(25,15) NOT NULL DEFAULT 0,
	tax_percent     NUMERIC(10,6) NOT NULL DEFAULT 0,
	currency        VARCHAR(3) NOT NULL DEFAULT '',
	tiers           JSONB,
	metadata        JSONB,
	status          VARCHAR(20) NOT NULL DEFAULT 'published',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by      VARCHAR(50) NOT NULL DEFAULT '',
	updated_by      VARCHAR(50) NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tariff_plans_tenant_status ON tariff_plans (tenant_id, status);
`

// Migrate creates the tables used by the service if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to apply database schema").
			Mark(ierr.ErrDatabase)
	}
	db.logger.Info("database schema applied")
	return nil
}

// Schema returns the DDL applied by Migrate
func Schema() string {
	return schema
}
