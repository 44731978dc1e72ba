package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/tariff/internal/config"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB to provide transaction management
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// Querier interface defines all database operations
// Both *sqlx.DB and *sqlx.Tx implement these methods
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	Rebind(query string) string
}

// NewDB connects to postgres, retrying with exponential backoff until
// postgres.connect_timeout so the service can start alongside its database
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if cfg.Postgres.ConnectTimeout > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.MaxElapsedTime = cfg.Postgres.ConnectTimeout
		policy = exp
	}

	var db *sqlx.DB
	connect := func() error {
		var err error
		db, err = sqlx.Connect("postgres", cfg.Postgres.GetDSN())
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warnw("postgres not reachable, retrying", "error", err, "retry_in", wait.String())
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to the database").
			Mark(ierr.ErrDatabase)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return &DB{DB: db, logger: logger}, nil
}

// NewFromSQL wraps an already opened *sql.DB, used with sqlmock in tests
func NewFromSQL(db *sql.DB, logger *logger.Logger) *DB {
	return &DB{DB: sqlx.NewDb(db, "postgres"), logger: logger}
}

// Close closes the database connection
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
		return err
	}
	return nil
}

// GetQuerier returns either the transaction from context or the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return NewTracedQuerier(tx.Tx, db.logger, tx.ID)
	}
	return NewTracedQuerier(db.DB, db.logger, "")
}
