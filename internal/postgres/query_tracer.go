package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/flexprice/tariff/internal/logger"
)

// TracedQuerier logs every statement with its duration, tagged with the request
// context and the transaction it ran in
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

func NewTracedQuerier(q Querier, logger *logger.Logger, txID string) *TracedQuerier {
	return &TracedQuerier{Querier: q, logger: logger, txID: txID}
}

func (q *TracedQuerier) trace(ctx context.Context, query string, args interface{}, run func() error) error {
	start := time.Now()
	err := run()

	log := q.logger.WithContext(ctx).SugaredLogger.With(
		"query", query,
		"args", args,
		"took_ms", time.Since(start).Milliseconds(),
	)
	if q.txID != "" {
		log = log.With("tx_id", q.txID)
	}
	// a missing row is a not found, the repository reports it
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Errorw("query failed", "error", err)
		return err
	}
	log.Debug("query done")
	return err
}

func (q *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (res sql.Result, err error) {
	err = q.trace(ctx, query, args, func() error {
		res, err = q.Querier.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (q *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return q.trace(ctx, query, args, func() error {
		return q.Querier.GetContext(ctx, dest, query, args...)
	})
}

func (q *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return q.trace(ctx, query, args, func() error {
		return q.Querier.SelectContext(ctx, dest, query, args...)
	})
}

func (q *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (res sql.Result, err error) {
	err = q.trace(ctx, query, arg, func() error {
		res, err = q.Querier.NamedExecContext(ctx, query, arg)
		return err
	})
	return res, err
}
