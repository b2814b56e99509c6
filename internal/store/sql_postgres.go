package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

// DB wraps the shared *sql.DB handle together with the error
// classifier and a fallback logger.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewConnectPostgres opens the server database through the pgx stdlib
// driver and verifies the connection with a ping.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:                 conn,
		logger:             log,
		errorClassificator: NewPostgresErrorClassifier(),
	}, nil
}

// ExecContext shadows the embedded handle's method to retry a write
// once when the classifier reports the failure as transient (dropped
// connection, deadlock rollback). A handle without a classifier, such
// as the client replica, delegates unchanged.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil && db.shouldRetry(ctx, err) {
		res, err = db.DB.ExecContext(ctx, query, args...)
	}

	return res, err
}

// QueryContext applies the same single-retry policy to reads.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil && db.shouldRetry(ctx, err) {
		rows, err = db.DB.QueryContext(ctx, query, args...)
	}

	return rows, err
}

func (db *DB) shouldRetry(ctx context.Context, err error) bool {
	if db.errorClassificator == nil || ctx.Err() != nil {
		return false
	}
	if db.errorClassificator.Classify(err) != Retryable {
		return false
	}

	db.logger.Warn().
		Str("func", "DB.shouldRetry").
		Str("pg_code", postgresErrorCode(err)).
		Err(err).
		Msg("retrying transient database error")

	return true
}

func postgresErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
