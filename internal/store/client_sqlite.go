// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
)

// clientSchema bootstraps the replica. The schema is small enough that
// plain idempotent DDL beats a migration tool on the client side.
const clientSchema = `
	CREATE TABLE IF NOT EXISTS categories (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT,
		family_id     TEXT NOT NULL DEFAULT '',
		last_modified TIMESTAMP NOT NULL,
		is_deleted    INTEGER NOT NULL DEFAULT 0,
		sync_id       TEXT NOT NULL DEFAULT '',
		sync_status   TEXT NOT NULL,
		sync_error    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS expenses (
		local_id         INTEGER PRIMARY KEY AUTOINCREMENT,
		id               TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL,
		amount_cents     INTEGER NOT NULL,
		date             TIMESTAMP NOT NULL,
		category_id      TEXT NOT NULL,
		family_member_id TEXT NOT NULL DEFAULT '',
		notes            TEXT,
		last_modified    TIMESTAMP NOT NULL,
		is_deleted       INTEGER NOT NULL DEFAULT 0,
		sync_id          TEXT NOT NULL DEFAULT '',
		sync_status      TEXT NOT NULL,
		sync_error       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS budgets (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		amount_cents  INTEGER NOT NULL,
		start_date    TIMESTAMP NOT NULL,
		end_date      TIMESTAMP NOT NULL,
		category_id   TEXT NOT NULL,
		family_id     TEXT NOT NULL DEFAULT '',
		last_modified TIMESTAMP NOT NULL,
		is_deleted    INTEGER NOT NULL DEFAULT 0,
		sync_id       TEXT NOT NULL DEFAULT '',
		sync_status   TEXT NOT NULL,
		sync_error    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS families (
		local_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		remote_id     TEXT NOT NULL DEFAULT '',
		sync_status   TEXT NOT NULL,
		last_modified TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_status ON categories (sync_status);
	CREATE INDEX IF NOT EXISTS idx_expenses_status   ON expenses (sync_status);
	CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses (category_id);
	CREATE INDEX IF NOT EXISTS idx_budgets_status    ON budgets (sync_status);`

// NewConnectSQLite opens (creating if necessary) the client's local
// replica database and applies the schema.
func NewConnectSQLite(ctx context.Context, cfg config.ClientReplica, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(cfg.Path); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}

	if _, err = conn.ExecContext(ctx, clientSchema); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error applying replica schema")
		return nil, fmt.Errorf("error applying replica schema: %w", err)
	}

	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to local replica successfully")

	return &DB{DB: conn, logger: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dbFile == ":memory:" {
		return nil
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return fmt.Errorf("error creating DB dir: %w", mkErr)
			}
		}

		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}
