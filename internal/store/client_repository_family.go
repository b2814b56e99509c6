// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

const watermarkKey = "last_sync_timestamp"

// familyReplica is the SQLite-backed implementation of [FamilyReplica].
// The client keeps exactly one family row; Current returns the first
// one by local sequence.
type familyReplica struct {
	*DB
	logger *logger.Logger
}

func NewFamilyReplica(db *DB, logger *logger.Logger) FamilyReplica {
	return &familyReplica{DB: db, logger: logger}
}

func (r *familyReplica) Current(ctx context.Context) (models.LocalFamily, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT local_id, name, remote_id, sync_status, last_modified FROM families ORDER BY local_id LIMIT 1")

	var f models.LocalFamily
	err := row.Scan(&f.LocalID, &f.Name, &f.RemoteID, &f.SyncStatus, &f.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalFamily{}, ErrNotFound
		}
		return models.LocalFamily{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return f, nil
}

func (r *familyReplica) Save(ctx context.Context, family models.LocalFamily) (int64, error) {
	log := logger.FromContext(ctx)

	if family.LocalID == 0 {
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO families (name, remote_id, sync_status, last_modified) VALUES (?, ?, ?, ?)",
			family.Name, family.RemoteID, family.SyncStatus, family.LastModified)
		if err != nil {
			log.Err(err).
				Str("func", "familyReplica.Save").
				Msg("failed to insert family into replica")
			return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		return res.LastInsertId()
	}

	res, err := r.DB.ExecContext(ctx,
		"UPDATE families SET name = ?, remote_id = ?, sync_status = ?, last_modified = ? WHERE local_id = ?",
		family.Name, family.RemoteID, family.SyncStatus, family.LastModified, family.LocalID)
	if err != nil {
		log.Err(err).
			Str("func", "familyReplica.Save").
			Int64("local_id", family.LocalID).
			Msg("failed to update family in replica")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	return family.LocalID, nil
}

func (r *familyReplica) BindRemote(ctx context.Context, localID int64, remoteID string) error {
	log := logger.FromContext(ctx)

	// A bound family keeps its binding: re-registration after a replayed
	// create must not rewrite the aggregate id.
	res, err := r.DB.ExecContext(ctx,
		"UPDATE families SET remote_id = ?, sync_status = ? WHERE local_id = ? AND remote_id = ''",
		remoteID, models.StatusSynced, localID)
	if err != nil {
		log.Err(err).
			Str("func", "familyReplica.BindRemote").
			Int64("local_id", localID).
			Msg("failed to bind family to remote id")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Either the row is missing or already bound; distinguish the two.
		var existing string
		err = r.DB.QueryRowContext(ctx,
			"SELECT remote_id FROM families WHERE local_id = ?", localID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
	}

	return nil
}

// syncState persists the pull watermark in the replica's key-value
// table so it survives restarts alongside the data it describes.
type syncState struct {
	*DB
	logger *logger.Logger
}

func NewSyncState(db *DB, logger *logger.Logger) SyncState {
	return &syncState{DB: db, logger: logger}
}

func (s *syncState) Watermark(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx,
		"SELECT value FROM sync_state WHERE key = ?", watermarkKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt watermark degrades to a full pull instead of
		// blocking sync.
		s.logger.Warn().
			Str("func", "syncState.Watermark").
			Str("value", raw).
			Msg("unparseable watermark, resetting to zero")
		return time.Time{}, nil
	}

	return ts, nil
}

func (s *syncState) SetWatermark(ctx context.Context, ts time.Time) error {
	log := logger.FromContext(ctx)

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO sync_state (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		watermarkKey, ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.Err(err).
			Str("func", "syncState.SetWatermark").
			Msg("failed to persist watermark")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
