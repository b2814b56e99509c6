// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

const upsertLocalCategory = `
	INSERT INTO categories (id, name, description, family_id, last_modified, is_deleted, sync_id, sync_status, sync_error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name          = excluded.name,
		description   = excluded.description,
		family_id     = excluded.family_id,
		last_modified = excluded.last_modified,
		is_deleted    = excluded.is_deleted,
		sync_status   = excluded.sync_status,
		sync_error    = excluded.sync_error;`

const localCategoryColumns = "id, name, description, family_id, last_modified, is_deleted, sync_id, sync_status, sync_error"

// categoryReplica is the SQLite-backed implementation of
// [CategoryReplica].
type categoryReplica struct {
	*DB
	logger *logger.Logger
}

func NewCategoryReplica(db *DB, logger *logger.Logger) CategoryReplica {
	return &categoryReplica{DB: db, logger: logger}
}

func (r *categoryReplica) Put(ctx context.Context, category models.LocalCategory) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertLocalCategory,
		category.ID,
		category.Name,
		category.Description,
		category.FamilyID,
		category.LastModified,
		category.IsDeleted,
		category.SyncID,
		category.SyncStatus,
		category.SyncError,
	)
	if err != nil {
		log.Err(err).
			Str("func", "categoryReplica.Put").
			Str("category_id", category.ID).
			Msg("failed to put category into replica")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *categoryReplica) Get(ctx context.Context, id string) (models.LocalCategory, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+localCategoryColumns+" FROM categories WHERE id = ?", id)

	category, err := scanLocalCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalCategory{}, ErrNotFound
		}
		return models.LocalCategory{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return category, nil
}

func (r *categoryReplica) ListAll(ctx context.Context) ([]models.LocalCategory, error) {
	return r.list(ctx,
		"SELECT "+localCategoryColumns+" FROM categories ORDER BY name")
}

func (r *categoryReplica) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalCategory, error) {
	return r.list(ctx,
		"SELECT "+localCategoryColumns+" FROM categories WHERE sync_status = ? ORDER BY last_modified", status)
}

func (r *categoryReplica) ListByFamily(ctx context.Context, familyID string) ([]models.LocalCategory, error) {
	return r.list(ctx,
		"SELECT "+localCategoryColumns+" FROM categories WHERE family_id = ? ORDER BY name", familyID)
}

func (r *categoryReplica) MarkStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET sync_status = ?, sync_error = ? WHERE id = ?",
		status, syncErr, id)
	if err != nil {
		log.Err(err).
			Str("func", "categoryReplica.MarkStatus").
			Str("category_id", id).
			Msg("failed to mark category status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *categoryReplica) Rekey(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET id = ? WHERE id = ?", newID, oldID)
	if err != nil {
		log.Err(err).
			Str("func", "categoryReplica.Rekey").
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to rekey category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *categoryReplica) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *categoryReplica) list(ctx context.Context, query string, args ...any) ([]models.LocalCategory, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "categoryReplica.list").
			Msg("failed to execute replica category query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	categories := make([]models.LocalCategory, 0, 16)
	for rows.Next() {
		category, scanErr := scanLocalCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return categories, nil
}

func scanLocalCategory(row rowScanner) (models.LocalCategory, error) {
	var c models.LocalCategory
	var description sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Name,
		&description,
		&c.FamilyID,
		&c.LastModified,
		&c.IsDeleted,
		&c.SyncID,
		&c.SyncStatus,
		&c.SyncError,
	)
	if err != nil {
		return models.LocalCategory{}, err
	}

	if description.Valid {
		c.Description = &description.String
	}

	return c, nil
}
