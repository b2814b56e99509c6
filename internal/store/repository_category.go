// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

const upsertCategory = `
	INSERT INTO categories (id, name, description, family_id, last_modified, is_deleted, sync_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		name          = EXCLUDED.name,
		description   = EXCLUDED.description,
		family_id     = EXCLUDED.family_id,
		last_modified = EXCLUDED.last_modified,
		is_deleted    = EXCLUDED.is_deleted;`

const categoryColumns = "id, name, description, family_id, last_modified, is_deleted, sync_id"

// categoryRepository is the PostgreSQL-backed implementation of
// [CategoryRepository]. Writes are last-write-wins upserts keyed by
// record id; sync_id is written once on insert and never overwritten.
type categoryRepository struct {
	*DB
	logger *logger.Logger
}

func NewCategoryRepository(db *DB, logger *logger.Logger) CategoryRepository {
	return &categoryRepository{DB: db, logger: logger}
}

func (r *categoryRepository) Upsert(ctx context.Context, category models.Category) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertCategory,
		category.ID,
		category.Name,
		category.Description,
		category.FamilyID,
		category.LastModified,
		category.IsDeleted,
		category.SyncID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "categoryRepository.Upsert").
			Str("category_id", category.ID).
			Msg("failed to upsert category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (models.Category, error) {
	query, args, err := psql.Select(categoryColumns).
		From("categories").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Category{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return category, nil
}

func (r *categoryRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Category, error) {
	return r.list(ctx, sq.Eq{"family_id": familyID})
}

func (r *categoryRepository) ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Category, error) {
	return r.list(ctx, sq.And{
		sq.Eq{"family_id": familyID},
		sq.Gt{"last_modified": since},
	})
}

func (r *categoryRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Update("categories").
		Set("is_deleted", true).
		Set("last_modified", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "categoryRepository.Tombstone").
			Str("category_id", id).
			Msg("failed to tombstone category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *categoryRepository) list(ctx context.Context, pred any) ([]models.Category, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(categoryColumns).
		From("categories").
		Where(pred).
		OrderBy("last_modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "categoryRepository.list").
			Msg("failed to execute category query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0, 16)
	for rows.Next() {
		category, scanErr := scanCategory(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var description sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Name,
		&description,
		&c.FamilyID,
		&c.LastModified,
		&c.IsDeleted,
		&c.SyncID,
	)
	if err != nil {
		return models.Category{}, err
	}

	if description.Valid {
		c.Description = &description.String
	}

	return c, nil
}
