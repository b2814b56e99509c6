package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

const createFamily = `
	INSERT INTO families (id, name, last_modified, is_deleted, sync_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, name, last_modified, is_deleted, sync_id;`

// countFamilyDependents counts live rows in every table that can hold
// the family hostage against deletion. Tombstoned rows do not block:
// a soft-deleted category is already invisible to the client.
const countFamilyDependents = `
	SELECT
		  (SELECT COUNT(*) FROM categories      WHERE family_id = $1 AND is_deleted = false)
		+ (SELECT COUNT(*) FROM family_members  WHERE family_id = $1 AND is_deleted = false)
		+ (SELECT COUNT(*) FROM budgets         WHERE family_id = $1 AND is_deleted = false);`

const familyColumns = "id, name, last_modified, is_deleted, sync_id"

type familyRepository struct {
	*DB
	logger *logger.Logger
}

func NewFamilyRepository(db *DB, logger *logger.Logger) FamilyRepository {
	return &familyRepository{DB: db, logger: logger}
}

func (r *familyRepository) Create(ctx context.Context, family models.Family) (models.Family, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, createFamily,
		family.ID,
		family.Name,
		family.LastModified,
		family.IsDeleted,
		family.SyncID,
	)

	created, err := scanFamily(row)
	if err != nil {
		log.Err(err).
			Str("func", "familyRepository.Create").
			Str("family_id", family.ID).
			Msg("failed to create family")
		return models.Family{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return created, nil
}

func (r *familyRepository) GetByID(ctx context.Context, id string) (models.Family, error) {
	query, args, err := psql.Select(familyColumns).
		From("families").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Family{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	family, err := scanFamily(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Family{}, ErrNotFound
		}
		return models.Family{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return family, nil
}

func (r *familyRepository) List(ctx context.Context) ([]models.Family, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(familyColumns).
		From("families").
		Where(sq.Eq{"is_deleted": false}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "familyRepository.List").
			Msg("failed to execute family query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	families := make([]models.Family, 0, 4)
	for rows.Next() {
		family, scanErr := scanFamily(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		families = append(families, family)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return families, nil
}

func (r *familyRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Delete("families").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "familyRepository.Delete").
			Str("family_id", id).
			Msg("failed to delete family")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *familyRepository) CountDependents(ctx context.Context, familyID string) (int64, error) {
	var count int64
	if err := r.DB.QueryRowContext(ctx, countFamilyDependents, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func scanFamily(row rowScanner) (models.Family, error) {
	var f models.Family

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.LastModified,
		&f.IsDeleted,
		&f.SyncID,
	)
	if err != nil {
		return models.Family{}, err
	}

	return f, nil
}
