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

const upsertBudget = `
	INSERT INTO budgets (id, name, amount_cents, start_date, end_date, category_id, family_id, last_modified, is_deleted, sync_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		name          = EXCLUDED.name,
		amount_cents  = EXCLUDED.amount_cents,
		start_date    = EXCLUDED.start_date,
		end_date      = EXCLUDED.end_date,
		category_id   = EXCLUDED.category_id,
		family_id     = EXCLUDED.family_id,
		last_modified = EXCLUDED.last_modified,
		is_deleted    = EXCLUDED.is_deleted;`

const budgetColumns = "id, name, amount_cents, start_date, end_date, category_id, family_id, last_modified, is_deleted, sync_id"

// budgetRepository is the PostgreSQL-backed implementation of
// [BudgetRepository]. A bad category/family reference surfaces here as
// a foreign-key violation, which the service layer downgrades to a
// per-record conflict.
type budgetRepository struct {
	*DB
	logger *logger.Logger
}

func NewBudgetRepository(db *DB, logger *logger.Logger) BudgetRepository {
	return &budgetRepository{DB: db, logger: logger}
}

func (r *budgetRepository) Upsert(ctx context.Context, budget models.Budget) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertBudget,
		budget.ID,
		budget.Name,
		int64(budget.Amount),
		budget.StartDate,
		budget.EndDate,
		budget.CategoryID,
		budget.FamilyID,
		budget.LastModified,
		budget.IsDeleted,
		budget.SyncID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "budgetRepository.Upsert").
			Str("budget_id", budget.ID).
			Msg("failed to upsert budget")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *budgetRepository) GetByID(ctx context.Context, id string) (models.Budget, error) {
	query, args, err := psql.Select(budgetColumns).
		From("budgets").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Budget{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Budget{}, ErrNotFound
		}
		return models.Budget{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return budget, nil
}

func (r *budgetRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Budget, error) {
	return r.list(ctx, sq.Eq{"family_id": familyID})
}

func (r *budgetRepository) ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Budget, error) {
	return r.list(ctx, sq.And{
		sq.Eq{"family_id": familyID},
		sq.Gt{"last_modified": since},
	})
}

func (r *budgetRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Update("budgets").
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
			Str("func", "budgetRepository.Tombstone").
			Str("budget_id", id).
			Msg("failed to tombstone budget")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *budgetRepository) list(ctx context.Context, pred any) ([]models.Budget, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(budgetColumns).
		From("budgets").
		Where(pred).
		OrderBy("last_modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "budgetRepository.list").
			Msg("failed to execute budget query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	budgets := make([]models.Budget, 0, 8)
	for rows.Next() {
		budget, scanErr := scanBudget(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		budgets = append(budgets, budget)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return budgets, nil
}

func scanBudget(row rowScanner) (models.Budget, error) {
	var b models.Budget
	var amount int64

	err := row.Scan(
		&b.ID,
		&b.Name,
		&amount,
		&b.StartDate,
		&b.EndDate,
		&b.CategoryID,
		&b.FamilyID,
		&b.LastModified,
		&b.IsDeleted,
		&b.SyncID,
	)
	if err != nil {
		return models.Budget{}, err
	}

	b.Amount = models.Cents(amount)
	return b, nil
}
