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

const upsertExpense = `
	INSERT INTO expenses (id, description, amount_cents, date, category_id, family_member_id, notes, last_modified, is_deleted, sync_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		description      = EXCLUDED.description,
		amount_cents     = EXCLUDED.amount_cents,
		date             = EXCLUDED.date,
		category_id      = EXCLUDED.category_id,
		family_member_id = EXCLUDED.family_member_id,
		notes            = EXCLUDED.notes,
		last_modified    = EXCLUDED.last_modified,
		is_deleted       = EXCLUDED.is_deleted;`

// expenseColumns is prefixed because family-scoped reads join through
// the categories table.
const expenseColumns = "e.id, e.description, e.amount_cents, e.date, e.category_id, e.family_member_id, e.notes, e.last_modified, e.is_deleted, e.sync_id"

// expenseRepository is the PostgreSQL-backed implementation of
// [ExpenseRepository]. An expense belongs to a family only indirectly,
// through its category, so every family-scoped read is a join.
type expenseRepository struct {
	*DB
	logger *logger.Logger
}

func NewExpenseRepository(db *DB, logger *logger.Logger) ExpenseRepository {
	return &expenseRepository{DB: db, logger: logger}
}

func (r *expenseRepository) Upsert(ctx context.Context, expense models.Expense) error {
	log := logger.FromContext(ctx)

	var memberID sql.NullString
	if expense.FamilyMemberID != "" {
		memberID = sql.NullString{String: expense.FamilyMemberID, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, upsertExpense,
		expense.ID,
		expense.Description,
		int64(expense.Amount),
		expense.Date,
		expense.CategoryID,
		memberID,
		expense.Notes,
		expense.LastModified,
		expense.IsDeleted,
		expense.SyncID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "expenseRepository.Upsert").
			Str("expense_id", expense.ID).
			Msg("failed to upsert expense")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (models.Expense, error) {
	query, args, err := psql.Select(expenseColumns).
		From("expenses e").
		Where(sq.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return models.Expense{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := r.DB.QueryRowContext(ctx, query, args...)
	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return expense, nil
}

func (r *expenseRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Expense, error) {
	return r.list(ctx, sq.Eq{"c.family_id": familyID})
}

func (r *expenseRepository) ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Expense, error) {
	return r.list(ctx, sq.And{
		sq.Eq{"c.family_id": familyID},
		sq.Gt{"e.last_modified": since},
	})
}

func (r *expenseRepository) Tombstone(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := psql.Update("expenses").
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
			Str("func", "expenseRepository.Tombstone").
			Str("expense_id", id).
			Msg("failed to tombstone expense")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *expenseRepository) list(ctx context.Context, pred any) ([]models.Expense, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(expenseColumns).
		From("expenses e").
		Join("categories c ON c.id = e.category_id").
		Where(pred).
		OrderBy("e.last_modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "expenseRepository.list").
			Msg("failed to execute expense query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0, 32)
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		expenses = append(expenses, expense)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return expenses, nil
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var e models.Expense
	var amount int64
	var memberID, notes sql.NullString

	err := row.Scan(
		&e.ID,
		&e.Description,
		&amount,
		&e.Date,
		&e.CategoryID,
		&memberID,
		&notes,
		&e.LastModified,
		&e.IsDeleted,
		&e.SyncID,
	)
	if err != nil {
		return models.Expense{}, err
	}

	e.Amount = models.Cents(amount)
	if memberID.Valid {
		e.FamilyMemberID = memberID.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}

	return e, nil
}
