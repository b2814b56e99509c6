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

const insertLocalExpense = `
	INSERT INTO expenses (id, description, amount_cents, date, category_id, family_member_id, notes, last_modified, is_deleted, sync_id, sync_status, sync_error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

const updateLocalExpense = `
	UPDATE expenses SET
		id               = ?,
		description      = ?,
		amount_cents     = ?,
		date             = ?,
		category_id      = ?,
		family_member_id = ?,
		notes            = ?,
		last_modified    = ?,
		is_deleted       = ?,
		sync_status      = ?,
		sync_error       = ?
	WHERE local_id = ?;`

const localExpenseColumns = "local_id, id, description, amount_cents, date, category_id, family_member_id, notes, last_modified, is_deleted, sync_id, sync_status, sync_error"

// expenseReplica is the SQLite-backed implementation of
// [ExpenseReplica]. Rows are keyed by a local autoincrement sequence so
// an expense can exist before it has a record id.
type expenseReplica struct {
	*DB
	logger *logger.Logger
}

func NewExpenseReplica(db *DB, logger *logger.Logger) ExpenseReplica {
	return &expenseReplica{DB: db, logger: logger}
}

func (r *expenseReplica) Put(ctx context.Context, expense models.LocalExpense) (int64, error) {
	log := logger.FromContext(ctx)

	if expense.LocalID == 0 {
		res, err := r.DB.ExecContext(ctx, insertLocalExpense,
			expense.ID,
			expense.Description,
			int64(expense.Amount),
			expense.Date,
			expense.CategoryID,
			expense.FamilyMemberID,
			expense.Notes,
			expense.LastModified,
			expense.IsDeleted,
			expense.SyncID,
			expense.SyncStatus,
			expense.SyncError,
		)
		if err != nil {
			log.Err(err).
				Str("func", "expenseReplica.Put").
				Msg("failed to insert expense into replica")
			return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		return res.LastInsertId()
	}

	res, err := r.DB.ExecContext(ctx, updateLocalExpense,
		expense.ID,
		expense.Description,
		int64(expense.Amount),
		expense.Date,
		expense.CategoryID,
		expense.FamilyMemberID,
		expense.Notes,
		expense.LastModified,
		expense.IsDeleted,
		expense.SyncStatus,
		expense.SyncError,
		expense.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "expenseReplica.Put").
			Int64("local_id", expense.LocalID).
			Msg("failed to update expense in replica")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	return expense.LocalID, nil
}

func (r *expenseReplica) Get(ctx context.Context, localID int64) (models.LocalExpense, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+localExpenseColumns+" FROM expenses WHERE local_id = ?", localID)

	expense, err := scanLocalExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalExpense{}, ErrNotFound
		}
		return models.LocalExpense{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return expense, nil
}

func (r *expenseReplica) GetByRecordID(ctx context.Context, id string) (models.LocalExpense, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+localExpenseColumns+" FROM expenses WHERE id = ?", id)

	expense, err := scanLocalExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalExpense{}, ErrNotFound
		}
		return models.LocalExpense{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return expense, nil
}

func (r *expenseReplica) ListAll(ctx context.Context) ([]models.LocalExpense, error) {
	return r.list(ctx,
		"SELECT "+localExpenseColumns+" FROM expenses ORDER BY date DESC, local_id DESC")
}

func (r *expenseReplica) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalExpense, error) {
	return r.list(ctx,
		"SELECT "+localExpenseColumns+" FROM expenses WHERE sync_status = ? ORDER BY local_id", status)
}

func (r *expenseReplica) ListByCategory(ctx context.Context, categoryID string) ([]models.LocalExpense, error) {
	return r.list(ctx,
		"SELECT "+localExpenseColumns+" FROM expenses WHERE category_id = ? ORDER BY date DESC, local_id DESC", categoryID)
}

func (r *expenseReplica) MarkStatus(ctx context.Context, localID int64, status models.SyncStatus, syncErr string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE expenses SET sync_status = ?, sync_error = ? WHERE local_id = ?",
		status, syncErr, localID)
	if err != nil {
		log.Err(err).
			Str("func", "expenseReplica.MarkStatus").
			Int64("local_id", localID).
			Msg("failed to mark expense status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *expenseReplica) RepointCategory(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx,
		"UPDATE expenses SET category_id = ? WHERE category_id = ?", newID, oldID)
	if err != nil {
		log.Err(err).
			Str("func", "expenseReplica.RepointCategory").
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to repoint expense category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *expenseReplica) Delete(ctx context.Context, localID int64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM expenses WHERE local_id = ?", localID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *expenseReplica) list(ctx context.Context, query string, args ...any) ([]models.LocalExpense, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "expenseReplica.list").
			Msg("failed to execute replica expense query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	expenses := make([]models.LocalExpense, 0, 32)
	for rows.Next() {
		expense, scanErr := scanLocalExpense(rows)
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

func scanLocalExpense(row rowScanner) (models.LocalExpense, error) {
	var e models.LocalExpense
	var amount int64
	var notes sql.NullString

	err := row.Scan(
		&e.LocalID,
		&e.ID,
		&e.Description,
		&amount,
		&e.Date,
		&e.CategoryID,
		&e.FamilyMemberID,
		&notes,
		&e.LastModified,
		&e.IsDeleted,
		&e.SyncID,
		&e.SyncStatus,
		&e.SyncError,
	)
	if err != nil {
		return models.LocalExpense{}, err
	}

	e.Amount = models.Cents(amount)
	if notes.Valid {
		e.Notes = &notes.String
	}

	return e, nil
}
