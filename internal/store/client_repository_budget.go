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

const upsertLocalBudget = `
	INSERT INTO budgets (id, name, amount_cents, start_date, end_date, category_id, family_id, last_modified, is_deleted, sync_id, sync_status, sync_error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name          = excluded.name,
		amount_cents  = excluded.amount_cents,
		start_date    = excluded.start_date,
		end_date      = excluded.end_date,
		category_id   = excluded.category_id,
		family_id     = excluded.family_id,
		last_modified = excluded.last_modified,
		is_deleted    = excluded.is_deleted,
		sync_status   = excluded.sync_status,
		sync_error    = excluded.sync_error;`

const localBudgetColumns = "id, name, amount_cents, start_date, end_date, category_id, family_id, last_modified, is_deleted, sync_id, sync_status, sync_error"

// budgetReplica is the SQLite-backed implementation of [BudgetReplica].
type budgetReplica struct {
	*DB
	logger *logger.Logger
}

func NewBudgetReplica(db *DB, logger *logger.Logger) BudgetReplica {
	return &budgetReplica{DB: db, logger: logger}
}

func (r *budgetReplica) Put(ctx context.Context, budget models.LocalBudget) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertLocalBudget,
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
		budget.SyncStatus,
		budget.SyncError,
	)
	if err != nil {
		log.Err(err).
			Str("func", "budgetReplica.Put").
			Str("budget_id", budget.ID).
			Msg("failed to put budget into replica")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *budgetReplica) Get(ctx context.Context, id string) (models.LocalBudget, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+localBudgetColumns+" FROM budgets WHERE id = ?", id)

	budget, err := scanLocalBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LocalBudget{}, ErrNotFound
		}
		return models.LocalBudget{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return budget, nil
}

func (r *budgetReplica) ListAll(ctx context.Context) ([]models.LocalBudget, error) {
	return r.list(ctx,
		"SELECT "+localBudgetColumns+" FROM budgets ORDER BY start_date")
}

func (r *budgetReplica) ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalBudget, error) {
	return r.list(ctx,
		"SELECT "+localBudgetColumns+" FROM budgets WHERE sync_status = ? ORDER BY last_modified", status)
}

func (r *budgetReplica) MarkStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx,
		"UPDATE budgets SET sync_status = ?, sync_error = ? WHERE id = ?",
		status, syncErr, id)
	if err != nil {
		log.Err(err).
			Str("func", "budgetReplica.MarkStatus").
			Str("budget_id", id).
			Msg("failed to mark budget status")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *budgetReplica) RepointCategory(ctx context.Context, oldID, newID string) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx,
		"UPDATE budgets SET category_id = ? WHERE category_id = ?", newID, oldID)
	if err != nil {
		log.Err(err).
			Str("func", "budgetReplica.RepointCategory").
			Str("old_id", oldID).
			Str("new_id", newID).
			Msg("failed to repoint budget category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *budgetReplica) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *budgetReplica) list(ctx context.Context, query string, args ...any) ([]models.LocalBudget, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "budgetReplica.list").
			Msg("failed to execute replica budget query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	budgets := make([]models.LocalBudget, 0, 8)
	for rows.Next() {
		budget, scanErr := scanLocalBudget(rows)
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

func scanLocalBudget(row rowScanner) (models.LocalBudget, error) {
	var b models.LocalBudget
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
		&b.SyncStatus,
		&b.SyncError,
	)
	if err != nil {
		return models.LocalBudget{}, err
	}

	b.Amount = models.Cents(amount)

	return b, nil
}
