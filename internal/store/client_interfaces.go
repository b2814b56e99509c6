package store

import (
	"context"
	"time"

	"github.com/mkhalin/family-expenses/models"
)

// Replica contracts. All operations are local and never touch the
// network; writes are durable across process restarts. There is no
// transaction spanning multiple entity types.

// CategoryReplica stores categories keyed by record id.
type CategoryReplica interface {
	Put(ctx context.Context, category models.LocalCategory) error
	Get(ctx context.Context, id string) (models.LocalCategory, error)
	ListAll(ctx context.Context) ([]models.LocalCategory, error)
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalCategory, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.LocalCategory, error)
	MarkStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error
	// Rekey changes a record's id in place. The sync engine uses it to
	// promote a temporary local key to a proper record identifier
	// before first submission.
	Rekey(ctx context.Context, oldID, newID string) error
	Delete(ctx context.Context, id string) error
}

// ExpenseReplica stores expenses keyed by a local sequence, because an
// expense may exist locally before it has any record id.
type ExpenseReplica interface {
	// Put inserts when LocalID is zero and updates otherwise. It
	// returns the row's local sequence key.
	Put(ctx context.Context, expense models.LocalExpense) (int64, error)
	Get(ctx context.Context, localID int64) (models.LocalExpense, error)
	// GetByRecordID resolves a row by its record id. The sync engine
	// uses it to merge server records back onto existing local rows.
	GetByRecordID(ctx context.Context, id string) (models.LocalExpense, error)
	ListAll(ctx context.Context) ([]models.LocalExpense, error)
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalExpense, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.LocalExpense, error)
	MarkStatus(ctx context.Context, localID int64, status models.SyncStatus, syncErr string) error
	// RepointCategory rewrites the category reference on every expense
	// citing oldID. Runs during the in-round id substitution phase.
	RepointCategory(ctx context.Context, oldID, newID string) error
	Delete(ctx context.Context, localID int64) error
}

// BudgetReplica stores budgets keyed by record id.
type BudgetReplica interface {
	Put(ctx context.Context, budget models.LocalBudget) error
	Get(ctx context.Context, id string) (models.LocalBudget, error)
	ListAll(ctx context.Context) ([]models.LocalBudget, error)
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]models.LocalBudget, error)
	MarkStatus(ctx context.Context, id string, status models.SyncStatus, syncErr string) error
	// RepointCategory rewrites the category reference on every budget
	// citing oldID. Runs during the in-round id substitution phase.
	RepointCategory(ctx context.Context, oldID, newID string) error
	Delete(ctx context.Context, id string) error
}

// FamilyReplica tracks the client's single owning family and its
// binding to the server-side aggregate.
type FamilyReplica interface {
	// Current returns the client's family, or ErrNotFound before one
	// has been created.
	Current(ctx context.Context) (models.LocalFamily, error)
	Save(ctx context.Context, family models.LocalFamily) (int64, error)
	// BindRemote records the server-assigned family id. Idempotent: a
	// family that is already bound keeps its binding.
	BindRemote(ctx context.Context, localID int64, remoteID string) error
}

// SyncState owns the persisted sync watermark. It replaces what would
// otherwise be a free-floating module global.
type SyncState interface {
	// Watermark returns the timestamp of the last successful round, or
	// the zero time before the first one.
	Watermark(ctx context.Context) (time.Time, error)
	SetWatermark(ctx context.Context, ts time.Time) error
}

// LocalStorage aggregates every replica behind a single dependency for
// the client services.
type LocalStorage struct {
	Categories CategoryReplica
	Expenses   ExpenseReplica
	Budgets    BudgetReplica
	Families   FamilyReplica
	State      SyncState
}
