package service

import (
	"context"

	"github.com/mkhalin/family-expenses/models"
)

// ClientSyncService drives bidirectional reconciliation rounds against
// the server.
type ClientSyncService interface {
	// SyncRound runs one full round: resolve the family binding, push
	// the pending set in dependency order, merge the server's response
	// into the replica, and advance the watermark. A round already in
	// progress makes an overlapping call a no-op. A transport failure
	// aborts the round with every record left in its pre-round status.
	SyncRound(ctx context.Context) error
}

// ClientSyncJob owns the background goroutine that triggers sync
// rounds: once eagerly at startup, periodically on a fixed interval,
// and opportunistically when a connectivity probe succeeds after a
// failed round.
type ClientSyncJob interface {
	Start(ctx context.Context)
	// Stop signals the goroutine to exit and blocks until it has.
	Stop()
}

// ClientDataService is the client's local-first CRUD surface. Every
// mutation lands in the replica as pending and reaches the server on
// the next sync round; reads never touch the network.
type ClientDataService interface {
	// CreateFamily records the client's owning family locally. The
	// server binding is established by the first sync round.
	CreateFamily(ctx context.Context, name string) (models.LocalFamily, error)
	Family(ctx context.Context) (models.LocalFamily, error)

	// CreateCategory stores a pending category under a temporary local
	// key; the sync engine promotes it to a proper identifier before
	// first submission.
	CreateCategory(ctx context.Context, name string, description *string) (models.LocalCategory, error)
	ListCategories(ctx context.Context) ([]models.LocalCategory, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateExpense(ctx context.Context, expense models.Expense) (models.LocalExpense, error)
	ListExpenses(ctx context.Context) ([]models.LocalExpense, error)
	DeleteExpense(ctx context.Context, localID int64) error

	CreateBudget(ctx context.Context, budget models.Budget) (models.LocalBudget, error)
	ListBudgets(ctx context.Context) ([]models.LocalBudget, error)
	DeleteBudget(ctx context.Context, id string) error
}
