package service

import (
	"context"

	"github.com/mkhalin/family-expenses/models"
)

// SyncService applies one family-scoped changeset and answers with
// everything the caller is missing.
type SyncService interface {
	Sync(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error)
}

// FamilyService manages owning aggregates. Families are created and
// selected out-of-band and never travel through the sync protocol.
type FamilyService interface {
	Create(ctx context.Context, name string) (models.Family, error)
	Get(ctx context.Context, id string) (models.Family, error)
	List(ctx context.Context) ([]models.Family, error)
	// Delete removes a family only if it owns no live categories,
	// members, or budgets; otherwise it fails with
	// ErrFamilyHasDependents and nothing is mutated.
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error)
	ListMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error)
}

// CategoryService is the server-side CRUD surface for categories.
// Deletion writes a tombstone, never a physical removal.
type CategoryService interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
	Get(ctx context.Context, id string) (models.Category, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Category, error)
	Update(ctx context.Context, category models.Category) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ExpenseService is the server-side CRUD surface for expenses.
type ExpenseService interface {
	Create(ctx context.Context, expense models.Expense) (models.Expense, error)
	Get(ctx context.Context, id string) (models.Expense, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Expense, error)
	Update(ctx context.Context, expense models.Expense) (models.Expense, error)
	Delete(ctx context.Context, id string) error
}
