package store

import (
	"context"
	"time"

	"github.com/mkhalin/family-expenses/models"
)

// ErrorClassificator decides whether a failed database operation is
// worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// FamilyRepository manages the owning aggregate. Families partition all
// synchronized records into independent reconciliation domains and are
// never diffed by the sync protocol themselves.
type FamilyRepository interface {
	Create(ctx context.Context, family models.Family) (models.Family, error)
	GetByID(ctx context.Context, id string) (models.Family, error)
	List(ctx context.Context) ([]models.Family, error)
	// Delete physically removes the family row. The service layer must
	// first verify the family has no dependents via CountDependents.
	Delete(ctx context.Context, id string) error
	// CountDependents returns the number of live categories, members,
	// and budgets still owned by the family.
	CountDependents(ctx context.Context, familyID string) (int64, error)
}

// CategoryRepository persists categories with last-write-wins upserts
// keyed by record id.
type CategoryRepository interface {
	Upsert(ctx context.Context, category models.Category) error
	GetByID(ctx context.Context, id string) (models.Category, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Category, error)
	// ListModifiedSince returns family records with lastModified
	// strictly greater than since. Tombstones are included: deletion is
	// synchronized like any other update.
	ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Category, error)
	// Tombstone soft-deletes the record, stamping lastModified so the
	// deletion propagates through the next pull.
	Tombstone(ctx context.Context, id string, at time.Time) error
}

// ExpenseRepository persists expenses. Family scoping is resolved
// through the expense's category.
type ExpenseRepository interface {
	Upsert(ctx context.Context, expense models.Expense) error
	GetByID(ctx context.Context, id string) (models.Expense, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Expense, error)
	ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Expense, error)
	Tombstone(ctx context.Context, id string, at time.Time) error
}

// BudgetRepository persists budgets. Referential linkage to category
// and family is enforced by foreign keys, not by logic.
type BudgetRepository interface {
	Upsert(ctx context.Context, budget models.Budget) error
	GetByID(ctx context.Context, id string) (models.Budget, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Budget, error)
	ListModifiedSince(ctx context.Context, familyID string, since time.Time) ([]models.Budget, error)
	Tombstone(ctx context.Context, id string, at time.Time) error
}

// MemberRepository persists family members, which participate only in
// the family deletion guard and expense attribution.
type MemberRepository interface {
	Create(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.FamilyMember, error)
}
