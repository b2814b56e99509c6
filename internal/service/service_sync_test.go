package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

// In-memory repository fakes. The reconciliation logic is about
// ordering and validation, which map-backed fakes exercise more
// directly than SQL mocks.

type fakeFamilyRepo struct {
	families map[string]models.Family
}

func (f *fakeFamilyRepo) Create(_ context.Context, family models.Family) (models.Family, error) {
	f.families[family.ID] = family
	return family, nil
}

func (f *fakeFamilyRepo) GetByID(_ context.Context, id string) (models.Family, error) {
	family, ok := f.families[id]
	if !ok {
		return models.Family{}, store.ErrNotFound
	}
	return family, nil
}

func (f *fakeFamilyRepo) List(_ context.Context) ([]models.Family, error) {
	out := make([]models.Family, 0, len(f.families))
	for _, fam := range f.families {
		out = append(out, fam)
	}
	return out, nil
}

func (f *fakeFamilyRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.families[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.families, id)
	return nil
}

func (f *fakeFamilyRepo) CountDependents(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

type fakeCategoryRepo struct {
	categories map[string]models.Category
}

func (f *fakeCategoryRepo) Upsert(_ context.Context, category models.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (models.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return models.Category{}, store.ErrNotFound
	}
	return category, nil
}

func (f *fakeCategoryRepo) ListByFamily(_ context.Context, familyID string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.FamilyID == familyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) ListModifiedSince(_ context.Context, familyID string, since time.Time) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.FamilyID == familyID && c.LastModified.After(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Tombstone(_ context.Context, id string, at time.Time) error {
	c, ok := f.categories[id]
	if !ok {
		return store.ErrNotFound
	}
	c.IsDeleted = true
	c.LastModified = at
	f.categories[id] = c
	return nil
}

type fakeExpenseRepo struct {
	expenses map[string]models.Expense
	byFamily func(models.Expense) string
}

func (f *fakeExpenseRepo) Upsert(_ context.Context, expense models.Expense) error {
	f.expenses[expense.ID] = expense
	return nil
}

func (f *fakeExpenseRepo) GetByID(_ context.Context, id string) (models.Expense, error) {
	expense, ok := f.expenses[id]
	if !ok {
		return models.Expense{}, store.ErrNotFound
	}
	return expense, nil
}

func (f *fakeExpenseRepo) ListByFamily(_ context.Context, familyID string) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.expenses {
		if f.byFamily(e) == familyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) ListModifiedSince(_ context.Context, familyID string, since time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.expenses {
		if f.byFamily(e) == familyID && e.LastModified.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) Tombstone(_ context.Context, id string, at time.Time) error {
	e, ok := f.expenses[id]
	if !ok {
		return store.ErrNotFound
	}
	e.IsDeleted = true
	e.LastModified = at
	f.expenses[id] = e
	return nil
}

type fakeBudgetRepo struct {
	budgets    map[string]models.Budget
	categories *fakeCategoryRepo
}

func (f *fakeBudgetRepo) Upsert(_ context.Context, budget models.Budget) error {
	// Emulate the FK constraint on category_id.
	if _, ok := f.categories.categories[budget.CategoryID]; !ok {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "budgets_category_id_fkey"}
	}
	f.budgets[budget.ID] = budget
	return nil
}

func (f *fakeBudgetRepo) GetByID(_ context.Context, id string) (models.Budget, error) {
	budget, ok := f.budgets[id]
	if !ok {
		return models.Budget{}, store.ErrNotFound
	}
	return budget, nil
}

func (f *fakeBudgetRepo) ListByFamily(_ context.Context, familyID string) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.budgets {
		if b.FamilyID == familyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepo) ListModifiedSince(_ context.Context, familyID string, since time.Time) ([]models.Budget, error) {
	var out []models.Budget
	for _, b := range f.budgets {
		if b.FamilyID == familyID && b.LastModified.After(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepo) Tombstone(_ context.Context, id string, at time.Time) error {
	b, ok := f.budgets[id]
	if !ok {
		return store.ErrNotFound
	}
	b.IsDeleted = true
	b.LastModified = at
	f.budgets[id] = b
	return nil
}

type fakeMemberRepo struct {
	members map[string]models.FamilyMember
}

func (f *fakeMemberRepo) Create(_ context.Context, member models.FamilyMember) (models.FamilyMember, error) {
	f.members[member.ID] = member
	return member, nil
}

func (f *fakeMemberRepo) ListByFamily(_ context.Context, familyID string) ([]models.FamilyMember, error) {
	var out []models.FamilyMember
	for _, m := range f.members {
		if m.FamilyID == familyID {
			out = append(out, m)
		}
	}
	return out, nil
}

const testFamilyID = "0198c3a2-0000-7000-8000-00000000f001"

func newTestSyncService(t *testing.T) (*syncService, *fakeCategoryRepo, *fakeExpenseRepo, *fakeBudgetRepo) {
	t.Helper()

	categories := &fakeCategoryRepo{categories: map[string]models.Category{}}
	expenses := &fakeExpenseRepo{
		expenses: map[string]models.Expense{},
		byFamily: func(e models.Expense) string {
			if c, ok := categories.categories[e.CategoryID]; ok {
				return c.FamilyID
			}
			return ""
		},
	}
	budgets := &fakeBudgetRepo{budgets: map[string]models.Budget{}, categories: categories}
	families := &fakeFamilyRepo{families: map[string]models.Family{
		testFamilyID: {ID: testFamilyID, Name: "Khalins"},
	}}

	repos := &store.Repositories{
		Families:   families,
		Categories: categories,
		Expenses:   expenses,
		Budgets:    budgets,
		Members:    &fakeMemberRepo{members: map[string]models.FamilyMember{}},
	}

	svc := NewSyncService(repos, logger.Nop()).(*syncService)
	return svc, categories, expenses, budgets
}

func TestSyncService_UnknownFamily(t *testing.T) {
	svc, _, _, _ := newTestSyncService(t)

	_, err := svc.Sync(context.Background(), "0198c3a2-dead-7000-8000-000000000000", models.SyncRequest{})
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestSyncService_SameRoundDependencyOrdering(t *testing.T) {
	svc, categories, expenses, _ := newTestSyncService(t)
	ctx := context.Background()

	catID := "0198c3a2-0000-7000-8000-00000000c001"
	resp, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{
		Categories: []models.Category{{ID: catID, Name: "Food", SyncID: "s-1"}},
		Expenses: []models.Expense{{
			ID:          "0198c3a2-0000-7000-8000-00000000e001",
			Description: "lunch",
			Amount:      models.Cents(1250),
			Date:        time.Now().UTC(),
			CategoryID:  catID,
			SyncID:      "s-2",
		}},
	})
	require.NoError(t, err)

	// The expense references a category created in the same request and
	// must not be rejected.
	assert.Empty(t, resp.Conflicts)
	assert.Len(t, categories.categories, 1)
	assert.Len(t, expenses.expenses, 1)

	// Every write carries the single request timestamp.
	assert.Equal(t, resp.ServerTimestamp, categories.categories[catID].LastModified)
	assert.Len(t, resp.Categories, 1)
	assert.Len(t, resp.Expenses, 1)
}

func TestSyncService_IdempotentUpsert(t *testing.T) {
	svc, categories, _, _ := newTestSyncService(t)
	ctx := context.Background()

	catID := "0198c3a2-0000-7000-8000-00000000c002"
	first := models.Category{ID: catID, Name: "Food", SyncID: "s-1"}
	_, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{Categories: []models.Category{first}})
	require.NoError(t, err)

	second := first
	second.Name = "Groceries"
	_, err = svc.Sync(ctx, testFamilyID, models.SyncRequest{Categories: []models.Category{second}})
	require.NoError(t, err)

	assert.Len(t, categories.categories, 1)
	assert.Equal(t, "Groceries", categories.categories[catID].Name)
}

func TestSyncService_InvalidCategoryIDGenerated(t *testing.T) {
	svc, categories, _, _ := newTestSyncService(t)

	resp, err := svc.Sync(context.Background(), testFamilyID, models.SyncRequest{
		Categories: []models.Category{{ID: "temp-local-key", Name: "Travel"}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Categories, 1)
	assert.True(t, utils.ValidUUID(resp.Categories[0].ID), "server must replace an invalid id")
	assert.NotContains(t, categories.categories, "temp-local-key")
	assert.NotEmpty(t, resp.Categories[0].SyncID)
}

func TestSyncService_ExpenseConflicts(t *testing.T) {
	svc, categories, expenses, _ := newTestSyncService(t)
	ctx := context.Background()

	// A category belonging to a different family.
	foreignCat := "0198c3a2-0000-7000-8000-00000000c0ff"
	categories.categories[foreignCat] = models.Category{ID: foreignCat, FamilyID: "other-family"}

	resp, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{
		Expenses: []models.Expense{
			{ID: "0198c3a2-0000-7000-8000-00000000e002", CategoryID: "not-a-uuid"},
			{ID: "0198c3a2-0000-7000-8000-00000000e003", CategoryID: foreignCat},
			{ID: "0198c3a2-0000-7000-8000-00000000e004", CategoryID: "0198c3a2-0000-7000-8000-00000000dead"},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Conflicts, 3)
	assert.Equal(t, models.ConflictInvalidCategoryID, resp.Conflicts[0].ConflictType)
	assert.Equal(t, models.ConflictCategoryNotInFamily, resp.Conflicts[1].ConflictType)
	assert.Equal(t, models.ConflictCategoryNotInFamily, resp.Conflicts[2].ConflictType)

	// Rejected records never enter the store.
	assert.Empty(t, expenses.expenses)
}

func TestSyncService_BudgetFKViolationDegradesToConflict(t *testing.T) {
	svc, _, _, budgets := newTestSyncService(t)

	resp, err := svc.Sync(context.Background(), testFamilyID, models.SyncRequest{
		Budgets: []models.Budget{{
			ID:         "0198c3a2-0000-7000-8000-00000000b001",
			Name:       "March food",
			CategoryID: "0198c3a2-0000-7000-8000-00000000dead",
		}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "Budget", resp.Conflicts[0].EntityType)
	assert.Equal(t, models.ConflictCategoryNotInFamily, resp.Conflicts[0].ConflictType)
	assert.Empty(t, budgets.budgets)
}

func TestSyncService_WatermarkBoundaryIsExclusive(t *testing.T) {
	svc, _, _, _ := newTestSyncService(t)
	ctx := context.Background()

	resp1, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{
		Categories: []models.Category{{ID: "0198c3a2-0000-7000-8000-00000000c003", Name: "Food", SyncID: "s-1"}},
	})
	require.NoError(t, err)
	require.Len(t, resp1.Categories, 1)

	// Second round with the returned watermark pulls nothing: a record
	// modified exactly at the watermark is already known to the caller.
	resp2, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{
		LastSyncTimestamp: resp1.ServerTimestamp,
	})
	require.NoError(t, err)
	assert.Empty(t, resp2.Categories)
	assert.Empty(t, resp2.Expenses)
	assert.Empty(t, resp2.Budgets)
	assert.False(t, resp2.ServerTimestamp.Before(resp1.ServerTimestamp), "watermark must be monotonic")
}

func TestSyncService_MemberReferenceIsLenient(t *testing.T) {
	svc, categories, expenses, _ := newTestSyncService(t)
	ctx := context.Background()

	catID := "0198c3a2-0000-7000-8000-00000000c004"
	categories.categories[catID] = models.Category{ID: catID, FamilyID: testFamilyID}

	expID := "0198c3a2-0000-7000-8000-00000000e005"
	_, err := svc.Sync(ctx, testFamilyID, models.SyncRequest{
		Expenses: []models.Expense{{ID: expID, CategoryID: catID, FamilyMemberID: "garbage"}},
	})
	require.NoError(t, err)

	stored, ok := expenses.expenses[expID]
	require.True(t, ok)
	assert.Empty(t, stored.FamilyMemberID, "unparsable member id degrades to absent")
}

func TestFamilyService_DeleteGuard(t *testing.T) {
	families := &fakeFamilyRepoWithDeps{
		fakeFamilyRepo: fakeFamilyRepo{families: map[string]models.Family{
			"fam-busy": {ID: "fam-busy"},
			"fam-idle": {ID: "fam-idle"},
		}},
		dependents: map[string]int64{"fam-busy": 3},
	}
	svc := NewFamilyService(families, &fakeMemberRepo{members: map[string]models.FamilyMember{}}, logger.Nop())

	err := svc.Delete(context.Background(), "fam-busy")
	assert.ErrorIs(t, err, ErrFamilyHasDependents)
	assert.Contains(t, families.families, "fam-busy", "nothing mutated on rejection")

	err = svc.Delete(context.Background(), "fam-idle")
	assert.NoError(t, err)
	assert.NotContains(t, families.families, "fam-idle")

	err = svc.Delete(context.Background(), "fam-idle")
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

type fakeFamilyRepoWithDeps struct {
	fakeFamilyRepo
	dependents map[string]int64
}

func (f *fakeFamilyRepoWithDeps) CountDependents(_ context.Context, familyID string) (int64, error) {
	return f.dependents[familyID], nil
}

func TestFamilyService_CreateStampsEnvelope(t *testing.T) {
	families := &fakeFamilyRepo{families: map[string]models.Family{}}
	svc := NewFamilyService(families, &fakeMemberRepo{members: map[string]models.FamilyMember{}}, logger.Nop())

	family, err := svc.Create(context.Background(), "Khalins")
	require.NoError(t, err)
	assert.True(t, utils.ValidUUID(family.ID))
	assert.True(t, utils.ValidUUID(family.SyncID))
	assert.False(t, family.LastModified.IsZero())

	_, err = svc.Create(context.Background(), "")
	assert.True(t, errors.Is(err, ErrInvalidDataProvided))
}
