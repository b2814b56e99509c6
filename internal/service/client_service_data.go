package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

// clientDataService is the local-first CRUD layer. Every mutation is a
// replica write tagged pending; the sync engine ships it later. Reads
// never touch the network.
type clientDataService struct {
	localStore *store.LocalStorage
	ids        *utils.UUIDGenerator

	now func() time.Time

	logger *logger.Logger
}

func NewClientDataService(localStore *store.LocalStorage, logger *logger.Logger) ClientDataService {
	return &clientDataService{
		localStore: localStore,
		ids:        utils.NewUUIDGenerator(),
		now:        time.Now,
		logger:     logger,
	}
}

func (d *clientDataService) CreateFamily(ctx context.Context, name string) (models.LocalFamily, error) {
	if name == "" {
		return models.LocalFamily{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoFamilyName)
	}

	if existing, err := d.localStore.Families.Current(ctx); err == nil {
		// One family per client. Creation is idempotent on the name.
		if existing.Name == name {
			return existing, nil
		}
		return models.LocalFamily{}, fmt.Errorf("%w: family %q already exists", ErrInvalidDataProvided, existing.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return models.LocalFamily{}, err
	}

	family := models.LocalFamily{
		Name:         name,
		SyncStatus:   models.StatusPending,
		LastModified: d.now().UTC(),
	}

	localID, err := d.localStore.Families.Save(ctx, family)
	if err != nil {
		return models.LocalFamily{}, err
	}
	family.LocalID = localID

	return family, nil
}

func (d *clientDataService) Family(ctx context.Context) (models.LocalFamily, error) {
	family, err := d.localStore.Families.Current(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return models.LocalFamily{}, ErrNoLocalFamily
	}

	return family, err
}

func (d *clientDataService) CreateCategory(ctx context.Context, name string, description *string) (models.LocalCategory, error) {
	if name == "" {
		return models.LocalCategory{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoName)
	}

	category := models.LocalCategory{
		Category: models.Category{
			// Temporary local key; promoted to a proper identifier by
			// the sync engine before first submission.
			ID:           "local-" + d.ids.Generate(),
			Name:         name,
			Description:  description,
			LastModified: d.now().UTC(),
			SyncID:       d.ids.Generate(),
		},
		SyncStatus: models.StatusPending,
	}

	if err := d.localStore.Categories.Put(ctx, category); err != nil {
		return models.LocalCategory{}, err
	}

	return category, nil
}

func (d *clientDataService) ListCategories(ctx context.Context) ([]models.LocalCategory, error) {
	return d.localStore.Categories.ListAll(ctx)
}

func (d *clientDataService) DeleteCategory(ctx context.Context, id string) error {
	category, err := d.localStore.Categories.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return err
	}

	category.IsDeleted = true
	category.LastModified = d.now().UTC()
	category.SyncStatus = models.StatusPending
	category.SyncError = ""

	return d.localStore.Categories.Put(ctx, category)
}

func (d *clientDataService) CreateExpense(ctx context.Context, expense models.Expense) (models.LocalExpense, error) {
	if expense.CategoryID == "" {
		return models.LocalExpense{}, fmt.Errorf("%w: expense needs a category", ErrInvalidDataProvided)
	}

	if expense.SyncID == "" {
		expense.SyncID = d.ids.Generate()
	}
	expense.LastModified = d.now().UTC()

	local := models.LocalExpense{
		Expense:    expense,
		SyncStatus: models.StatusPending,
	}

	localID, err := d.localStore.Expenses.Put(ctx, local)
	if err != nil {
		return models.LocalExpense{}, err
	}
	local.LocalID = localID

	return local, nil
}

func (d *clientDataService) ListExpenses(ctx context.Context) ([]models.LocalExpense, error) {
	return d.localStore.Expenses.ListAll(ctx)
}

func (d *clientDataService) DeleteExpense(ctx context.Context, localID int64) error {
	expense, err := d.localStore.Expenses.Get(ctx, localID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: local expense %d", ErrRecordNotFound, localID)
		}
		return err
	}

	expense.IsDeleted = true
	expense.LastModified = d.now().UTC()
	expense.SyncStatus = models.StatusPending
	expense.SyncError = ""

	_, err = d.localStore.Expenses.Put(ctx, expense)
	return err
}

func (d *clientDataService) CreateBudget(ctx context.Context, budget models.Budget) (models.LocalBudget, error) {
	if budget.Name == "" {
		return models.LocalBudget{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, ErrValidationNoName)
	}
	if budget.CategoryID == "" {
		return models.LocalBudget{}, fmt.Errorf("%w: budget needs a category", ErrInvalidDataProvided)
	}

	if budget.ID == "" {
		budget.ID = "local-" + d.ids.Generate()
	}
	if budget.SyncID == "" {
		budget.SyncID = d.ids.Generate()
	}
	budget.LastModified = d.now().UTC()

	local := models.LocalBudget{
		Budget:     budget,
		SyncStatus: models.StatusPending,
	}

	if err := d.localStore.Budgets.Put(ctx, local); err != nil {
		return models.LocalBudget{}, err
	}

	return local, nil
}

func (d *clientDataService) ListBudgets(ctx context.Context) ([]models.LocalBudget, error) {
	return d.localStore.Budgets.ListAll(ctx)
}

func (d *clientDataService) DeleteBudget(ctx context.Context, id string) error {
	budget, err := d.localStore.Budgets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return err
	}

	budget.IsDeleted = true
	budget.LastModified = d.now().UTC()
	budget.SyncStatus = models.StatusPending
	budget.SyncError = ""

	return d.localStore.Budgets.Put(ctx, budget)
}
