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

type expenseService struct {
	expenses   store.ExpenseRepository
	categories store.CategoryRepository
	ids        *utils.UUIDGenerator

	now func() time.Time

	logger *logger.Logger
}

func NewExpenseService(expenses store.ExpenseRepository, categories store.CategoryRepository, logger *logger.Logger) ExpenseService {
	return &expenseService{
		expenses:   expenses,
		categories: categories,
		ids:        utils.NewUUIDGenerator(),
		now:        time.Now,
		logger:     logger,
	}
}

func (e *expenseService) Create(ctx context.Context, expense models.Expense) (models.Expense, error) {
	if err := e.validateCategory(ctx, expense.CategoryID); err != nil {
		return models.Expense{}, err
	}

	if !utils.ValidUUID(expense.ID) {
		expense.ID = e.ids.Generate()
	}
	if !utils.ValidUUID(expense.FamilyMemberID) {
		expense.FamilyMemberID = ""
	}
	expense.SyncID = e.ids.Generate()
	expense.LastModified = e.now().UTC()
	expense.IsDeleted = false

	if err := e.expenses.Upsert(ctx, expense); err != nil {
		return models.Expense{}, err
	}

	return expense, nil
}

func (e *expenseService) Get(ctx context.Context, id string) (models.Expense, error) {
	expense, err := e.expenses.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Expense{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	return expense, err
}

func (e *expenseService) ListByFamily(ctx context.Context, familyID string) ([]models.Expense, error) {
	return e.expenses.ListByFamily(ctx, familyID)
}

func (e *expenseService) Update(ctx context.Context, expense models.Expense) (models.Expense, error) {
	existing, err := e.expenses.GetByID(ctx, expense.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Expense{}, fmt.Errorf("%w: %s", ErrRecordNotFound, expense.ID)
		}
		return models.Expense{}, err
	}

	if err = e.validateCategory(ctx, expense.CategoryID); err != nil {
		return models.Expense{}, err
	}

	if !utils.ValidUUID(expense.FamilyMemberID) {
		expense.FamilyMemberID = ""
	}
	expense.SyncID = existing.SyncID
	expense.LastModified = e.now().UTC()

	if err = e.expenses.Upsert(ctx, expense); err != nil {
		return models.Expense{}, err
	}

	return expense, nil
}

func (e *expenseService) Delete(ctx context.Context, id string) error {
	err := e.expenses.Tombstone(ctx, id, e.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	return err
}

func (e *expenseService) validateCategory(ctx context.Context, categoryID string) error {
	if !utils.ValidUUID(categoryID) {
		return fmt.Errorf("%w: invalid category id %q", ErrInvalidDataProvided, categoryID)
	}
	if _, err := e.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: category %s", ErrRecordNotFound, categoryID)
		}
		return err
	}

	return nil
}
