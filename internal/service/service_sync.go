// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

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

// syncService reconciles one family-scoped changeset per call.
//
// The policy is last-write-wins by record id: an incoming record
// overwrites whatever the store holds, stamped with the server's own
// receipt time. Client-supplied timestamps are never trusted. One
// timestamp is assigned per request and stamped on every write before
// the pull set is read, so a record committed inside this request can
// never fall between two watermarks.
type syncService struct {
	repos *store.Repositories
	ids   *utils.UUIDGenerator

	// now is the request clock, injectable for tests.
	now func() time.Time

	logger *logger.Logger
}

func NewSyncService(repos *store.Repositories, logger *logger.Logger) SyncService {
	return &syncService{
		repos:  repos,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
		logger: logger,
	}
}

func (s *syncService) Sync(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error) {
	log := logger.FromContext(ctx)

	if _, err := s.repos.Families.GetByID(ctx, familyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.SyncResponse{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
		}
		return models.SyncResponse{}, err
	}

	serverTimestamp := s.now().UTC()
	var conflicts []models.Conflict

	// Push phase, in dependency order. Categories are committed before
	// expenses are validated, so an expense citing a category created in
	// the same request is accepted.
	if err := s.applyCategories(ctx, familyID, serverTimestamp, request.Categories); err != nil {
		return models.SyncResponse{}, err
	}

	expenseConflicts, err := s.applyExpenses(ctx, familyID, serverTimestamp, request.Expenses)
	if err != nil {
		return models.SyncResponse{}, err
	}
	conflicts = append(conflicts, expenseConflicts...)

	budgetConflicts, err := s.applyBudgets(ctx, familyID, serverTimestamp, request.Budgets)
	if err != nil {
		return models.SyncResponse{}, err
	}
	conflicts = append(conflicts, budgetConflicts...)

	// Pull phase: everything modified strictly after the caller's
	// watermark, tombstones included. The writes above were stamped with
	// serverTimestamp, so they are part of this response and excluded
	// from the next one.
	categories, err := s.repos.Categories.ListModifiedSince(ctx, familyID, request.LastSyncTimestamp)
	if err != nil {
		return models.SyncResponse{}, err
	}
	expenses, err := s.repos.Expenses.ListModifiedSince(ctx, familyID, request.LastSyncTimestamp)
	if err != nil {
		return models.SyncResponse{}, err
	}
	budgets, err := s.repos.Budgets.ListModifiedSince(ctx, familyID, request.LastSyncTimestamp)
	if err != nil {
		return models.SyncResponse{}, err
	}

	log.Debug().
		Str("func", "syncService.Sync").
		Str("family_id", familyID).
		Int("pushed_categories", len(request.Categories)).
		Int("pushed_expenses", len(request.Expenses)).
		Int("pushed_budgets", len(request.Budgets)).
		Int("pulled_categories", len(categories)).
		Int("pulled_expenses", len(expenses)).
		Int("pulled_budgets", len(budgets)).
		Int("conflicts", len(conflicts)).
		Msg("sync round reconciled")

	return models.SyncResponse{
		ServerTimestamp: serverTimestamp,
		Categories:      categories,
		Expenses:        expenses,
		Budgets:         budgets,
		Conflicts:       conflicts,
	}, nil
}

func (s *syncService) applyCategories(ctx context.Context, familyID string, at time.Time, categories []models.Category) error {
	for _, category := range categories {
		if !utils.ValidUUID(category.ID) {
			category.ID = s.ids.Generate()
		}
		if category.SyncID == "" {
			category.SyncID = s.ids.Generate()
		}
		category.FamilyID = familyID
		category.LastModified = at

		if err := s.repos.Categories.Upsert(ctx, category); err != nil {
			return err
		}
	}

	return nil
}

func (s *syncService) applyExpenses(ctx context.Context, familyID string, at time.Time, expenses []models.Expense) ([]models.Conflict, error) {
	var conflicts []models.Conflict

	for _, expense := range expenses {
		if !utils.ValidUUID(expense.CategoryID) {
			conflicts = append(conflicts, models.Conflict{
				EntityType:    "Expense",
				EntityID:      expense.ID,
				ConflictType:  models.ConflictInvalidCategoryID,
				ClientVersion: expense,
			})
			continue
		}

		category, err := s.repos.Categories.GetByID(ctx, expense.CategoryID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, store.ErrNotFound) || category.FamilyID != familyID {
			conflicts = append(conflicts, models.Conflict{
				EntityType:    "Expense",
				EntityID:      expense.ID,
				ConflictType:  models.ConflictCategoryNotInFamily,
				ClientVersion: expense,
			})
			continue
		}

		if !utils.ValidUUID(expense.ID) {
			expense.ID = s.ids.Generate()
		}
		if expense.SyncID == "" {
			expense.SyncID = s.ids.Generate()
		}
		// Member attribution is optional; an unparsable reference is
		// stored as absent rather than rejected.
		if !utils.ValidUUID(expense.FamilyMemberID) {
			expense.FamilyMemberID = ""
		}
		expense.LastModified = at

		if err = s.repos.Expenses.Upsert(ctx, expense); err != nil {
			return nil, err
		}
	}

	return conflicts, nil
}

func (s *syncService) applyBudgets(ctx context.Context, familyID string, at time.Time, budgets []models.Budget) ([]models.Conflict, error) {
	var conflicts []models.Conflict

	for _, budget := range budgets {
		if !utils.ValidUUID(budget.ID) {
			budget.ID = s.ids.Generate()
		}
		if budget.SyncID == "" {
			budget.SyncID = s.ids.Generate()
		}
		budget.FamilyID = familyID
		budget.LastModified = at

		err := s.repos.Budgets.Upsert(ctx, budget)
		if store.IsForeignKeyViolation(err) {
			// Category/family linkage is enforced by constraints; a
			// violation degrades to a per-record conflict.
			conflicts = append(conflicts, models.Conflict{
				EntityType:    "Budget",
				EntityID:      budget.ID,
				ConflictType:  models.ConflictCategoryNotInFamily,
				ClientVersion: budget,
			})
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return conflicts, nil
}
