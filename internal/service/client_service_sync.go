// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mkhalin/family-expenses/internal/adapter"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

// ErrNoLocalFamily — a sync round was requested before any family was
// created locally.
var ErrNoLocalFamily = errors.New("no local family")

// clientSyncService runs reconciliation rounds for the client's single
// family scope.
//
// The round mutex guarantees one physical round at a time: overlapping
// triggers are skipped, never queued. A failed round changes nothing —
// pending records stay pending and the watermark stays put, so the
// next trigger simply resubmits the same set (the server's upsert by
// id makes the resubmission a no-op).
type clientSyncService struct {
	localStore *store.LocalStorage
	adapter    adapter.ServerAdapter
	ids        *utils.UUIDGenerator

	roundMu sync.Mutex

	logger *logger.Logger
}

func NewClientSyncService(localStore *store.LocalStorage, serverAdapter adapter.ServerAdapter, logger *logger.Logger) ClientSyncService {
	return &clientSyncService{
		localStore: localStore,
		adapter:    serverAdapter,
		ids:        utils.NewUUIDGenerator(),
		logger:     logger,
	}
}

func (s *clientSyncService) SyncRound(ctx context.Context) error {
	if !s.roundMu.TryLock() {
		// A round is in flight; its outcome covers this trigger.
		return nil
	}
	defer s.roundMu.Unlock()

	log := logger.FromContext(ctx)
	started := time.Now()

	familyID, err := s.resolveFamily(ctx)
	if err != nil {
		return err
	}

	if err = s.promoteLocalKeys(ctx); err != nil {
		return err
	}

	request, pendingExpenses, err := s.collectPending(ctx)
	if err != nil {
		return err
	}

	response, err := s.adapter.Sync(ctx, familyID, request)
	if err != nil {
		// Transport failure: nothing merged, nothing advanced.
		log.Warn().
			Str("func", "clientSyncService.SyncRound").
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("sync round aborted")
		return fmt.Errorf("sync round: %w", err)
	}

	if err = s.merge(ctx, response, pendingExpenses); err != nil {
		return err
	}

	if err = s.localStore.State.SetWatermark(ctx, response.ServerTimestamp); err != nil {
		return err
	}

	log.Info().
		Str("func", "clientSyncService.SyncRound").
		Str("family_id", familyID).
		Dur("elapsed", time.Since(started)).
		Int("pulled_categories", len(response.Categories)).
		Int("pulled_expenses", len(response.Expenses)).
		Int("pulled_budgets", len(response.Budgets)).
		Int("conflicts", len(response.Conflicts)).
		Msg("sync round completed")

	return nil
}

// resolveFamily returns the family's remote id, registering the family
// with the server first when it has never been bound. Registration is
// idempotent: an already-bound family is reused, never re-created.
func (s *clientSyncService) resolveFamily(ctx context.Context) (string, error) {
	family, err := s.localStore.Families.Current(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNoLocalFamily
		}
		return "", err
	}

	if family.RemoteID != "" {
		return family.RemoteID, nil
	}

	remote, err := s.adapter.CreateFamily(ctx, family.Name)
	if err != nil {
		return "", fmt.Errorf("register family: %w", err)
	}

	if err = s.localStore.Families.BindRemote(ctx, family.LocalID, remote.ID); err != nil {
		return "", err
	}

	// Re-read in case an earlier registration already bound it.
	family, err = s.localStore.Families.Current(ctx)
	if err != nil {
		return "", err
	}

	return family.RemoteID, nil
}

// promoteLocalKeys is the substitution phase: every pending category
// still keyed by a temporary local key receives a proper identifier,
// and dependent expenses and budgets are re-pointed at it. After this
// phase the whole pending set references only valid identifiers, so a
// category and its dependents created offline in the same batch
// survive one round together.
func (s *clientSyncService) promoteLocalKeys(ctx context.Context) error {
	pending, err := s.localStore.Categories.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return err
	}

	for _, category := range pending {
		if utils.ValidUUID(category.ID) {
			continue
		}

		newID := s.ids.Generate()
		if err = s.localStore.Categories.Rekey(ctx, category.ID, newID); err != nil {
			return err
		}
		if err = s.localStore.Expenses.RepointCategory(ctx, category.ID, newID); err != nil {
			return err
		}
		if err = s.localStore.Budgets.RepointCategory(ctx, category.ID, newID); err != nil {
			return err
		}
	}

	// Expenses assign their record id at first submission so the merge
	// phase can match server echoes back onto local rows.
	pendingExpenses, err := s.localStore.Expenses.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return err
	}
	for _, expense := range pendingExpenses {
		if utils.ValidUUID(expense.ID) {
			continue
		}
		expense.ID = s.ids.Generate()
		if _, err = s.localStore.Expenses.Put(ctx, expense); err != nil {
			return err
		}
	}

	pendingBudgets, err := s.localStore.Budgets.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return err
	}
	for _, budget := range pendingBudgets {
		if utils.ValidUUID(budget.ID) {
			continue
		}
		oldID := budget.ID
		budget.ID = s.ids.Generate()
		if err = s.localStore.Budgets.Put(ctx, budget); err != nil {
			return err
		}
		if oldID != "" {
			if err = s.localStore.Budgets.Delete(ctx, oldID); err != nil {
				return err
			}
		}
	}

	return nil
}

// collectPending builds the round's request: the watermark plus the
// full pending set per type, in dependency order. It also returns the
// pending expenses indexed by record id for conflict mapping.
func (s *clientSyncService) collectPending(ctx context.Context) (models.SyncRequest, map[string]models.LocalExpense, error) {
	watermark, err := s.localStore.State.Watermark(ctx)
	if err != nil {
		return models.SyncRequest{}, nil, err
	}

	categories, err := s.localStore.Categories.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return models.SyncRequest{}, nil, err
	}
	expenses, err := s.localStore.Expenses.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return models.SyncRequest{}, nil, err
	}
	budgets, err := s.localStore.Budgets.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return models.SyncRequest{}, nil, err
	}

	request := models.SyncRequest{
		LastSyncTimestamp: watermark,
		Categories:        make([]models.Category, 0, len(categories)),
		Expenses:          make([]models.Expense, 0, len(expenses)),
		Budgets:           make([]models.Budget, 0, len(budgets)),
	}
	for _, c := range categories {
		request.Categories = append(request.Categories, c.Category)
	}

	byID := make(map[string]models.LocalExpense, len(expenses))
	for _, e := range expenses {
		request.Expenses = append(request.Expenses, e.Expense)
		byID[e.ID] = e
	}
	for _, b := range budgets {
		request.Budgets = append(request.Budgets, b.Budget)
	}

	return request, byID, nil
}

// merge writes the authoritative response back into the replica. Every
// returned record lands as synced; conflicted submissions regress to
// error and are retained unchanged for a later manual retry.
func (s *clientSyncService) merge(ctx context.Context, response models.SyncResponse, pendingExpenses map[string]models.LocalExpense) error {
	for _, category := range response.Categories {
		err := s.localStore.Categories.Put(ctx, models.LocalCategory{
			Category:   category,
			SyncStatus: models.StatusSynced,
		})
		if err != nil {
			return err
		}
	}

	for _, expense := range response.Expenses {
		localID := int64(0)
		if existing, err := s.localStore.Expenses.GetByRecordID(ctx, expense.ID); err == nil {
			localID = existing.LocalID
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		_, err := s.localStore.Expenses.Put(ctx, models.LocalExpense{
			LocalID:    localID,
			Expense:    expense,
			SyncStatus: models.StatusSynced,
		})
		if err != nil {
			return err
		}
	}

	for _, budget := range response.Budgets {
		err := s.localStore.Budgets.Put(ctx, models.LocalBudget{
			Budget:     budget,
			SyncStatus: models.StatusSynced,
		})
		if err != nil {
			return err
		}
	}

	for _, conflict := range response.Conflicts {
		if err := s.markConflict(ctx, conflict, pendingExpenses); err != nil {
			return err
		}
	}

	return nil
}

func (s *clientSyncService) markConflict(ctx context.Context, conflict models.Conflict, pendingExpenses map[string]models.LocalExpense) error {
	log := logger.FromContext(ctx)

	log.Warn().
		Str("func", "clientSyncService.markConflict").
		Str("entity_type", conflict.EntityType).
		Str("entity_id", conflict.EntityID).
		Str("conflict_type", string(conflict.ConflictType)).
		Msg("record rejected by server")

	var err error
	switch conflict.EntityType {
	case "Expense":
		local, ok := pendingExpenses[conflict.EntityID]
		if !ok {
			return nil
		}
		err = s.localStore.Expenses.MarkStatus(ctx, local.LocalID, models.StatusError, string(conflict.ConflictType))
	case "Category":
		err = s.localStore.Categories.MarkStatus(ctx, conflict.EntityID, models.StatusError, string(conflict.ConflictType))
	case "Budget":
		err = s.localStore.Budgets.MarkStatus(ctx, conflict.EntityID, models.StatusError, string(conflict.ConflictType))
	}

	if errors.Is(err, store.ErrNotFound) {
		// A conflict for a record the replica no longer holds is
		// diagnostic only.
		return nil
	}

	return err
}
