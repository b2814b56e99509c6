package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mkhalin/family-expenses/internal/config"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/mock"
	"github.com/mkhalin/family-expenses/internal/store"
	"github.com/mkhalin/family-expenses/internal/utils"
	"github.com/mkhalin/family-expenses/models"
)

const remoteFamilyID = "0198c3a2-0000-7000-8000-00000000f001"

func newClientTestEnv(t *testing.T) (*store.LocalStorage, *mock.MockServerAdapter, ClientSyncService, ClientDataService) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "replica.db")
	db, err := store.NewConnectSQLite(context.Background(), config.ClientReplica{Path: dbPath}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	localStore := store.NewLocalStorage(db, logger.Nop())

	ctrl := gomock.NewController(t)
	mockAdapter := mock.NewMockServerAdapter(ctrl)

	syncSvc := NewClientSyncService(localStore, mockAdapter, logger.Nop())
	dataSvc := NewClientDataService(localStore, logger.Nop())

	return localStore, mockAdapter, syncSvc, dataSvc
}

func seedBoundFamily(t *testing.T, localStore *store.LocalStorage) {
	t.Helper()

	ctx := context.Background()
	localID, err := localStore.Families.Save(ctx, models.LocalFamily{
		Name:         "Khalins",
		SyncStatus:   models.StatusPending,
		LastModified: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, localStore.Families.BindRemote(ctx, localID, remoteFamilyID))
}

func TestClientSync_NoLocalFamily(t *testing.T) {
	_, _, syncSvc, _ := newClientTestEnv(t)

	err := syncSvc.SyncRound(context.Background())
	assert.ErrorIs(t, err, ErrNoLocalFamily)
}

// The example round: one pending category under a temporary local key
// and one pending expense referencing it. After one round both carry
// server-acknowledged identifiers and are synced; a second round with
// the advanced watermark pulls nothing.
func TestClientSync_FirstRoundScenario(t *testing.T) {
	localStore, mockAdapter, syncSvc, dataSvc := newClientTestEnv(t)
	ctx := context.Background()

	_, err := dataSvc.CreateFamily(ctx, "Khalins")
	require.NoError(t, err)

	category, err := dataSvc.CreateCategory(ctx, "Food", nil)
	require.NoError(t, err)
	assert.False(t, utils.ValidUUID(category.ID), "fresh category uses a temporary local key")

	_, err = dataSvc.CreateExpense(ctx, models.Expense{
		Description: "lunch",
		Amount:      models.Cents(1250),
		Date:        time.Now().UTC(),
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	serverTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockAdapter.EXPECT().
		CreateFamily(gomock.Any(), "Khalins").
		Return(models.Family{ID: remoteFamilyID, Name: "Khalins"}, nil)

	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.SyncRequest) (models.SyncResponse, error) {
			// The substitution phase must have promoted every local key
			// before submission.
			require.Len(t, req.Categories, 1)
			require.Len(t, req.Expenses, 1)
			assert.True(t, utils.ValidUUID(req.Categories[0].ID))
			assert.True(t, utils.ValidUUID(req.Expenses[0].ID))
			assert.Equal(t, req.Categories[0].ID, req.Expenses[0].CategoryID,
				"expense must reference the promoted category id")
			assert.True(t, req.LastSyncTimestamp.IsZero())

			resp := models.SyncResponse{ServerTimestamp: serverTime}
			cat := req.Categories[0]
			cat.FamilyID = remoteFamilyID
			cat.LastModified = serverTime
			resp.Categories = []models.Category{cat}
			exp := req.Expenses[0]
			exp.LastModified = serverTime
			resp.Expenses = []models.Expense{exp}
			return resp, nil
		})

	require.NoError(t, syncSvc.SyncRound(ctx))

	categories, err := localStore.Categories.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, models.StatusSynced, categories[0].SyncStatus)
	assert.True(t, utils.ValidUUID(categories[0].ID))

	expenses, err := localStore.Expenses.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, models.StatusSynced, expenses[0].SyncStatus)
	assert.Equal(t, categories[0].ID, expenses[0].CategoryID)

	watermark, err := localStore.State.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, watermark.Equal(serverTime))

	// Second round: nothing pending, watermark presented, empty pull.
	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.SyncRequest) (models.SyncResponse, error) {
			assert.True(t, req.LastSyncTimestamp.Equal(serverTime))
			assert.Empty(t, req.Categories)
			assert.Empty(t, req.Expenses)
			return models.SyncResponse{ServerTimestamp: serverTime.Add(time.Minute)}, nil
		})

	require.NoError(t, syncSvc.SyncRound(ctx))
}

// A budget created offline against a not-yet-synced category must be
// re-pointed at the promoted category id just like an expense is.
// Otherwise the rekeyed category leaves the budget referencing a key
// that no longer exists anywhere, and the server rejects it every
// round.
func TestClientSync_OfflineBudgetFollowsPromotedCategory(t *testing.T) {
	localStore, mockAdapter, syncSvc, dataSvc := newClientTestEnv(t)
	ctx := context.Background()

	seedBoundFamily(t, localStore)

	category, err := dataSvc.CreateCategory(ctx, "Groceries", nil)
	require.NoError(t, err)
	require.False(t, utils.ValidUUID(category.ID))

	_, err = dataSvc.CreateBudget(ctx, models.Budget{
		Name:       "March groceries",
		Amount:     models.Cents(50000),
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	serverTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.SyncRequest) (models.SyncResponse, error) {
			require.Len(t, req.Categories, 1)
			require.Len(t, req.Budgets, 1)
			assert.True(t, utils.ValidUUID(req.Categories[0].ID))
			assert.True(t, utils.ValidUUID(req.Budgets[0].ID))
			assert.Equal(t, req.Categories[0].ID, req.Budgets[0].CategoryID,
				"budget must reference the promoted category id")

			resp := models.SyncResponse{ServerTimestamp: serverTime}
			cat := req.Categories[0]
			cat.LastModified = serverTime
			resp.Categories = []models.Category{cat}
			bud := req.Budgets[0]
			bud.LastModified = serverTime
			resp.Budgets = []models.Budget{bud}
			return resp, nil
		})

	require.NoError(t, syncSvc.SyncRound(ctx))

	categories, err := localStore.Categories.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	budgets, err := localStore.Budgets.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, models.StatusSynced, budgets[0].SyncStatus)
	assert.Equal(t, categories[0].ID, budgets[0].CategoryID)
}

func TestClientSync_TransportFailureLeavesPending(t *testing.T) {
	localStore, mockAdapter, syncSvc, dataSvc := newClientTestEnv(t)
	ctx := context.Background()

	seedBoundFamily(t, localStore)
	_, err := dataSvc.CreateCategory(ctx, "Travel", nil)
	require.NoError(t, err)

	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		Return(models.SyncResponse{}, errors.New("connection refused"))

	err = syncSvc.SyncRound(ctx)
	require.Error(t, err)

	pending, err := localStore.Categories.ListByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "failed round must leave records pending")

	watermark, err := localStore.State.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, watermark.IsZero(), "no watermark advance on failure")
}

func TestClientSync_ConflictMarksError(t *testing.T) {
	localStore, mockAdapter, syncSvc, dataSvc := newClientTestEnv(t)
	ctx := context.Background()

	seedBoundFamily(t, localStore)

	foreignCategory := "0198c3a2-0000-7000-8000-00000000c0ff"
	created, err := dataSvc.CreateExpense(ctx, models.Expense{
		Description: "ghost",
		Amount:      models.Cents(100),
		Date:        time.Now().UTC(),
		CategoryID:  foreignCategory,
	})
	require.NoError(t, err)

	serverTime := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.SyncRequest) (models.SyncResponse, error) {
			require.Len(t, req.Expenses, 1)
			return models.SyncResponse{
				ServerTimestamp: serverTime,
				Conflicts: []models.Conflict{{
					EntityType:   "Expense",
					EntityID:     req.Expenses[0].ID,
					ConflictType: models.ConflictCategoryNotInFamily,
				}},
			}, nil
		})

	require.NoError(t, syncSvc.SyncRound(ctx))

	expense, err := localStore.Expenses.Get(ctx, created.LocalID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, expense.SyncStatus)
	assert.Equal(t, string(models.ConflictCategoryNotInFamily), expense.SyncError)
	assert.False(t, expense.IsDeleted, "rejected record is retained, never dropped")

	// The conflict does not block the watermark: the round succeeded.
	watermark, err := localStore.State.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, watermark.Equal(serverTime))
}

func TestClientSync_BoundFamilyIsNotReRegistered(t *testing.T) {
	localStore, mockAdapter, syncSvc, _ := newClientTestEnv(t)
	ctx := context.Background()

	seedBoundFamily(t, localStore)

	// No CreateFamily expectation: re-registration would fail the test.
	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		Return(models.SyncResponse{ServerTimestamp: time.Now().UTC()}, nil)

	require.NoError(t, syncSvc.SyncRound(ctx))
}

func TestClientSync_TombstoneTravelsAsPending(t *testing.T) {
	localStore, mockAdapter, syncSvc, dataSvc := newClientTestEnv(t)
	ctx := context.Background()

	seedBoundFamily(t, localStore)

	category, err := dataSvc.CreateCategory(ctx, "Obsolete", nil)
	require.NoError(t, err)
	require.NoError(t, dataSvc.DeleteCategory(ctx, category.ID))

	serverTime := time.Now().UTC()
	mockAdapter.EXPECT().
		Sync(gomock.Any(), remoteFamilyID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req models.SyncRequest) (models.SyncResponse, error) {
			require.Len(t, req.Categories, 1)
			assert.True(t, req.Categories[0].IsDeleted, "deletion is a tombstone update, not an omission")

			cat := req.Categories[0]
			cat.LastModified = serverTime
			return models.SyncResponse{
				ServerTimestamp: serverTime,
				Categories:      []models.Category{cat},
			}, nil
		})

	require.NoError(t, syncSvc.SyncRound(ctx))

	stored, err := localStore.Categories.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsDeleted)
	assert.Equal(t, models.StatusSynced, stored[0].SyncStatus)
}
