package http

import (
	"context"

	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/service"
	"github.com/mkhalin/family-expenses/models"
)

type mockSyncService struct {
	syncFn func(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error)
}

func (m *mockSyncService) Sync(ctx context.Context, familyID string, request models.SyncRequest) (models.SyncResponse, error) {
	return m.syncFn(ctx, familyID, request)
}

type mockFamilyService struct {
	createFn      func(ctx context.Context, name string) (models.Family, error)
	getFn         func(ctx context.Context, id string) (models.Family, error)
	listFn        func(ctx context.Context) ([]models.Family, error)
	deleteFn      func(ctx context.Context, id string) error
	addMemberFn   func(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error)
	listMembersFn func(ctx context.Context, familyID string) ([]models.FamilyMember, error)
}

func (m *mockFamilyService) Create(ctx context.Context, name string) (models.Family, error) {
	return m.createFn(ctx, name)
}
func (m *mockFamilyService) Get(ctx context.Context, id string) (models.Family, error) {
	return m.getFn(ctx, id)
}
func (m *mockFamilyService) List(ctx context.Context) ([]models.Family, error) {
	return m.listFn(ctx)
}
func (m *mockFamilyService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockFamilyService) AddMember(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error) {
	return m.addMemberFn(ctx, member)
}
func (m *mockFamilyService) ListMembers(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	return m.listMembersFn(ctx, familyID)
}

type mockCategoryService struct {
	createFn func(ctx context.Context, category models.Category) (models.Category, error)
	getFn    func(ctx context.Context, id string) (models.Category, error)
	listFn   func(ctx context.Context, familyID string) ([]models.Category, error)
	updateFn func(ctx context.Context, category models.Category) (models.Category, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockCategoryService) Create(ctx context.Context, category models.Category) (models.Category, error) {
	return m.createFn(ctx, category)
}
func (m *mockCategoryService) Get(ctx context.Context, id string) (models.Category, error) {
	return m.getFn(ctx, id)
}
func (m *mockCategoryService) ListByFamily(ctx context.Context, familyID string) ([]models.Category, error) {
	return m.listFn(ctx, familyID)
}
func (m *mockCategoryService) Update(ctx context.Context, category models.Category) (models.Category, error) {
	return m.updateFn(ctx, category)
}
func (m *mockCategoryService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockExpenseService struct {
	createFn func(ctx context.Context, expense models.Expense) (models.Expense, error)
	getFn    func(ctx context.Context, id string) (models.Expense, error)
	listFn   func(ctx context.Context, familyID string) ([]models.Expense, error)
	updateFn func(ctx context.Context, expense models.Expense) (models.Expense, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockExpenseService) Create(ctx context.Context, expense models.Expense) (models.Expense, error) {
	return m.createFn(ctx, expense)
}
func (m *mockExpenseService) Get(ctx context.Context, id string) (models.Expense, error) {
	return m.getFn(ctx, id)
}
func (m *mockExpenseService) ListByFamily(ctx context.Context, familyID string) ([]models.Expense, error) {
	return m.listFn(ctx, familyID)
}
func (m *mockExpenseService) Update(ctx context.Context, expense models.Expense) (models.Expense, error) {
	return m.updateFn(ctx, expense)
}
func (m *mockExpenseService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func newTestHandler(services *service.Services) *Handler {
	return &Handler{
		services: services,
		logger:   logger.Nop(),
	}
}
