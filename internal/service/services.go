package service

import (
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/internal/store"
)

// Services aggregates the server-side services behind one constructor.
type Services struct {
	SyncService     SyncService
	FamilyService   FamilyService
	CategoryService CategoryService
	ExpenseService  ExpenseService
}

func NewServices(repos *store.Repositories, logger *logger.Logger) *Services {
	return &Services{
		SyncService:     NewSyncService(repos, logger),
		FamilyService:   NewFamilyService(repos.Families, repos.Members, logger),
		CategoryService: NewCategoryService(repos.Categories, repos.Families, logger),
		ExpenseService:  NewExpenseService(repos.Expenses, repos.Categories, logger),
	}
}
