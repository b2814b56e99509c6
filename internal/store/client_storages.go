package store

import "github.com/mkhalin/family-expenses/internal/logger"

// NewLocalStorage wires every replica over the shared SQLite handle.
func NewLocalStorage(db *DB, log *logger.Logger) *LocalStorage {
	return &LocalStorage{
		Categories: NewCategoryReplica(db, log),
		Expenses:   NewExpenseReplica(db, log),
		Budgets:    NewBudgetReplica(db, log),
		Families:   NewFamilyReplica(db, log),
		State:      NewSyncState(db, log),
	}
}
