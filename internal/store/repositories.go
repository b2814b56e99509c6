package store

import (
	"github.com/mkhalin/family-expenses/internal/logger"
)

// Repositories aggregates every server-side repository behind one
// constructor so the service layer receives a single dependency.
type Repositories struct {
	Families   FamilyRepository
	Categories CategoryRepository
	Expenses   ExpenseRepository
	Budgets    BudgetRepository
	Members    MemberRepository
}

func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		Families:   NewFamilyRepository(db, log),
		Categories: NewCategoryRepository(db, log),
		Expenses:   NewExpenseRepository(db, log),
		Budgets:    NewBudgetRepository(db, log),
		Members:    NewMemberRepository(db, log),
	}
}
