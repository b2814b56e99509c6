package models

import "time"

// Budget is a spending limit for one category over a date range.
// Category/family linkage is enforced by the persistence layer's
// foreign keys rather than by reconciliation logic.
type Budget struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Amount       Cents     `json:"amount"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CategoryID   string    `json:"categoryId"`
	FamilyID     string    `json:"familyId"`
	LastModified time.Time `json:"lastModified"`
	IsDeleted    bool      `json:"isDeleted"`
	SyncID       string    `json:"syncId"`
}
