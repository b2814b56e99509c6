package models

import "time"

// Expense is a single spending record. CategoryID must resolve to a
// Category in the same family; the server rejects the record with a
// conflict entry otherwise. FamilyMemberID is optional.
type Expense struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	Amount         Cents     `json:"amount"`
	Date           time.Time `json:"date"`
	CategoryID     string    `json:"categoryId"`
	FamilyMemberID string    `json:"familyMemberId"`
	Notes          *string   `json:"notes,omitempty"`
	LastModified   time.Time `json:"lastModified"`
	IsDeleted      bool      `json:"isDeleted"`
	SyncID         string    `json:"syncId"`
}
