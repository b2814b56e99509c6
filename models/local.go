package models

import "time"

// Local replica row types. They wrap the wire records with the
// client-only replication tag; the server never sees SyncStatus.

// LocalCategory is a category row in the client replica. Categories are
// keyed by their record id, which the client assigns at creation.
type LocalCategory struct {
	Category
	SyncStatus SyncStatus
	// SyncError holds the conflict type of the last rejected
	// submission. Empty while the record is pending or synced.
	SyncError string
}

// LocalExpense is an expense row in the client replica. Until the first
// successful sync an expense may have no record id; the replica keys it
// by LocalID, a monotonically increasing sequence.
type LocalExpense struct {
	LocalID int64
	Expense
	SyncStatus SyncStatus
	SyncError  string
}

// LocalBudget is a budget row in the client replica.
type LocalBudget struct {
	Budget
	SyncStatus SyncStatus
	SyncError  string
}

// LocalFamily is the client's record of the owning aggregate. RemoteID
// is empty until the family has been registered with the server; sync
// rounds abort early while it is missing.
type LocalFamily struct {
	LocalID      int64
	Name         string
	RemoteID     string
	SyncStatus   SyncStatus
	LastModified time.Time
}
