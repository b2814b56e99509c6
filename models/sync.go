// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Khalin

package models

import "time"

// SyncStatus tags a local-replica record with its replication state.
// It exists only on the client; the server never sees it.
type SyncStatus string

const (
	// StatusPending marks a record created or updated locally that the
	// server has not acknowledged yet.
	StatusPending SyncStatus = "pending"

	// StatusSynced marks a record the server has acknowledged.
	StatusSynced SyncStatus = "synced"

	// StatusError marks a record whose last submission was rejected.
	// The record stays visible and editable locally for a later retry.
	StatusError SyncStatus = "error"
)

// SyncRequest is one family-scoped changeset sent by the client.
// Empty per-type lists are valid and still trigger a pull of server
// changes since LastSyncTimestamp.
type SyncRequest struct {
	// LastSyncTimestamp is the watermark returned by the previous
	// successful round (zero time on the very first round).
	LastSyncTimestamp time.Time `json:"lastSyncTimestamp"`

	Categories []Category `json:"categories"`
	Expenses   []Expense  `json:"expenses"`
	Budgets    []Budget   `json:"budgets"`
}

// SyncResponse carries everything the caller is missing: every record
// of the family modified strictly after the request watermark, the
// fresh watermark to present next round, and per-record conflicts for
// submissions that were rejected.
type SyncResponse struct {
	// ServerTimestamp is assigned once per request and stamped on every
	// write of that request before the pull set is read, so a record
	// committed inside this response window is never permanently missed.
	ServerTimestamp time.Time `json:"serverTimestamp"`

	Categories []Category `json:"categories"`
	Expenses   []Expense  `json:"expenses"`
	Budgets    []Budget   `json:"budgets"`
	Conflicts  []Conflict `json:"conflicts"`
}

// ConflictType classifies why a submitted record was rejected.
type ConflictType string

const (
	// ConflictInvalidCategoryID — the expense's category reference does
	// not parse as a valid identifier.
	ConflictInvalidCategoryID ConflictType = "InvalidCategoryId"

	// ConflictCategoryNotInFamily — the referenced category does not
	// exist, or belongs to a different family than the sync request.
	ConflictCategoryNotInFamily ConflictType = "CategoryNotInFamily"
)

// Conflict is one rejected record. The record is skipped, never
// persisted, and the rest of the batch proceeds.
type Conflict struct {
	EntityType    string       `json:"entityType"`
	EntityID      string       `json:"entityId"`
	ConflictType  ConflictType `json:"conflictType"`
	ClientVersion any          `json:"clientVersion,omitempty"`
	ServerVersion any          `json:"serverVersion,omitempty"`
}
