package models

import "time"

// Family is the owning aggregate: every synchronized record belongs to
// exactly one family, and a sync round is always scoped to a single
// family. Families themselves are created and selected out-of-band and
// are never diffed by the sync protocol.
type Family struct {
	// ID is the globally unique identifier (UUID string on the wire),
	// assigned by the server on creation.
	ID string `json:"id"`

	// Name is the human-readable family name.
	Name string `json:"name"`

	// LastModified is the server receipt time of the last accepted write.
	LastModified time.Time `json:"lastModified"`

	// IsDeleted marks the record as a tombstone.
	IsDeleted bool `json:"isDeleted"`

	// SyncID is the idempotency token generated once at creation.
	SyncID string `json:"syncId"`
}

// FamilyMember is a person inside a family. Expenses may reference the
// member who made them; the reference is optional.
type FamilyMember struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        *string   `json:"email,omitempty"`
	FamilyID     string    `json:"familyId"`
	LastModified time.Time `json:"lastModified"`
	IsDeleted    bool      `json:"isDeleted"`
	SyncID       string    `json:"syncId"`
}
