package models

import "time"

// Category is an expense classification owned by a family.
//
// The envelope fields (ID, LastModified, IsDeleted, SyncID) are shared
// by every synchronized record type:
//   - ID is assigned once by whichever side creates the record and is
//     immutable afterwards;
//   - LastModified is authoritative only when set by the server — any
//     client-supplied value is informational;
//   - IsDeleted is a soft-delete tombstone, synchronized like any other
//     update;
//   - SyncID is generated once at first creation and de-duplicates
//     create replays.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	FamilyID     string    `json:"familyId"`
	LastModified time.Time `json:"lastModified"`
	IsDeleted    bool      `json:"isDeleted"`
	SyncID       string    `json:"syncId"`
}
