package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered record identifiers. V7 UUIDs sort
// by creation time, which keeps clustered indexes append-mostly.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// ValidUUID reports whether s parses as a UUID. The reconciliation
// service uses it to decide between honoring a client-assigned
// identifier and generating a fresh one.
func ValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
