package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrFamilyNotFound — the sync or CRUD request names a family the
	// server does not know.
	ErrFamilyNotFound = errors.New("family not found")

	// ErrFamilyHasDependents — the family still owns live categories,
	// members, or budgets and must not be deleted.
	ErrFamilyHasDependents = errors.New("family has live dependents")

	ErrRecordNotFound = errors.New("record not found")

	ErrValidationNoFamilyName = errors.New("no family name provided")
	ErrValidationNoName       = errors.New("no name provided")
)
