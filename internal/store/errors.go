package store

import "errors"

// Sentinel errors shared by all repositories. Handlers map them to HTTP
// statuses; callers match with [errors.Is].
var (
	// ErrNotFound is returned when a queried record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrBuildingSQLQuery indicates the query builder produced an error
	// before the statement reached the database.
	ErrBuildingSQLQuery = errors.New("error building SQL query")

	// ErrExecutingQuery indicates a SELECT failed to execute.
	ErrExecutingQuery = errors.New("error executing query")

	// ErrExecutingStatement indicates an INSERT/UPDATE/DELETE failed.
	ErrExecutingStatement = errors.New("error executing statement")

	// ErrScanningRow indicates a result row could not be scanned.
	ErrScanningRow = errors.New("error scanning row")
)
