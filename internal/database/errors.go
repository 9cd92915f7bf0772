package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert loses a race against a uniqueness constraint
	ErrConflict = errors.New("uniqueness conflict")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique_violation
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// wrapInsertErr maps unique violations, and the empty RETURNING of an ON CONFLICT DO NOTHING insert,
// to ErrConflict so callers can fall back to reading the winner
func wrapInsertErr(resource string, err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) || errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to create %s: %w", resource, ErrConflict)
	}
	return fmt.Errorf("failed to create %s: %w", resource, err)
}

// wrapGetErr maps sql.ErrNoRows to ErrNotFound
func wrapGetErr(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", resource, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
