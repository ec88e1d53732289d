package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, e.g. a taken email address.
var ErrDuplicate = errors.New("duplicate record")

// ErrConflict is returned when a transaction loses to a concurrent
// writer. The operation is safe to retry once.
var ErrConflict = errors.New("storage conflict")

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// mapError converts driver-level Postgres errors into the package
// sentinels so callers never branch on raw pq codes.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return ErrDuplicate
		case pqSerializationFailure, pqDeadlockDetected:
			return ErrConflict
		}
	}
	return err
}
