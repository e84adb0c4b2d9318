package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrBookNotFound is returned when the referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookReferenced is returned when deleting a book that still has an
	// open loan or an unfulfilled reservation.
	ErrBookReferenced = errors.New("book referenced by open loan or unfulfilled reservation")

	// ErrOptimisticLockFailed is returned when a version mismatch is
	// detected on write (concurrent update).
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: book was modified by another transaction")
)

// NewBookNotFoundError creates a detailed not found error.
func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

// NewOptimisticLockError creates an error with version details.
func NewOptimisticLockError(expectedVersion, actualVersion int) error {
	return fmt.Errorf("%w: expected version %d, got %d", ErrOptimisticLockFailed, expectedVersion, actualVersion)
}

// IsNotFoundError checks if err is a not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

// IsReferencedError checks if err is the delete-guard conflict.
func IsReferencedError(err error) bool {
	return errors.Is(err, ErrBookReferenced)
}

// IsOptimisticLockError checks if err is an optimistic lock error.
func IsOptimisticLockError(err error) bool {
	return errors.Is(err, ErrOptimisticLockFailed)
}
