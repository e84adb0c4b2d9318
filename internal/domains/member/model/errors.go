package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMemberNotFound is returned when the referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrMembershipIDTaken is returned when creating a member with a
	// membership id that is already in use.
	ErrMembershipIDTaken = errors.New("membership id already in use")

	// ErrMemberReferenced is returned when deleting a member that still has
	// an open loan or an unfulfilled reservation.
	ErrMemberReferenced = errors.New("member referenced by open loan or unfulfilled reservation")

	// ErrOptimisticLockFailed is returned on a stale write (concurrent update).
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: member was modified by another transaction")
)

// NewMemberNotFoundError creates a detailed not found error.
func NewMemberNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrMemberNotFound, id)
}

// NewOptimisticLockError creates an error with version details.
func NewOptimisticLockError(expectedVersion, actualVersion int) error {
	return fmt.Errorf("%w: expected version %d, got %d", ErrOptimisticLockFailed, expectedVersion, actualVersion)
}

// IsNotFoundError checks if err is a not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

// IsReferencedError checks if err is the delete-guard conflict.
func IsReferencedError(err error) bool {
	return errors.Is(err, ErrMemberReferenced)
}

// IsOptimisticLockError checks if err is an optimistic lock error.
func IsOptimisticLockError(err error) bool {
	return errors.Is(err, ErrOptimisticLockFailed)
}
