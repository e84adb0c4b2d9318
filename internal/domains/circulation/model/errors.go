package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrLoanNotFound is returned when the referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrReservationNotFound is returned when the referenced reservation
	// does not exist.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrBookNotAvailable is returned when creating a loan for a book that
	// is not currently available.
	ErrBookNotAvailable = errors.New("book is not available for loan")

	// ErrBookAvailable is returned when reserving a book that is currently
	// available; there is nothing to wait for.
	ErrBookAvailable = errors.New("book is available, nothing to reserve")

	// ErrLoanAlreadyReturned is returned when returning a loan twice.
	ErrLoanAlreadyReturned = errors.New("loan already returned")

	// ErrAlreadyReserved is returned when the member already holds an
	// unfulfilled reservation for the same book.
	ErrAlreadyReserved = errors.New("member already holds an unfulfilled reservation for this book")

	// ErrReservationAlreadyFulfilled is returned when fulfilling a
	// reservation twice.
	ErrReservationAlreadyFulfilled = errors.New("reservation already fulfilled")

	// ErrReservationNotHead is returned when fulfilling a reservation that
	// is not the oldest unfulfilled one for its book.
	ErrReservationNotHead = errors.New("reservation is not the head of the queue for this book")

	// ErrBookNotEligible is returned when fulfilling a reservation for a
	// book that has been loaned out again in the meantime.
	ErrBookNotEligible = errors.New("book is not eligible for fulfillment")

	// ErrOptimisticLockFailed signals a version mismatch inside a
	// transaction attempt. The engine retries on it; callers never see it.
	ErrOptimisticLockFailed = errors.New("optimistic lock failed: record was modified by another transaction")

	// ErrConflict is surfaced to the caller after the bounded retries on
	// optimistic-lock failures are exhausted.
	ErrConflict = errors.New("conflicting concurrent update, please retry")

	// ErrStoreUnavailable wraps storage I/O failures. Safe for the caller
	// to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NewLoanNotFoundError creates a detailed not found error.
func NewLoanNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLoanNotFound, id)
}

// NewReservationNotFoundError creates a detailed not found error.
func NewReservationNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrReservationNotFound, id)
}

// IsNotFoundError checks if err refers to a missing entity of any kind the
// circulation engine touches.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrReservationNotFound)
}

// IsInvalidStateError checks if err is a state-machine guard failure.
func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrBookNotAvailable) ||
		errors.Is(err, ErrBookAvailable) ||
		errors.Is(err, ErrLoanAlreadyReturned) ||
		errors.Is(err, ErrAlreadyReserved) ||
		errors.Is(err, ErrReservationAlreadyFulfilled) ||
		errors.Is(err, ErrReservationNotHead)
}

// IsConflictError checks if err is a concurrency conflict surfaced to the
// caller.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrBookNotEligible)
}

// IsOptimisticLockError checks if err is a retryable version mismatch.
func IsOptimisticLockError(err error) bool {
	return errors.Is(err, ErrOptimisticLockFailed)
}

// IsUnavailableError checks if err is a storage I/O failure.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
