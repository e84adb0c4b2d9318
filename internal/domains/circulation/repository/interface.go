package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
)

// Tx is the store surface visible inside one circulation transaction.
// Every write is guarded by an expected version and returns
// ErrOptimisticLockFailed on a stale write, so the engine can retry the
// whole read-validate-write cycle instead of applying a stale decision.
type Tx interface {
	// GetBook returns the book with its current version, or ErrBookNotFound.
	GetBook(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)

	// SetBookStatus transitions the derived availability status, guarded by
	// expectedVersion.
	SetBookStatus(ctx context.Context, id uuid.UUID, status bookModel.Status, at time.Time, expectedVersion int) error

	// MemberExists reports whether the member id is known.
	MemberExists(ctx context.Context, id uuid.UUID) (bool, error)

	// GetLoan returns the loan or ErrLoanNotFound.
	GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error)

	// CreateLoan inserts a new open loan.
	CreateLoan(ctx context.Context, loan *model.Loan) error

	// MarkLoanReturned closes an open loan, guarded by expectedVersion.
	MarkLoanReturned(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error

	// GetReservation returns the reservation or ErrReservationNotFound.
	GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)

	// CreateReservation inserts a new unfulfilled reservation.
	CreateReservation(ctx context.Context, reservation *model.Reservation) error

	// MarkReservationFulfilled closes a reservation, guarded by
	// expectedVersion.
	MarkReservationFulfilled(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error

	// OldestUnfulfilledReservation returns the head of the book's
	// reservation queue, or nil when the queue is empty.
	OldestUnfulfilledReservation(ctx context.Context, bookID uuid.UUID) (*model.Reservation, error)

	// HasUnfulfilledReservation reports whether the member already waits
	// on this book.
	HasUnfulfilledReservation(ctx context.Context, bookID, memberID uuid.UUID) (bool, error)
}

// RepositoryInterface is the entity store for the circulation engine: the
// transactional boundary plus the read-only queries that need no locking.
type RepositoryInterface interface {
	// WithinTx runs fn as one atomic unit: either every write inside it
	// lands, or none do.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// GetLoan / ListLoans are snapshot reads for the query endpoints.
	GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)

	// GetReservation / ListReservations are snapshot reads for the query
	// endpoints.
	GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListReservations(ctx context.Context) ([]model.Reservation, error)

	// ListOpenLoanViews returns every open loan joined with book and
	// member display fields, oldest due date first.
	ListOpenLoanViews(ctx context.Context) ([]model.LoanView, error)

	// ListOverdueUnnotified returns contact rows for loans that are
	// overdue as of asOf and have not had a notice sent yet.
	ListOverdueUnnotified(ctx context.Context, asOf time.Time) ([]model.OverdueContact, error)

	// MarkOverdueNotified stamps a loan so the notification job does not
	// mail the same member twice for one loan.
	MarkOverdueNotified(ctx context.Context, loanID uuid.UUID, at time.Time) error
}
