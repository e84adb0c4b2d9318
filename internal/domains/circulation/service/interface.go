package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/circulation/model"
	"library-backend/internal/shared/access"
)

// ServiceInterface is the circulation engine: every mutation runs as one
// atomic transaction and is retried a bounded number of times when a
// concurrent writer invalidates the versions it read.
type ServiceInterface interface {
	// CreateLoan lends an available book to a member and moves the book to
	// on_loan. Requires the admin or librarian role. Returns
	// ErrBookNotAvailable when the book is on loan or reserved, and
	// ErrConflict when retries are exhausted.
	CreateLoan(ctx context.Context, caller access.Caller, req model.CreateLoanRequest) (*model.LoanResponse, error)

	// GetLoanByID returns ErrLoanNotFound when the id is unknown.
	GetLoanByID(ctx context.Context, id uuid.UUID) (*model.LoanResponse, error)

	// ListLoans returns every loan, open and closed, newest first.
	ListLoans(ctx context.Context) ([]model.LoanResponse, error)

	// ReturnLoan closes an open loan. In the same transaction it fulfills
	// the oldest unfulfilled reservation for the book, if one exists, by
	// creating a successor loan for that member; otherwise the book goes
	// back to available. Returns ErrLoanAlreadyReturned on a closed loan.
	ReturnLoan(ctx context.Context, caller access.Caller, loanID uuid.UUID) (*model.ReturnLoanResponse, error)

	// CreateReservation queues a member for a book that is not currently
	// available. Members may only reserve for themselves; staff may
	// reserve on anyone's behalf. Returns ErrBookAvailable when the book
	// could simply be borrowed, and ErrAlreadyReserved when the member
	// already waits on it.
	CreateReservation(ctx context.Context, caller access.Caller, req model.CreateReservationRequest) (*model.ReservationResponse, error)

	// GetReservationByID returns ErrReservationNotFound when the id is
	// unknown.
	GetReservationByID(ctx context.Context, id uuid.UUID) (*model.ReservationResponse, error)

	// ListReservations returns every reservation, oldest first.
	ListReservations(ctx context.Context) ([]model.ReservationResponse, error)

	// FulfillReservation hands the book to the reservation holder by
	// creating a loan. Only the head of the book's queue can be fulfilled,
	// and only while the book is not on loan.
	FulfillReservation(ctx context.Context, caller access.Caller, reservationID uuid.UUID) (*model.FulfillReservationResponse, error)
}
