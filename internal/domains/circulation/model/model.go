package model

import (
	"time"

	"github.com/google/uuid"
)

// Loan is the database entity for the loans table. Loans are an audit
// trail: they are closed by the return operation, never deleted.
// Invariant: at most one open loan (returned = false) per book.
type Loan struct {
	ID       uuid.UUID `db:"id"`
	BookID   uuid.UUID `db:"book_id"`
	MemberID uuid.UUID `db:"member_id"`
	LoanDate time.Time `db:"loan_date"`
	DueDate  time.Time `db:"due_date"`

	Returned   bool       `db:"returned"`
	ReturnedAt *time.Time `db:"returned_at"`

	// OverdueNotifiedAt deduplicates notification emails only. Overdue
	// status itself is always recomputed from DueDate, never stored.
	OverdueNotifiedAt *time.Time `db:"overdue_notified_at"`

	// Optimistic locking
	Version int `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Reservation is the database entity for the reservations table. The queue
// of unfulfilled reservations per book is served oldest-first. Like loans,
// reservations are never deleted.
type Reservation struct {
	ID              uuid.UUID `db:"id"`
	BookID          uuid.UUID `db:"book_id"`
	MemberID        uuid.UUID `db:"member_id"`
	ReservationDate time.Time `db:"reservation_date"`

	Fulfilled   bool       `db:"fulfilled"`
	FulfilledAt *time.Time `db:"fulfilled_at"`

	// Optimistic locking
	Version int `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LoanView is a loan joined with book and member display fields, used by
// the reporting endpoints.
type LoanView struct {
	LoanID       uuid.UUID `db:"loan_id" json:"loan_id"`
	BookID       uuid.UUID `db:"book_id" json:"book_id"`
	BookTitle    string    `db:"book_title" json:"book_title"`
	MemberID     uuid.UUID `db:"member_id" json:"member_id"`
	MemberName   string    `db:"member_name" json:"member_name"`
	MembershipID string    `db:"membership_id" json:"membership_id"`
	LoanDate     time.Time `db:"loan_date" json:"loan_date"`
	DueDate      time.Time `db:"due_date" json:"due_date"`
	Overdue      bool      `db:"-" json:"overdue"`
}

// OverdueContact is everything the notification job needs to reach the
// member holding an overdue loan.
type OverdueContact struct {
	LoanID      uuid.UUID
	BookTitle   string
	MemberName  string
	MemberEmail string
	DueDate     time.Time
}
