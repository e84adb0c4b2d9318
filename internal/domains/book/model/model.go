package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lending-availability state of a book. It is derived by the
// circulation engine from the latest loan/reservation activity and is never
// set directly through catalog edits.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOnLoan    Status = "on_loan"
	StatusReserved  Status = "reserved"
)

// Book is the database entity for the books table.
type Book struct {
	ID          uuid.UUID  `db:"id"`
	Title       string     `db:"title"`
	Author      string     `db:"author"`
	PublishDate *time.Time `db:"publish_date"`
	ISBN        *string    `db:"isbn"`
	Status      Status     `db:"status"`

	// Optimistic locking
	Version int `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
