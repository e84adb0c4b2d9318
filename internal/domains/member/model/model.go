package model

import (
	"time"

	"github.com/google/uuid"
)

// Member is the database entity for the members table. Members are
// referenced by loans and reservations but never mutated by them.
type Member struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	MembershipID string     `db:"membership_id"`
	Email        string     `db:"email"`
	Phone        *string    `db:"phone"`
	UserID       *uuid.UUID `db:"user_id"` // optional link to a caller identity

	// Optimistic locking
	Version int `db:"version"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
