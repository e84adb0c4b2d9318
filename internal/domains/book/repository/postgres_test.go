package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "loans_book_id_fkey"}
	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("failed to delete book: %w", fk)))

	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(errors.New("connection reset")))
	assert.False(t, isForeignKeyViolation(nil))
}
