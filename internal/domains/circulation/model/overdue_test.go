package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	open := Loan{DueDate: due}

	t.Run("before due date", func(t *testing.T) {
		assert.False(t, IsOverdue(open, due.Add(-time.Minute)))
	})

	t.Run("exactly at due date", func(t *testing.T) {
		// A loan due at time T is not overdue at T, only strictly after.
		assert.False(t, IsOverdue(open, due))
	})

	t.Run("after due date", func(t *testing.T) {
		assert.True(t, IsOverdue(open, due.Add(time.Minute)))
	})

	t.Run("returned loans are never overdue", func(t *testing.T) {
		returnedAt := due.Add(48 * time.Hour)
		closed := Loan{DueDate: due, Returned: true, ReturnedAt: &returnedAt}
		assert.False(t, IsOverdue(closed, due.Add(720*time.Hour)))
	})

	t.Run("monotonic once overdue", func(t *testing.T) {
		// An open loan that is overdue stays overdue at every later instant.
		start := due.Add(time.Second)
		for i := 0; i < 10; i++ {
			assert.True(t, IsOverdue(open, start.Add(time.Duration(i)*24*time.Hour)))
		}
	})
}
