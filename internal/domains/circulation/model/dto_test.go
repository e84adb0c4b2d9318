package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreateLoanRequestValidate(t *testing.T) {
	valid := CreateLoanRequest{BookID: uuid.New(), MemberID: uuid.New()}
	assert.NoError(t, valid.Validate())

	t.Run("missing book id", func(t *testing.T) {
		req := valid
		req.BookID = uuid.Nil
		assert.Error(t, req.Validate())
	})

	t.Run("missing member id", func(t *testing.T) {
		req := valid
		req.MemberID = uuid.Nil
		assert.Error(t, req.Validate())
	})

	t.Run("due date before loan date", func(t *testing.T) {
		loanDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		dueDate := loanDate.Add(-time.Hour)
		req := valid
		req.LoanDate = &loanDate
		req.DueDate = &dueDate
		assert.Error(t, req.Validate())
	})

	t.Run("due date equal to loan date", func(t *testing.T) {
		loanDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		req := valid
		req.LoanDate = &loanDate
		req.DueDate = &loanDate
		assert.Error(t, req.Validate())
	})

	t.Run("explicit valid dates", func(t *testing.T) {
		loanDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		dueDate := loanDate.AddDate(0, 0, 7)
		req := valid
		req.LoanDate = &loanDate
		req.DueDate = &dueDate
		assert.NoError(t, req.Validate())
	})
}

func TestCreateReservationRequestValidate(t *testing.T) {
	valid := CreateReservationRequest{BookID: uuid.New(), MemberID: uuid.New()}
	assert.NoError(t, valid.Validate())

	req := valid
	req.BookID = uuid.Nil
	assert.Error(t, req.Validate())

	req = valid
	req.MemberID = uuid.Nil
	assert.Error(t, req.Validate())
}
