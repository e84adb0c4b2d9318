package model

import "time"

// IsOverdue reports whether a loan is overdue at the given instant:
// not yet returned and past its due date. It is a pure function over the
// loan record, recomputed on every query; nothing stores the result.
// Returning the book is the only way the flag goes back to false.
func IsOverdue(loan Loan, now time.Time) bool {
	return !loan.Returned && now.After(loan.DueDate)
}
