package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	memberModel "library-backend/internal/domains/member/model"
)

var memNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedMemoryStore(t *testing.T) (*MemoryRepository, bookModel.Book, memberModel.Member) {
	t.Helper()
	repo := NewMemoryRepository()
	book := bookModel.Book{ID: uuid.New(), Title: "SICP", Author: "Abelson and Sussman", Status: bookModel.StatusAvailable, Version: 1}
	member := memberModel.Member{ID: uuid.New(), Name: "Alan Turing", MembershipID: "M-0042", Email: "alan@example.com", Version: 1}
	repo.SeedBook(book)
	repo.SeedMember(member)
	return repo, book, member
}

func TestMemoryVersionGuard(t *testing.T) {
	repo, book, _ := seedMemoryStore(t)
	ctx := context.Background()

	err := repo.WithinTx(ctx, func(tx Tx) error {
		return tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, memNow, book.Version+5)
	})
	assert.ErrorIs(t, err, model.ErrOptimisticLockFailed)

	stored, _ := repo.Book(book.ID)
	assert.Equal(t, bookModel.StatusAvailable, stored.Status)
	assert.Equal(t, 1, stored.Version)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		return tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, memNow, book.Version)
	})
	require.NoError(t, err)

	stored, _ = repo.Book(book.ID)
	assert.Equal(t, bookModel.StatusOnLoan, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestMemoryRollbackOnError(t *testing.T) {
	repo, book, member := seedMemoryStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(tx Tx) error {
		loan := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow, DueDate: memNow.AddDate(0, 0, 14), Version: 1}
		if err := tx.CreateLoan(ctx, &loan); err != nil {
			return err
		}
		if err := tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, memNow, book.Version); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing committed.
	loans, _ := repo.ListLoans(ctx)
	assert.Empty(t, loans)
	stored, _ := repo.Book(book.ID)
	assert.Equal(t, bookModel.StatusAvailable, stored.Status)
}

func TestMemoryOpenLoanUniqueness(t *testing.T) {
	repo, book, member := seedMemoryStore(t)
	ctx := context.Background()

	open := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow, DueDate: memNow.AddDate(0, 0, 14), Version: 1}
	repo.SeedLoan(open)

	err := repo.WithinTx(ctx, func(tx Tx) error {
		dup := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow, DueDate: memNow.AddDate(0, 0, 14), Version: 1}
		return tx.CreateLoan(ctx, &dup)
	})
	assert.ErrorIs(t, err, model.ErrOptimisticLockFailed)
}

func TestMemoryStaleReservationWriteLoses(t *testing.T) {
	repo, book, member := seedMemoryStore(t)
	ctx := context.Background()

	book.Status = bookModel.StatusOnLoan
	book.Version = 2
	repo.SeedBook(book)
	open := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow.AddDate(0, 0, -7), DueDate: memNow.AddDate(0, 0, 7), Version: 1}
	repo.SeedLoan(open)

	// A reservation transaction reads the book as on loan, then stalls.
	var snapshot bookModel.Book
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error {
		b, err := tx.GetBook(ctx, book.ID)
		if err != nil {
			return err
		}
		snapshot = *b
		return nil
	}))

	// A return commits in between: the queue is empty, so the book goes
	// back to available and its version advances.
	require.NoError(t, repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.MarkLoanReturned(ctx, open.ID, memNow, open.Version); err != nil {
			return err
		}
		return tx.SetBookStatus(ctx, book.ID, bookModel.StatusAvailable, memNow, snapshot.Version)
	}))

	// The reservation transaction resumes on its stale snapshot. The
	// status write under the old version fails and the insert rolls back
	// with it.
	err := repo.WithinTx(ctx, func(tx Tx) error {
		reservation := model.Reservation{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, ReservationDate: memNow, Version: 1}
		if err := tx.CreateReservation(ctx, &reservation); err != nil {
			return err
		}
		return tx.SetBookStatus(ctx, book.ID, snapshot.Status, memNow, snapshot.Version)
	})
	assert.ErrorIs(t, err, model.ErrOptimisticLockFailed)

	reservations, _ := repo.ListReservations(ctx)
	assert.Empty(t, reservations)
	stored, _ := repo.Book(book.ID)
	assert.Equal(t, bookModel.StatusAvailable, stored.Status)
}

func TestMemoryReservationQueueOrder(t *testing.T) {
	repo, book, _ := seedMemoryStore(t)
	ctx := context.Background()

	newest := model.Reservation{ID: uuid.New(), BookID: book.ID, MemberID: uuid.New(), ReservationDate: memNow.Add(time.Hour), Version: 1}
	oldest := model.Reservation{ID: uuid.New(), BookID: book.ID, MemberID: uuid.New(), ReservationDate: memNow.Add(-time.Hour), Version: 1}
	fulfilledAt := memNow
	closed := model.Reservation{ID: uuid.New(), BookID: book.ID, MemberID: uuid.New(), ReservationDate: memNow.Add(-2 * time.Hour), Fulfilled: true, FulfilledAt: &fulfilledAt, Version: 2}
	repo.SeedReservation(newest)
	repo.SeedReservation(oldest)
	repo.SeedReservation(closed)

	err := repo.WithinTx(ctx, func(tx Tx) error {
		head, err := tx.OldestUnfulfilledReservation(ctx, book.ID)
		require.NoError(t, err)
		require.NotNil(t, head)
		// Fulfilled reservations never surface as the head.
		assert.Equal(t, oldest.ID, head.ID)
		return nil
	})
	require.NoError(t, err)

	err = repo.WithinTx(ctx, func(tx Tx) error {
		head, err := tx.OldestUnfulfilledReservation(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, head)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryOverdueUnnotified(t *testing.T) {
	repo, book, member := seedMemoryStore(t)
	ctx := context.Background()

	dueYesterday := memNow.AddDate(0, 0, -1)
	overdue := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow.AddDate(0, 0, -15), DueDate: dueYesterday, Version: 1}
	notifiedAt := memNow.Add(-time.Hour)
	alreadyNotified := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow.AddDate(0, 0, -20), DueDate: memNow.AddDate(0, 0, -6), OverdueNotifiedAt: &notifiedAt, Version: 1}
	notDue := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow, DueDate: memNow.AddDate(0, 0, 14), Version: 1}
	repo.SeedLoan(overdue)
	repo.SeedLoan(alreadyNotified)
	repo.SeedLoan(notDue)

	contacts, err := repo.ListOverdueUnnotified(ctx, memNow)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, overdue.ID, contacts[0].LoanID)
	assert.Equal(t, member.Email, contacts[0].MemberEmail)
	assert.Equal(t, book.Title, contacts[0].BookTitle)

	require.NoError(t, repo.MarkOverdueNotified(ctx, overdue.ID, memNow))

	contacts, err = repo.ListOverdueUnnotified(ctx, memNow)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestMemoryOpenLoanViews(t *testing.T) {
	repo, book, member := seedMemoryStore(t)
	ctx := context.Background()

	returnedAt := memNow
	closed := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow.AddDate(0, 0, -30), DueDate: memNow.AddDate(0, 0, -16), Returned: true, ReturnedAt: &returnedAt, Version: 2}
	open := model.Loan{ID: uuid.New(), BookID: book.ID, MemberID: member.ID, LoanDate: memNow, DueDate: memNow.AddDate(0, 0, 14), Version: 1}
	repo.SeedLoan(closed)
	repo.SeedLoan(open)

	views, err := repo.ListOpenLoanViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, open.ID, views[0].LoanID)
	assert.Equal(t, book.Title, views[0].BookTitle)
	assert.Equal(t, member.Name, views[0].MemberName)
	assert.Equal(t, member.MembershipID, views[0].MembershipID)
}
