package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	"library-backend/internal/domains/circulation/repository"
	memberModel "library-backend/internal/domains/member/model"
	"library-backend/internal/infrastructure/email"
	"library-backend/pkg/clock"
)

type fakeMailer struct {
	sent    []email.OverdueNoticeData
	failFor map[string]error
}

func (f *fakeMailer) SendOverdueNotice(ctx context.Context, data email.OverdueNoticeData) error {
	if err, ok := f.failFor[data.Email]; ok {
		return err
	}
	f.sent = append(f.sent, data)
	return nil
}

func newOverdueTask(t *testing.T, payload OverdueNoticePayload) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask("circulation:overdue_notice", raw)
}

func seedOverdueLoan(repo *repository.MemoryRepository, now time.Time, email string) model.Loan {
	book := bookModel.Book{ID: uuid.New(), Title: "Overdue Title", Author: "A", Status: bookModel.StatusOnLoan, Version: 2}
	member := memberModel.Member{ID: uuid.New(), Name: "Reader", MembershipID: uuid.NewString(), Email: email, Version: 1}
	loan := model.Loan{
		ID:       uuid.New(),
		BookID:   book.ID,
		MemberID: member.ID,
		LoanDate: now.AddDate(0, 0, -20),
		DueDate:  now.AddDate(0, 0, -6),
		Version:  1,
	}
	repo.SeedBook(book)
	repo.SeedMember(member)
	repo.SeedLoan(loan)
	return loan
}

func TestOverdueNoticeSweep(t *testing.T) {
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepository()
	mailer := &fakeMailer{}
	handler := NewOverdueNoticeHandler(repo, mailer, clock.NewFixed(now))

	loan := seedOverdueLoan(repo, now, "reader@example.com")

	err := handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{}))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "reader@example.com", mailer.sent[0].Email)
	assert.Equal(t, "Overdue Title", mailer.sent[0].BookTitle)
	assert.Equal(t, loan.DueDate.Format("2006-01-02"), mailer.sent[0].DueDate)

	// The stamp deduplicates: a second sweep mails nobody.
	err = handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{}))
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
}

func TestOverdueNoticeSweep_SendFailureRetriesNextRun(t *testing.T) {
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepository()
	mailer := &fakeMailer{failFor: map[string]error{"down@example.com": errors.New("smtp down")}}
	handler := NewOverdueNoticeHandler(repo, mailer, clock.NewFixed(now))

	seedOverdueLoan(repo, now, "down@example.com")
	seedOverdueLoan(repo, now, "up@example.com")

	err := handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{}))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "up@example.com", mailer.sent[0].Email)

	// The failed loan stays unstamped and is retried on the next sweep.
	mailer.failFor = nil
	err = handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{}))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "down@example.com", mailer.sent[1].Email)
}

func TestOverdueNoticeSweep_AllFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepository()
	mailer := &fakeMailer{failFor: map[string]error{"down@example.com": errors.New("smtp down")}}
	handler := NewOverdueNoticeHandler(repo, mailer, clock.NewFixed(now))

	seedOverdueLoan(repo, now, "down@example.com")

	err := handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{}))
	assert.Error(t, err)
}

func TestOverdueNoticeSweep_PinnedAsOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepository()
	mailer := &fakeMailer{}
	handler := NewOverdueNoticeHandler(repo, mailer, clock.NewFixed(now))

	seedOverdueLoan(repo, now, "reader@example.com")

	// Evaluated before the due date, the loan is not overdue yet.
	err := handler.ProcessTask(context.Background(), newOverdueTask(t, OverdueNoticePayload{AsOf: now.AddDate(0, 0, -10)}))
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}
