package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/circulation/repository"
	"library-backend/internal/infrastructure/email"
	"library-backend/pkg/clock"
)

// OverdueNoticePayload optionally pins the evaluation instant; the zero
// value means "now". Overdue status is recomputed from due dates on every
// run, never read from a stored flag.
type OverdueNoticePayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

type OverdueNoticeHandler struct {
	repo   repository.RepositoryInterface
	mailer email.EmailService
	clk    clock.Clock
}

func NewOverdueNoticeHandler(repo repository.RepositoryInterface, mailer email.EmailService, clk clock.Clock) *OverdueNoticeHandler {
	return &OverdueNoticeHandler{
		repo:   repo,
		mailer: mailer,
		clk:    clk,
	}
}

func (h *OverdueNoticeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload OverdueNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal overdue notice payload: %w", err)
	}

	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = h.clk.Now()
	}

	contacts, err := h.repo.ListOverdueUnnotified(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to list overdue loans: %w", err)
	}

	log.Info().
		Time("as_of", asOf).
		Int("overdue_loans", len(contacts)).
		Msg("starting overdue notice sweep")

	sent, failed := 0, 0
	for _, contact := range contacts {
		err := h.mailer.SendOverdueNotice(ctx, email.OverdueNoticeData{
			Email:      contact.MemberEmail,
			MemberName: contact.MemberName,
			BookTitle:  contact.BookTitle,
			DueDate:    contact.DueDate.Format("2006-01-02"),
		})
		if err != nil {
			// Leave the loan unstamped so the next sweep retries it.
			log.Error().Err(err).
				Str("loan_id", contact.LoanID.String()).
				Msg("failed to send overdue notice")
			failed++
			continue
		}
		if err := h.repo.MarkOverdueNotified(ctx, contact.LoanID, h.clk.Now()); err != nil {
			log.Error().Err(err).
				Str("loan_id", contact.LoanID.String()).
				Msg("failed to stamp overdue notice")
			failed++
			continue
		}
		sent++
	}

	log.Info().
		Int("sent", sent).
		Int("failed", failed).
		Msg("overdue notice sweep finished")

	if failed > 0 && sent == 0 {
		return fmt.Errorf("overdue notice sweep failed for all %d loans", failed)
	}
	return nil
}
