package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	"library-backend/internal/domains/circulation/repository"
	memberModel "library-backend/internal/domains/member/model"
	"library-backend/internal/shared/access"
	"library-backend/pkg/cache"
	"library-backend/pkg/clock"
)

// Config carries the lending policy knobs for the engine.
type Config struct {
	// LoanPeriodDays is the default loan length when the request does not
	// name a due date.
	LoanPeriodDays int
	// TxMaxRetries bounds how many times a mutation is retried after an
	// optimistic-lock failure before ErrConflict is surfaced.
	TxMaxRetries int
}

type CirculationService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
	clk   clock.Clock
	cfg   Config
}

// NewService creates a new circulation service. cache may be nil (tests).
func NewService(repo repository.RepositoryInterface, cache cache.Cache, clk clock.Clock, cfg Config) ServiceInterface {
	if cfg.LoanPeriodDays <= 0 {
		cfg.LoanPeriodDays = 14
	}
	if cfg.TxMaxRetries <= 0 {
		cfg.TxMaxRetries = 3
	}
	return &CirculationService{
		repo:  repo,
		cache: cache,
		clk:   clk,
		cfg:   cfg,
	}
}

// withRetry reruns fn as a fresh transaction while it keeps losing the
// version race. fn must re-read everything it depends on, so each attempt
// decides on current state.
func (s *CirculationService) withRetry(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.TxMaxRetries; attempt++ {
		err = s.repo.WithinTx(ctx, fn)
		if !model.IsOptimisticLockError(err) {
			return err
		}
		log.Debug().
			Str("operation", op).
			Int("attempt", attempt).
			Msg("optimistic lock failed, retrying")
	}
	return fmt.Errorf("%w: %s lost %d version races", model.ErrConflict, op, s.cfg.TxMaxRetries)
}

func (s *CirculationService) newLoan(bookID, memberID uuid.UUID, loanDate, dueDate, now time.Time) model.Loan {
	return model.Loan{
		ID:        uuid.New(),
		BookID:    bookID,
		MemberID:  memberID,
		LoanDate:  loanDate,
		DueDate:   dueDate,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *CirculationService) defaultDueDate(loanDate time.Time) time.Time {
	return loanDate.AddDate(0, 0, s.cfg.LoanPeriodDays)
}

// invalidateBookCache drops the catalog cache after a status transition so
// catalog reads do not serve a stale availability.
func (s *CirculationService) invalidateBookCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "books:*"); err != nil {
		log.Warn().Err(err).Msg("book cache invalidation failed")
	}
}

func (s *CirculationService) CreateLoan(ctx context.Context, caller access.Caller, req model.CreateLoanRequest) (*model.LoanResponse, error) {
	if err := access.Require(caller, access.OpCreateLoan); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created model.Loan
	err := s.withRetry(ctx, "create_loan", func(tx repository.Tx) error {
		book, err := tx.GetBook(ctx, req.BookID)
		if err != nil {
			return err
		}
		if book.Status != bookModel.StatusAvailable {
			return fmt.Errorf("%w: book %s is %s", model.ErrBookNotAvailable, book.ID, book.Status)
		}

		exists, err := tx.MemberExists(ctx, req.MemberID)
		if err != nil {
			return err
		}
		if !exists {
			return memberModel.NewMemberNotFoundError(req.MemberID)
		}

		now := s.clk.Now()
		loanDate := now
		if req.LoanDate != nil {
			loanDate = *req.LoanDate
		}
		dueDate := s.defaultDueDate(loanDate)
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}

		loan := s.newLoan(req.BookID, req.MemberID, loanDate, dueDate, now)
		if err := tx.CreateLoan(ctx, &loan); err != nil {
			return err
		}
		if err := tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, now, book.Version); err != nil {
			return err
		}

		created = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookCache(ctx)

	log.Info().
		Str("loan_id", created.ID.String()).
		Str("book_id", created.BookID.String()).
		Str("member_id", created.MemberID.String()).
		Msg("loan created")

	response := created.ToResponse()
	return &response, nil
}

func (s *CirculationService) GetLoanByID(ctx context.Context, id uuid.UUID) (*model.LoanResponse, error) {
	loan, err := s.repo.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	response := loan.ToResponse()
	return &response, nil
}

func (s *CirculationService) ListLoans(ctx context.Context) ([]model.LoanResponse, error) {
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return model.ToLoanResponseList(loans), nil
}

func (s *CirculationService) ReturnLoan(ctx context.Context, caller access.Caller, loanID uuid.UUID) (*model.ReturnLoanResponse, error) {
	if err := access.Require(caller, access.OpReturnLoan); err != nil {
		return nil, err
	}

	var result model.ReturnLoanResponse
	err := s.withRetry(ctx, "return_loan", func(tx repository.Tx) error {
		result = model.ReturnLoanResponse{}

		loan, err := tx.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Returned {
			return fmt.Errorf("%w: loan %s", model.ErrLoanAlreadyReturned, loan.ID)
		}

		now := s.clk.Now()
		if err := tx.MarkLoanReturned(ctx, loan.ID, now, loan.Version); err != nil {
			return err
		}

		closed := *loan
		closed.Returned = true
		returnedAt := now
		closed.ReturnedAt = &returnedAt
		closed.Version++
		closed.UpdatedAt = now
		result.Loan = closed.ToResponse()

		book, err := tx.GetBook(ctx, loan.BookID)
		if err != nil {
			return err
		}

		head, err := tx.OldestUnfulfilledReservation(ctx, loan.BookID)
		if err != nil {
			return err
		}
		if head == nil {
			return tx.SetBookStatus(ctx, book.ID, bookModel.StatusAvailable, now, book.Version)
		}

		// Hand the book straight to the next member in the queue: the
		// reservation closes and a successor loan opens in this same
		// transaction, so the book is never observably free.
		if err := tx.MarkReservationFulfilled(ctx, head.ID, now, head.Version); err != nil {
			return err
		}
		successor := s.newLoan(book.ID, head.MemberID, now, s.defaultDueDate(now), now)
		if err := tx.CreateLoan(ctx, &successor); err != nil {
			return err
		}
		if err := tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, now, book.Version); err != nil {
			return err
		}

		fulfilled := *head
		fulfilled.Fulfilled = true
		fulfilledAt := now
		fulfilled.FulfilledAt = &fulfilledAt
		fulfilled.Version++
		fulfilled.UpdatedAt = now

		fulfilledResp := fulfilled.ToResponse()
		successorResp := successor.ToResponse()
		result.FulfilledReservation = &fulfilledResp
		result.SuccessorLoan = &successorResp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookCache(ctx)

	event := log.Info().Str("loan_id", loanID.String())
	if result.SuccessorLoan != nil {
		event = event.Str("successor_loan_id", result.SuccessorLoan.ID.String())
	}
	event.Msg("loan returned")

	return &result, nil
}

func (s *CirculationService) CreateReservation(ctx context.Context, caller access.Caller, req model.CreateReservationRequest) (*model.ReservationResponse, error) {
	if err := access.RequireForMember(caller, access.OpCreateReservation, req.MemberID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created model.Reservation
	err := s.withRetry(ctx, "create_reservation", func(tx repository.Tx) error {
		book, err := tx.GetBook(ctx, req.BookID)
		if err != nil {
			return err
		}
		if book.Status == bookModel.StatusAvailable {
			return fmt.Errorf("%w: book %s", model.ErrBookAvailable, book.ID)
		}

		exists, err := tx.MemberExists(ctx, req.MemberID)
		if err != nil {
			return err
		}
		if !exists {
			return memberModel.NewMemberNotFoundError(req.MemberID)
		}

		waiting, err := tx.HasUnfulfilledReservation(ctx, req.BookID, req.MemberID)
		if err != nil {
			return err
		}
		if waiting {
			return fmt.Errorf("%w: member %s, book %s", model.ErrAlreadyReserved, req.MemberID, req.BookID)
		}

		now := s.clk.Now()
		reservation := model.Reservation{
			ID:              uuid.New(),
			BookID:          req.BookID,
			MemberID:        req.MemberID,
			ReservationDate: now,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateReservation(ctx, &reservation); err != nil {
			return err
		}
		// Write the status back under the version read above. A return
		// committing concurrently would otherwise pass its empty-queue
		// check and leave the book available with this reservation
		// pending; the version bump makes one side lose and retry.
		if err := tx.SetBookStatus(ctx, book.ID, book.Status, now, book.Version); err != nil {
			return err
		}

		created = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("reservation_id", created.ID.String()).
		Str("book_id", created.BookID.String()).
		Str("member_id", created.MemberID.String()).
		Msg("reservation created")

	response := created.ToResponse()
	return &response, nil
}

func (s *CirculationService) GetReservationByID(ctx context.Context, id uuid.UUID) (*model.ReservationResponse, error) {
	reservation, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	response := reservation.ToResponse()
	return &response, nil
}

func (s *CirculationService) ListReservations(ctx context.Context) ([]model.ReservationResponse, error) {
	reservations, err := s.repo.ListReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return model.ToReservationResponseList(reservations), nil
}

func (s *CirculationService) FulfillReservation(ctx context.Context, caller access.Caller, reservationID uuid.UUID) (*model.FulfillReservationResponse, error) {
	if err := access.Require(caller, access.OpFulfillReservation); err != nil {
		return nil, err
	}

	var result model.FulfillReservationResponse
	err := s.withRetry(ctx, "fulfill_reservation", func(tx repository.Tx) error {
		result = model.FulfillReservationResponse{}

		reservation, err := tx.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation.Fulfilled {
			return fmt.Errorf("%w: reservation %s", model.ErrReservationAlreadyFulfilled, reservation.ID)
		}

		head, err := tx.OldestUnfulfilledReservation(ctx, reservation.BookID)
		if err != nil {
			return err
		}
		if head == nil || head.ID != reservation.ID {
			return fmt.Errorf("%w: reservation %s", model.ErrReservationNotHead, reservation.ID)
		}

		book, err := tx.GetBook(ctx, reservation.BookID)
		if err != nil {
			return err
		}
		if book.Status == bookModel.StatusOnLoan {
			return fmt.Errorf("%w: book %s is on loan", model.ErrBookNotEligible, book.ID)
		}

		now := s.clk.Now()
		if err := tx.MarkReservationFulfilled(ctx, reservation.ID, now, reservation.Version); err != nil {
			return err
		}
		loan := s.newLoan(book.ID, reservation.MemberID, now, s.defaultDueDate(now), now)
		if err := tx.CreateLoan(ctx, &loan); err != nil {
			return err
		}
		if err := tx.SetBookStatus(ctx, book.ID, bookModel.StatusOnLoan, now, book.Version); err != nil {
			return err
		}

		fulfilled := *reservation
		fulfilled.Fulfilled = true
		fulfilledAt := now
		fulfilled.FulfilledAt = &fulfilledAt
		fulfilled.Version++
		fulfilled.UpdatedAt = now

		result.Reservation = fulfilled.ToResponse()
		result.Loan = loan.ToResponse()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookCache(ctx)

	log.Info().
		Str("reservation_id", reservationID.String()).
		Str("loan_id", result.Loan.ID.String()).
		Msg("reservation fulfilled")

	return &result, nil
}
