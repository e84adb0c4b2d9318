package service

import (
	"context"
	"fmt"

	"library-backend/internal/domains/circulation/model"
	"library-backend/internal/domains/circulation/repository"
	"library-backend/pkg/clock"
)

// ServiceInterface exposes the circulation reports. Both reports are live
// queries over open loans; overdue status is computed at read time from
// due dates, so a report is correct the moment a due date passes.
type ServiceInterface interface {
	// BooksOnLoan returns every open loan with book and member display
	// fields, oldest due date first.
	BooksOnLoan(ctx context.Context) ([]model.LoanView, error)

	// OverdueBooks returns the subset of open loans whose due date has
	// passed.
	OverdueBooks(ctx context.Context) ([]model.LoanView, error)
}

type ReportService struct {
	repo repository.RepositoryInterface
	clk  clock.Clock
}

// NewService creates a new report service.
func NewService(repo repository.RepositoryInterface, clk clock.Clock) ServiceInterface {
	return &ReportService{
		repo: repo,
		clk:  clk,
	}
}

func (s *ReportService) BooksOnLoan(ctx context.Context) ([]model.LoanView, error) {
	views, err := s.repo.ListOpenLoanViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open loans: %w", err)
	}

	now := s.clk.Now()
	for i := range views {
		views[i].Overdue = now.After(views[i].DueDate)
	}
	return views, nil
}

func (s *ReportService) OverdueBooks(ctx context.Context) ([]model.LoanView, error) {
	views, err := s.BooksOnLoan(ctx)
	if err != nil {
		return nil, err
	}

	overdue := make([]model.LoanView, 0)
	for _, v := range views {
		if v.Overdue {
			overdue = append(overdue, v)
		}
	}
	return overdue, nil
}
