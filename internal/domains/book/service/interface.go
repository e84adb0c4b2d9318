package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/access"
)

// ServiceInterface is the catalog business logic for books.
type ServiceInterface interface {
	// CreateBook adds a catalog entry. New books always start available.
	// Requires the admin or librarian role.
	CreateBook(ctx context.Context, caller access.Caller, req model.CreateBookRequest) (*model.BookResponse, error)

	// GetBookByID returns ErrBookNotFound when the id is unknown.
	GetBookByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error)

	// ListBooks returns the whole catalog.
	ListBooks(ctx context.Context) ([]model.BookResponse, error)

	// UpdateBook edits metadata only; it can never touch the availability
	// status. Returns ErrOptimisticLockFailed when a concurrent edit won.
	UpdateBook(ctx context.Context, caller access.Caller, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error)

	// DeleteBook removes a book with no open loan and no unfulfilled
	// reservation; otherwise ErrBookReferenced.
	DeleteBook(ctx context.Context, caller access.Caller, id uuid.UUID) error
}
