package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface is the entity-store contract for books. Every write is
// conditioned on an expected version so stale updates are rejected instead of
// silently overwriting concurrent changes.
type RepositoryInterface interface {
	// Create inserts a new book.
	Create(ctx context.Context, book *model.Book) error

	// GetByID returns the book or ErrBookNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// List returns all books ordered by title.
	List(ctx context.Context) ([]model.Book, error)

	// Update writes catalog metadata, guarded by expectedVersion.
	// Returns ErrOptimisticLockFailed on a stale write. The stored status
	// column is never touched here.
	Update(ctx context.Context, book *model.Book, expectedVersion int) error

	// Delete removes a book. Returns ErrBookReferenced while any open loan
	// or unfulfilled reservation still points at it.
	Delete(ctx context.Context, id uuid.UUID) error
}
