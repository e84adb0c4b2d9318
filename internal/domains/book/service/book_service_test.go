package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/access"
	"library-backend/pkg/clock"
)

var bookNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubBookRepo is a map-backed repository with the same version semantics
// as the PostgreSQL implementation.
type stubBookRepo struct {
	books      map[uuid.UUID]model.Book
	referenced map[uuid.UUID]bool
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{
		books:      make(map[uuid.UUID]model.Book),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (r *stubBookRepo) Create(ctx context.Context, book *model.Book) error {
	r.books[book.ID] = *book
	return nil
}

func (r *stubBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, ok := r.books[id]
	if !ok {
		return nil, model.NewBookNotFoundError(id)
	}
	return &book, nil
}

func (r *stubBookRepo) List(ctx context.Context) ([]model.Book, error) {
	books := make([]model.Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	return books, nil
}

func (r *stubBookRepo) Update(ctx context.Context, book *model.Book, expectedVersion int) error {
	current, ok := r.books[book.ID]
	if !ok || current.Version != expectedVersion {
		return model.ErrOptimisticLockFailed
	}
	updated := *book
	updated.Status = current.Status
	updated.Version = current.Version + 1
	r.books[book.ID] = updated
	return nil
}

func (r *stubBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.books[id]; !ok {
		return model.NewBookNotFoundError(id)
	}
	if r.referenced[id] {
		return model.ErrBookReferenced
	}
	delete(r.books, id)
	return nil
}

func newBookService(t *testing.T) (*stubBookRepo, ServiceInterface) {
	t.Helper()
	repo := newStubBookRepo()
	return repo, NewService(repo, nil, clock.NewFixed(bookNow))
}

func staff() access.Caller {
	return access.Caller{UserID: uuid.New(), Roles: []access.Role{access.RoleLibrarian}}
}

func patron() access.Caller {
	id := uuid.New()
	return access.Caller{UserID: uuid.New(), MemberID: &id, Roles: []access.Role{access.RoleMember}}
}

func TestCreateBook(t *testing.T) {
	repo, svc := newBookService(t)

	isbn := "978-0134190440"
	book, err := svc.CreateBook(context.Background(), staff(), model.CreateBookRequest{
		Title:  "The Go Programming Language",
		Author: "Donovan and Kernighan",
		ISBN:   &isbn,
	})
	require.NoError(t, err)

	// New books always start available at version 1.
	assert.Equal(t, model.StatusAvailable, book.Status)
	assert.Equal(t, 1, book.Version)
	assert.Equal(t, bookNow, book.CreatedAt)
	assert.Len(t, repo.books, 1)
}

func TestCreateBook_ValidationFailure(t *testing.T) {
	repo, svc := newBookService(t)

	_, err := svc.CreateBook(context.Background(), staff(), model.CreateBookRequest{Author: "No Title"})
	assert.Error(t, err)
	assert.Empty(t, repo.books)
}

func TestCreateBook_PermissionDenied(t *testing.T) {
	repo, svc := newBookService(t)

	_, err := svc.CreateBook(context.Background(), patron(), model.CreateBookRequest{
		Title:  "The Go Programming Language",
		Author: "Donovan and Kernighan",
	})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
	assert.Empty(t, repo.books)
}

func TestUpdateBook_NeverTouchesStatus(t *testing.T) {
	repo, svc := newBookService(t)
	book := model.Book{ID: uuid.New(), Title: "Old", Author: "A", Status: model.StatusOnLoan, Version: 3}
	repo.books[book.ID] = book

	title := "New Title"
	updated, err := svc.UpdateBook(context.Background(), staff(), book.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, model.StatusOnLoan, repo.books[book.ID].Status)
	assert.Equal(t, 4, repo.books[book.ID].Version)
}

func TestUpdateBook_NotFound(t *testing.T) {
	_, svc := newBookService(t)

	title := "x"
	_, err := svc.UpdateBook(context.Background(), staff(), uuid.New(), model.UpdateBookRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestDeleteBook_ReferencedRejected(t *testing.T) {
	repo, svc := newBookService(t)
	book := model.Book{ID: uuid.New(), Title: "Kept", Author: "A", Status: model.StatusOnLoan, Version: 2}
	repo.books[book.ID] = book
	repo.referenced[book.ID] = true

	err := svc.DeleteBook(context.Background(), staff(), book.ID)
	assert.ErrorIs(t, err, model.ErrBookReferenced)
	assert.Len(t, repo.books, 1)
}

func TestDeleteBook(t *testing.T) {
	repo, svc := newBookService(t)
	book := model.Book{ID: uuid.New(), Title: "Gone", Author: "A", Status: model.StatusAvailable, Version: 1}
	repo.books[book.ID] = book

	require.NoError(t, svc.DeleteBook(context.Background(), staff(), book.ID))
	assert.Empty(t, repo.books)
}

func TestGetAndListBooks(t *testing.T) {
	repo, svc := newBookService(t)
	book := model.Book{ID: uuid.New(), Title: "Listed", Author: "A", Status: model.StatusAvailable, Version: 1}
	repo.books[book.ID] = book

	got, err := svc.GetBookByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)

	list, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetBookByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}
