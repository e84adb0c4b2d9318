package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/book/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL book repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author, publish_date, isbn, status, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.PublishDate,
		book.ISBN,
		book.Status,
		book.Version,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		SELECT id, title, author, publish_date, isbn, status, version, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.PublishDate,
		&book.ISBN,
		&book.Status,
		&book.Version,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	return &book, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Book, error) {
	query := `
		SELECT id, title, author, publish_date, isbn, status, version, created_at, updated_at
		FROM books
		ORDER BY title ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var book model.Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.PublishDate,
			&book.ISBN,
			&book.Status,
			&book.Version,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) Update(ctx context.Context, book *model.Book, expectedVersion int) error {
	// Status is deliberately absent: availability transitions belong to the
	// circulation engine, catalog edits only touch metadata.
	query := `
		UPDATE books
		SET title = $2,
			author = $3,
			publish_date = $4,
			isbn = $5,
			version = version + 1,
			updated_at = $6
		WHERE id = $1 AND version = $7
		RETURNING version
	`

	err := r.pool.QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.PublishDate,
		book.ISBN,
		book.UpdatedAt,
		expectedVersion,
	).Scan(&book.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the book vanished or the version moved on. Re-read to
			// report the precise failure.
			current, getErr := r.GetByID(ctx, book.ID)
			if getErr != nil {
				return getErr
			}
			return model.NewOptimisticLockError(expectedVersion, current.Version)
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	return nil
}

// isForeignKeyViolation reports whether err is a 23503 from a referencing
// loan or reservation row.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// The delete only fires while nothing references the book; open loans
	// and unfulfilled reservations block it.
	query := `
		DELETE FROM books b
		WHERE b.id = $1
		  AND NOT EXISTS (SELECT 1 FROM loans l WHERE l.book_id = b.id AND NOT l.returned)
		  AND NOT EXISTS (SELECT 1 FROM reservations r WHERE r.book_id = b.id AND NOT r.fulfilled)
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		// A loan or reservation committed between the NOT EXISTS checks
		// and the delete still trips the foreign keys.
		if isForeignKeyViolation(err) {
			return model.ErrBookReferenced
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return model.ErrBookReferenced
	}

	return nil
}
