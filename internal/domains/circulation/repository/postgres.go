package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	"library-backend/pkg/database"
)

const loanColumns = `id, book_id, member_id, loan_date, due_date, returned, returned_at,
		overdue_notified_at, version, created_at, updated_at`

const reservationColumns = `id, book_id, member_id, reservation_date, fulfilled, fulfilled_at,
		version, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL circulation repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx, so the row scans
// below serve transactional and snapshot reads alike.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxTx{q: tx})
	})

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

func (r *postgresRepository) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return getLoan(ctx, r.pool, id)
}

func (r *postgresRepository) ListLoans(ctx context.Context) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY loan_date DESC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

func (r *postgresRepository) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return getReservation(ctx, r.pool, id)
}

func (r *postgresRepository) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY reservation_date ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

func (r *postgresRepository) ListOpenLoanViews(ctx context.Context) ([]model.LoanView, error) {
	query := `
		SELECT l.id, l.book_id, b.title, l.member_id, m.name, m.membership_id, l.loan_date, l.due_date
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN members m ON m.id = l.member_id
		WHERE NOT l.returned
		ORDER BY l.due_date ASC, l.id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open loans: %w", err)
	}
	defer rows.Close()

	views := make([]model.LoanView, 0)
	for rows.Next() {
		var v model.LoanView
		err := rows.Scan(
			&v.LoanID,
			&v.BookID,
			&v.BookTitle,
			&v.MemberID,
			&v.MemberName,
			&v.MembershipID,
			&v.LoanDate,
			&v.DueDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan view row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan view rows: %w", err)
	}

	return views, nil
}

func (r *postgresRepository) ListOverdueUnnotified(ctx context.Context, asOf time.Time) ([]model.OverdueContact, error) {
	query := `
		SELECT l.id, b.title, m.name, m.email, l.due_date
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN members m ON m.id = l.member_id
		WHERE NOT l.returned
		  AND l.due_date < $1
		  AND l.overdue_notified_at IS NULL
		ORDER BY l.due_date ASC, l.id ASC
	`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue loans: %w", err)
	}
	defer rows.Close()

	contacts := make([]model.OverdueContact, 0)
	for rows.Next() {
		var c model.OverdueContact
		if err := rows.Scan(&c.LoanID, &c.BookTitle, &c.MemberName, &c.MemberEmail, &c.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan overdue contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overdue contact rows: %w", err)
	}

	return contacts, nil
}

func (r *postgresRepository) MarkOverdueNotified(ctx context.Context, loanID uuid.UUID, at time.Time) error {
	query := `
		UPDATE loans
		SET overdue_notified_at = $2, updated_at = $2
		WHERE id = $1 AND overdue_notified_at IS NULL
	`

	if _, err := r.pool.Exec(ctx, query, loanID, at); err != nil {
		return fmt.Errorf("failed to mark loan notified: %w", err)
	}
	return nil
}

// pgxTx implements Tx on top of a pgx transaction.
type pgxTx struct {
	q pgx.Tx
}

func (t *pgxTx) GetBook(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
	query := `
		SELECT id, title, author, publish_date, isbn, status, version, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	var book bookModel.Book
	err := t.q.QueryRow(ctx, query, id).Scan(
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
			return nil, bookModel.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

func (t *pgxTx) SetBookStatus(ctx context.Context, id uuid.UUID, status bookModel.Status, at time.Time, expectedVersion int) error {
	query := `
		UPDATE books
		SET status = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND version = $4
	`

	tag, err := t.q.Exec(ctx, query, id, status, at, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to set book status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOptimisticLockFailed
	}
	return nil
}

func (t *pgxTx) MemberExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check member existence: %w", err)
	}
	return exists, nil
}

func (t *pgxTx) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return getLoan(ctx, t.q, id)
}

func (t *pgxTx) CreateLoan(ctx context.Context, loan *model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := t.q.Exec(ctx, query,
		loan.ID,
		loan.BookID,
		loan.MemberID,
		loan.LoanDate,
		loan.DueDate,
		loan.Returned,
		loan.ReturnedAt,
		loan.OverdueNotifiedAt,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The partial unique index on open loans caught a racing insert;
			// let the engine retry and re-derive the book state.
			return model.ErrOptimisticLockFailed
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

func (t *pgxTx) MarkLoanReturned(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error {
	query := `
		UPDATE loans
		SET returned = TRUE, returned_at = $2, version = version + 1, updated_at = $2
		WHERE id = $1 AND version = $3 AND NOT returned
	`

	tag, err := t.q.Exec(ctx, query, id, at, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to mark loan returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOptimisticLockFailed
	}
	return nil
}

func (t *pgxTx) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return getReservation(ctx, t.q, id)
}

func (t *pgxTx) CreateReservation(ctx context.Context, reservation *model.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.q.Exec(ctx, query,
		reservation.ID,
		reservation.BookID,
		reservation.MemberID,
		reservation.ReservationDate,
		reservation.Fulfilled,
		reservation.FulfilledAt,
		reservation.Version,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (t *pgxTx) MarkReservationFulfilled(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error {
	query := `
		UPDATE reservations
		SET fulfilled = TRUE, fulfilled_at = $2, version = version + 1, updated_at = $2
		WHERE id = $1 AND version = $3 AND NOT fulfilled
	`

	tag, err := t.q.Exec(ctx, query, id, at, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to mark reservation fulfilled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOptimisticLockFailed
	}
	return nil
}

func (t *pgxTx) OldestUnfulfilledReservation(ctx context.Context, bookID uuid.UUID) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE book_id = $1 AND NOT fulfilled
		ORDER BY reservation_date ASC, created_at ASC, id ASC
		LIMIT 1
	`

	var reservation model.Reservation
	err := t.q.QueryRow(ctx, query, bookID).Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.MemberID,
		&reservation.ReservationDate,
		&reservation.Fulfilled,
		&reservation.FulfilledAt,
		&reservation.Version,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation queue head: %w", err)
	}

	return &reservation, nil
}

func (t *pgxTx) HasUnfulfilledReservation(ctx context.Context, bookID, memberID uuid.UUID) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE book_id = $1 AND member_id = $2 AND NOT fulfilled)`,
		bookID, memberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reservation existence: %w", err)
	}
	return exists, nil
}

// Shared scan helpers

func getLoan(ctx context.Context, q queryer, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan model.Loan
	err := q.QueryRow(ctx, query, id).Scan(
		&loan.ID,
		&loan.BookID,
		&loan.MemberID,
		&loan.LoanDate,
		&loan.DueDate,
		&loan.Returned,
		&loan.ReturnedAt,
		&loan.OverdueNotifiedAt,
		&loan.Version,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewLoanNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get loan by id: %w", err)
	}

	return &loan, nil
}

func getReservation(ctx context.Context, q queryer, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var reservation model.Reservation
	err := q.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.BookID,
		&reservation.MemberID,
		&reservation.ReservationDate,
		&reservation.Fulfilled,
		&reservation.FulfilledAt,
		&reservation.Version,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewReservationNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get reservation by id: %w", err)
	}

	return &reservation, nil
}

func scanLoans(rows pgx.Rows) ([]model.Loan, error) {
	loans := make([]model.Loan, 0)
	for rows.Next() {
		var loan model.Loan
		err := rows.Scan(
			&loan.ID,
			&loan.BookID,
			&loan.MemberID,
			&loan.LoanDate,
			&loan.DueDate,
			&loan.Returned,
			&loan.ReturnedAt,
			&loan.OverdueNotifiedAt,
			&loan.Version,
			&loan.CreatedAt,
			&loan.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", err)
	}
	return loans, nil
}

func scanReservations(rows pgx.Rows) ([]model.Reservation, error) {
	reservations := make([]model.Reservation, 0)
	for rows.Next() {
		var reservation model.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.BookID,
			&reservation.MemberID,
			&reservation.ReservationDate,
			&reservation.Fulfilled,
			&reservation.FulfilledAt,
			&reservation.Version,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation rows: %w", err)
	}
	return reservations, nil
}
