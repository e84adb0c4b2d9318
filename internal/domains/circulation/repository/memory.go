package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	memberModel "library-backend/internal/domains/member/model"
)

// MemoryRepository is a mutex-guarded in-memory implementation of
// RepositoryInterface. Transactions stage their writes on cloned maps and
// commit them only when the callback succeeds, so rollbacks behave like the
// PostgreSQL implementation.
type MemoryRepository struct {
	mu           sync.Mutex
	books        map[uuid.UUID]bookModel.Book
	members      map[uuid.UUID]memberModel.Member
	loans        map[uuid.UUID]model.Loan
	reservations map[uuid.UUID]model.Reservation

	// failWrites forces the next N version-guarded writes to report a
	// stale version, to exercise the engine's retry path.
	failWrites int
}

// NewMemoryRepository creates an empty in-memory circulation store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		books:        make(map[uuid.UUID]bookModel.Book),
		members:      make(map[uuid.UUID]memberModel.Member),
		loans:        make(map[uuid.UUID]model.Loan),
		reservations: make(map[uuid.UUID]model.Reservation),
	}
}

// SeedBook inserts or replaces a book.
func (m *MemoryRepository) SeedBook(book bookModel.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
}

// SeedMember inserts or replaces a member.
func (m *MemoryRepository) SeedMember(member memberModel.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
}

// SeedLoan inserts or replaces a loan.
func (m *MemoryRepository) SeedLoan(loan model.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
}

// SeedReservation inserts or replaces a reservation.
func (m *MemoryRepository) SeedReservation(reservation model.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
}

// Book returns a copy of the stored book.
func (m *MemoryRepository) Book(id uuid.UUID) (bookModel.Book, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	return book, ok
}

// Loans returns a copy of every stored loan, in no particular order.
func (m *MemoryRepository) Loans() []model.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	loans := make([]model.Loan, 0, len(m.loans))
	for _, loan := range m.loans {
		loans = append(loans, loan)
	}
	return loans
}

// Reservations returns a copy of every stored reservation.
func (m *MemoryRepository) Reservations() []model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservations := make([]model.Reservation, 0, len(m.reservations))
	for _, reservation := range m.reservations {
		reservations = append(reservations, reservation)
	}
	return reservations
}

// FailNextWrites makes the next n version-guarded writes fail with
// ErrOptimisticLockFailed.
func (m *MemoryRepository) FailNextWrites(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = n
}

func (m *MemoryRepository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		repo:         m,
		books:        cloneMap(m.books),
		loans:        cloneMap(m.loans),
		reservations: cloneMap(m.reservations),
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.books = tx.books
	m.loans = tx.loans
	m.reservations = tx.reservations
	return nil
}

func (m *MemoryRepository) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.loans[id]
	if !ok {
		return nil, model.NewLoanNotFoundError(id)
	}
	return &loan, nil
}

func (m *MemoryRepository) ListLoans(ctx context.Context) ([]model.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loans := make([]model.Loan, 0, len(m.loans))
	for _, loan := range m.loans {
		loans = append(loans, loan)
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].LoanDate.Equal(loans[j].LoanDate) {
			return loans[i].LoanDate.After(loans[j].LoanDate)
		}
		return loans[i].ID.String() < loans[j].ID.String()
	})
	return loans, nil
}

func (m *MemoryRepository) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reservation, ok := m.reservations[id]
	if !ok {
		return nil, model.NewReservationNotFoundError(id)
	}
	return &reservation, nil
}

func (m *MemoryRepository) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reservations := make([]model.Reservation, 0, len(m.reservations))
	for _, reservation := range m.reservations {
		reservations = append(reservations, reservation)
	}
	sortReservations(reservations)
	return reservations, nil
}

func (m *MemoryRepository) ListOpenLoanViews(ctx context.Context) ([]model.LoanView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]model.LoanView, 0)
	for _, loan := range m.loans {
		if loan.Returned {
			continue
		}
		book := m.books[loan.BookID]
		member := m.members[loan.MemberID]
		views = append(views, model.LoanView{
			LoanID:       loan.ID,
			BookID:       loan.BookID,
			BookTitle:    book.Title,
			MemberID:     loan.MemberID,
			MemberName:   member.Name,
			MembershipID: member.MembershipID,
			LoanDate:     loan.LoanDate,
			DueDate:      loan.DueDate,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].DueDate.Equal(views[j].DueDate) {
			return views[i].DueDate.Before(views[j].DueDate)
		}
		return views[i].LoanID.String() < views[j].LoanID.String()
	})
	return views, nil
}

func (m *MemoryRepository) ListOverdueUnnotified(ctx context.Context, asOf time.Time) ([]model.OverdueContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contacts := make([]model.OverdueContact, 0)
	for _, loan := range m.loans {
		if loan.Returned || !loan.DueDate.Before(asOf) || loan.OverdueNotifiedAt != nil {
			continue
		}
		book := m.books[loan.BookID]
		member := m.members[loan.MemberID]
		contacts = append(contacts, model.OverdueContact{
			LoanID:      loan.ID,
			BookTitle:   book.Title,
			MemberName:  member.Name,
			MemberEmail: member.Email,
			DueDate:     loan.DueDate,
		})
	}
	sort.Slice(contacts, func(i, j int) bool {
		if !contacts[i].DueDate.Equal(contacts[j].DueDate) {
			return contacts[i].DueDate.Before(contacts[j].DueDate)
		}
		return contacts[i].LoanID.String() < contacts[j].LoanID.String()
	})
	return contacts, nil
}

func (m *MemoryRepository) MarkOverdueNotified(ctx context.Context, loanID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.loans[loanID]
	if !ok || loan.OverdueNotifiedAt != nil {
		return nil
	}
	stamp := at
	loan.OverdueNotifiedAt = &stamp
	loan.UpdatedAt = at
	m.loans[loanID] = loan
	return nil
}

// memTx stages writes on cloned maps; the repository mutex is held for the
// whole transaction, so reads inside it are consistent.
type memTx struct {
	repo         *MemoryRepository
	books        map[uuid.UUID]bookModel.Book
	loans        map[uuid.UUID]model.Loan
	reservations map[uuid.UUID]model.Reservation
}

func (t *memTx) injectFailure() bool {
	if t.repo.failWrites > 0 {
		t.repo.failWrites--
		return true
	}
	return false
}

func (t *memTx) GetBook(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
	book, ok := t.books[id]
	if !ok {
		return nil, bookModel.NewBookNotFoundError(id)
	}
	return &book, nil
}

func (t *memTx) SetBookStatus(ctx context.Context, id uuid.UUID, status bookModel.Status, at time.Time, expectedVersion int) error {
	if t.injectFailure() {
		return model.ErrOptimisticLockFailed
	}
	book, ok := t.books[id]
	if !ok || book.Version != expectedVersion {
		return model.ErrOptimisticLockFailed
	}
	book.Status = status
	book.Version++
	book.UpdatedAt = at
	t.books[id] = book
	return nil
}

func (t *memTx) MemberExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := t.repo.members[id]
	return ok, nil
}

func (t *memTx) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	loan, ok := t.loans[id]
	if !ok {
		return nil, model.NewLoanNotFoundError(id)
	}
	return &loan, nil
}

func (t *memTx) CreateLoan(ctx context.Context, loan *model.Loan) error {
	for _, existing := range t.loans {
		if existing.BookID == loan.BookID && !existing.Returned {
			// Mirrors the partial unique index on open loans.
			return model.ErrOptimisticLockFailed
		}
	}
	t.loans[loan.ID] = *loan
	return nil
}

func (t *memTx) MarkLoanReturned(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error {
	if t.injectFailure() {
		return model.ErrOptimisticLockFailed
	}
	loan, ok := t.loans[id]
	if !ok || loan.Version != expectedVersion || loan.Returned {
		return model.ErrOptimisticLockFailed
	}
	stamp := at
	loan.Returned = true
	loan.ReturnedAt = &stamp
	loan.Version++
	loan.UpdatedAt = at
	t.loans[id] = loan
	return nil
}

func (t *memTx) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	reservation, ok := t.reservations[id]
	if !ok {
		return nil, model.NewReservationNotFoundError(id)
	}
	return &reservation, nil
}

func (t *memTx) CreateReservation(ctx context.Context, reservation *model.Reservation) error {
	t.reservations[reservation.ID] = *reservation
	return nil
}

func (t *memTx) MarkReservationFulfilled(ctx context.Context, id uuid.UUID, at time.Time, expectedVersion int) error {
	if t.injectFailure() {
		return model.ErrOptimisticLockFailed
	}
	reservation, ok := t.reservations[id]
	if !ok || reservation.Version != expectedVersion || reservation.Fulfilled {
		return model.ErrOptimisticLockFailed
	}
	stamp := at
	reservation.Fulfilled = true
	reservation.FulfilledAt = &stamp
	reservation.Version++
	reservation.UpdatedAt = at
	t.reservations[id] = reservation
	return nil
}

func (t *memTx) OldestUnfulfilledReservation(ctx context.Context, bookID uuid.UUID) (*model.Reservation, error) {
	pending := make([]model.Reservation, 0)
	for _, reservation := range t.reservations {
		if reservation.BookID == bookID && !reservation.Fulfilled {
			pending = append(pending, reservation)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sortReservations(pending)
	head := pending[0]
	return &head, nil
}

func (t *memTx) HasUnfulfilledReservation(ctx context.Context, bookID, memberID uuid.UUID) (bool, error) {
	for _, reservation := range t.reservations {
		if reservation.BookID == bookID && reservation.MemberID == memberID && !reservation.Fulfilled {
			return true, nil
		}
	}
	return false, nil
}

func sortReservations(reservations []model.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if !reservations[i].ReservationDate.Equal(reservations[j].ReservationDate) {
			return reservations[i].ReservationDate.Before(reservations[j].ReservationDate)
		}
		if !reservations[i].CreatedAt.Equal(reservations[j].CreatedAt) {
			return reservations[i].CreatedAt.Before(reservations[j].CreatedAt)
		}
		return reservations[i].ID.String() < reservations[j].ID.String()
	})
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
