package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
)

// RepositoryInterface is the entity-store contract for members.
type RepositoryInterface interface {
	// Create inserts a new member. Returns ErrMembershipIDTaken when the
	// membership id collides.
	Create(ctx context.Context, member *model.Member) error

	// GetByID returns the member or ErrMemberNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error)

	// List returns all members ordered by name.
	List(ctx context.Context) ([]model.Member, error)

	// Update writes member fields, guarded by expectedVersion.
	// Returns ErrOptimisticLockFailed on a stale write.
	Update(ctx context.Context, member *model.Member, expectedVersion int) error

	// Delete removes a member. Returns ErrMemberReferenced while any open
	// loan or unfulfilled reservation still points at them.
	Delete(ctx context.Context, id uuid.UUID) error
}
