package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/shared/access"
	"library-backend/pkg/clock"
)

var memberNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubMemberRepo struct {
	members    map[uuid.UUID]model.Member
	referenced map[uuid.UUID]bool
}

func newStubMemberRepo() *stubMemberRepo {
	return &stubMemberRepo{
		members:    make(map[uuid.UUID]model.Member),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (r *stubMemberRepo) Create(ctx context.Context, member *model.Member) error {
	for _, m := range r.members {
		if m.MembershipID == member.MembershipID {
			return model.ErrMembershipIDTaken
		}
	}
	r.members[member.ID] = *member
	return nil
}

func (r *stubMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, model.NewMemberNotFoundError(id)
	}
	return &member, nil
}

func (r *stubMemberRepo) List(ctx context.Context) ([]model.Member, error) {
	members := make([]model.Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	return members, nil
}

func (r *stubMemberRepo) Update(ctx context.Context, member *model.Member, expectedVersion int) error {
	current, ok := r.members[member.ID]
	if !ok || current.Version != expectedVersion {
		return model.ErrOptimisticLockFailed
	}
	updated := *member
	updated.Version = current.Version + 1
	r.members[member.ID] = updated
	return nil
}

func (r *stubMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.members[id]; !ok {
		return model.NewMemberNotFoundError(id)
	}
	if r.referenced[id] {
		return model.ErrMemberReferenced
	}
	delete(r.members, id)
	return nil
}

func newMemberService(t *testing.T) (*stubMemberRepo, ServiceInterface) {
	t.Helper()
	repo := newStubMemberRepo()
	return repo, NewService(repo, clock.NewFixed(memberNow))
}

func staff() access.Caller {
	return access.Caller{UserID: uuid.New(), Roles: []access.Role{access.RoleAdmin}}
}

func TestCreateMember(t *testing.T) {
	repo, svc := newMemberService(t)

	member, err := svc.CreateMember(context.Background(), staff(), model.CreateMemberRequest{
		Name:         "Ada Lovelace",
		MembershipID: "M-0001",
		Email:        "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", member.Name)
	assert.Equal(t, 1, member.Version)
	assert.Len(t, repo.members, 1)
}

func TestCreateMember_DuplicateMembershipID(t *testing.T) {
	_, svc := newMemberService(t)

	_, err := svc.CreateMember(context.Background(), staff(), model.CreateMemberRequest{
		Name: "Ada", MembershipID: "M-0001", Email: "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.CreateMember(context.Background(), staff(), model.CreateMemberRequest{
		Name: "Grace", MembershipID: "M-0001", Email: "grace@example.com",
	})
	assert.ErrorIs(t, err, model.ErrMembershipIDTaken)
}

func TestCreateMember_InvalidEmail(t *testing.T) {
	repo, svc := newMemberService(t)

	_, err := svc.CreateMember(context.Background(), staff(), model.CreateMemberRequest{
		Name: "Ada", MembershipID: "M-0001", Email: "not-an-email",
	})
	assert.Error(t, err)
	assert.Empty(t, repo.members)
}

func TestCreateMember_PermissionDenied(t *testing.T) {
	repo, svc := newMemberService(t)
	memberID := uuid.New()
	patron := access.Caller{UserID: uuid.New(), MemberID: &memberID, Roles: []access.Role{access.RoleMember}}

	_, err := svc.CreateMember(context.Background(), patron, model.CreateMemberRequest{
		Name: "Ada", MembershipID: "M-0001", Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, access.ErrPermissionDenied)
	assert.Empty(t, repo.members)
}

func TestUpdateMember(t *testing.T) {
	repo, svc := newMemberService(t)
	member := model.Member{ID: uuid.New(), Name: "Old Name", MembershipID: "M-0001", Email: "old@example.com", Version: 2}
	repo.members[member.ID] = member

	name := "New Name"
	updated, err := svc.UpdateMember(context.Background(), staff(), member.ID, model.UpdateMemberRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old@example.com", updated.Email)
	assert.Equal(t, 3, repo.members[member.ID].Version)
}

func TestDeleteMember_ReferencedRejected(t *testing.T) {
	repo, svc := newMemberService(t)
	member := model.Member{ID: uuid.New(), Name: "Kept", MembershipID: "M-0001", Email: "kept@example.com", Version: 1}
	repo.members[member.ID] = member
	repo.referenced[member.ID] = true

	err := svc.DeleteMember(context.Background(), staff(), member.ID)
	assert.ErrorIs(t, err, model.ErrMemberReferenced)
	assert.Len(t, repo.members, 1)
}

func TestGetAndListMembers(t *testing.T) {
	repo, svc := newMemberService(t)
	member := model.Member{ID: uuid.New(), Name: "Listed", MembershipID: "M-0001", Email: "l@example.com", Version: 1}
	repo.members[member.ID] = member

	got, err := svc.GetMemberByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)

	list, err := svc.ListMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetMemberByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrMemberNotFound)
}
