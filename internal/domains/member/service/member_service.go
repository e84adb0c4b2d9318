package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/repository"
	"library-backend/internal/shared/access"
	"library-backend/pkg/clock"
)

// ServiceInterface is the catalog business logic for members. Pure CRUD
// pass-through to the store, no state-machine involvement.
type ServiceInterface interface {
	CreateMember(ctx context.Context, caller access.Caller, req model.CreateMemberRequest) (*model.MemberResponse, error)
	GetMemberByID(ctx context.Context, id uuid.UUID) (*model.MemberResponse, error)
	ListMembers(ctx context.Context) ([]model.MemberResponse, error)
	UpdateMember(ctx context.Context, caller access.Caller, id uuid.UUID, req model.UpdateMemberRequest) (*model.MemberResponse, error)
	DeleteMember(ctx context.Context, caller access.Caller, id uuid.UUID) error
}

type MemberService struct {
	repo repository.RepositoryInterface
	clk  clock.Clock
}

// NewService creates a new member service.
func NewService(repo repository.RepositoryInterface, clk clock.Clock) ServiceInterface {
	return &MemberService{
		repo: repo,
		clk:  clk,
	}
}

func (s *MemberService) CreateMember(ctx context.Context, caller access.Caller, req model.CreateMemberRequest) (*model.MemberResponse, error) {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	member := model.Member{
		ID:           uuid.New(),
		Name:         req.Name,
		MembershipID: req.MembershipID,
		Email:        req.Email,
		Phone:        req.Phone,
		UserID:       req.UserID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, &member); err != nil {
		return nil, err
	}

	response := member.ToResponse()
	return &response, nil
}

func (s *MemberService) GetMemberByID(ctx context.Context, id uuid.UUID) (*model.MemberResponse, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := member.ToResponse()
	return &response, nil
}

func (s *MemberService) ListMembers(ctx context.Context) ([]model.MemberResponse, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return model.ToResponseList(members), nil
}

func (s *MemberService) UpdateMember(ctx context.Context, caller access.Caller, id uuid.UUID, req model.UpdateMemberRequest) (*model.MemberResponse, error) {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.MembershipID != nil {
		updated.MembershipID = *req.MembershipID
	}
	if req.Email != nil {
		updated.Email = *req.Email
	}
	if req.Phone != nil {
		updated.Phone = req.Phone
	}
	if req.UserID != nil {
		updated.UserID = req.UserID
	}
	updated.UpdatedAt = s.clk.Now()

	if err := s.repo.Update(ctx, &updated, current.Version); err != nil {
		return nil, err
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *MemberService) DeleteMember(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
