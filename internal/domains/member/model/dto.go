package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type CreateMemberRequest struct {
	Name         string     `json:"name"`
	MembershipID string     `json:"membership_id"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
}

// Validate validates CreateMemberRequest.
func (req CreateMemberRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.MembershipID, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Length(3, 32)),
	)
}

type UpdateMemberRequest struct {
	Name         *string    `json:"name,omitempty"`
	MembershipID *string    `json:"membership_id,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
}

// Validate validates UpdateMemberRequest.
func (req UpdateMemberRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Length(1, 255)),
		validation.Field(&req.MembershipID, validation.Length(1, 64)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Phone, validation.Length(3, 32)),
	)
}

type MemberResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	MembershipID string     `json:"membership_id"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToResponse converts the entity to its response DTO.
func (m Member) ToResponse() MemberResponse {
	return MemberResponse{
		ID:           m.ID,
		Name:         m.Name,
		MembershipID: m.MembershipID,
		Email:        m.Email,
		Phone:        m.Phone,
		UserID:       m.UserID,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ToResponseList converts a slice of entities to response DTOs.
func ToResponseList(members []Member) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, m.ToResponse())
	}
	return responses
}
