package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type CreateLoanRequest struct {
	BookID   uuid.UUID  `json:"book_id"`
	MemberID uuid.UUID  `json:"member_id"`
	LoanDate *time.Time `json:"loan_date,omitempty"` // defaults to now
	DueDate  *time.Time `json:"due_date,omitempty"`  // defaults to loan date + policy period
}

// requiredUUID rejects the zero uuid, which ozzo's Required rule cannot
// catch on a [16]byte array.
func requiredUUID(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
}

// Validate validates CreateLoanRequest.
func (req CreateLoanRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookID, validation.By(requiredUUID)),
		validation.Field(&req.MemberID, validation.By(requiredUUID)),
		validation.Field(&req.DueDate, validation.By(func(interface{}) error {
			if req.DueDate == nil || req.LoanDate == nil {
				return nil
			}
			if !req.DueDate.After(*req.LoanDate) {
				return errors.New("must be after loan_date")
			}
			return nil
		})),
	)
}

type CreateReservationRequest struct {
	BookID   uuid.UUID `json:"book_id"`
	MemberID uuid.UUID `json:"member_id"`
}

// Validate validates CreateReservationRequest.
func (req CreateReservationRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookID, validation.By(requiredUUID)),
		validation.Field(&req.MemberID, validation.By(requiredUUID)),
	)
}

type LoanResponse struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	Returned   bool       `json:"returned"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ToResponse converts the loan entity to its response DTO.
func (l Loan) ToResponse() LoanResponse {
	return LoanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		MemberID:   l.MemberID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		Returned:   l.Returned,
		ReturnedAt: l.ReturnedAt,
		Version:    l.Version,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// ToLoanResponseList converts loan entities to response DTOs.
func ToLoanResponseList(loans []Loan) []LoanResponse {
	responses := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		responses = append(responses, l.ToResponse())
	}
	return responses
}

type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	BookID          uuid.UUID  `json:"book_id"`
	MemberID        uuid.UUID  `json:"member_id"`
	ReservationDate time.Time  `json:"reservation_date"`
	Fulfilled       bool       `json:"fulfilled"`
	FulfilledAt     *time.Time `json:"fulfilled_at,omitempty"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToResponse converts the reservation entity to its response DTO.
func (r Reservation) ToResponse() ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		BookID:          r.BookID,
		MemberID:        r.MemberID,
		ReservationDate: r.ReservationDate,
		Fulfilled:       r.Fulfilled,
		FulfilledAt:     r.FulfilledAt,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// ToReservationResponseList converts reservation entities to response DTOs.
func ToReservationResponseList(reservations []Reservation) []ReservationResponse {
	responses := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		responses = append(responses, r.ToResponse())
	}
	return responses
}

// ReturnLoanResponse reports the closed loan, plus the reservation that was
// fulfilled and the successor loan created in the same transaction, if any.
type ReturnLoanResponse struct {
	Loan                 LoanResponse         `json:"loan"`
	FulfilledReservation *ReservationResponse `json:"fulfilled_reservation,omitempty"`
	SuccessorLoan        *LoanResponse        `json:"successor_loan,omitempty"`
}

// FulfillReservationResponse reports the fulfilled reservation and the loan
// created for its member.
type FulfillReservationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Loan        LoanResponse        `json:"loan"`
}
