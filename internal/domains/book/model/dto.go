package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type CreateBookRequest struct {
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`
}

// Validate validates CreateBookRequest.
func (req CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.ISBN, validation.Length(1, 32)),
	)
}

// UpdateBookRequest updates catalog metadata only. There is deliberately no
// status field: availability is owned by the circulation engine.
type UpdateBookRequest struct {
	Title       *string    `json:"title,omitempty"`
	Author      *string    `json:"author,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`
}

// Validate validates UpdateBookRequest.
func (req UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Length(1, 500)),
		validation.Field(&req.Author, validation.Length(1, 255)),
		validation.Field(&req.ISBN, validation.Length(1, 32)),
	)
}

type BookResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	ISBN        *string    `json:"isbn,omitempty"`
	Status      Status     `json:"status"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToResponse converts the entity to its response DTO.
func (b Book) ToResponse() BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		PublishDate: b.PublishDate,
		ISBN:        b.ISBN,
		Status:      b.Status,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToResponseList converts a slice of entities to response DTOs.
func ToResponseList(books []Book) []BookResponse {
	responses := make([]BookResponse, 0, len(books))
	for _, b := range books {
		responses = append(responses, b.ToResponse())
	}
	return responses
}
