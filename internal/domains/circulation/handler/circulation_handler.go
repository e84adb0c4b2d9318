package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/circulation/model"
	"library-backend/internal/domains/circulation/service"
	memberModel "library-backend/internal/domains/member/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new circulation handler.
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *Handler) CreateLoan(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	var req model.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	loan, err := h.service.CreateLoan(c.Request.Context(), caller, req)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, loan)
}

// GetLoanByID handles GET /api/v1/loans/:id
func (h *Handler) GetLoanByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan id format")
		return
	}

	loan, err := h.service.GetLoanByID(c.Request.Context(), id)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// ListLoans handles GET /api/v1/loans
func (h *Handler) ListLoans(c *gin.Context) {
	loans, err := h.service.ListLoans(c.Request.Context())
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, loans, &response.Meta{Total: len(loans)})
}

// ReturnLoan handles POST /api/v1/loans/:id/return
func (h *Handler) ReturnLoan(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan id format")
		return
	}

	result, err := h.service.ReturnLoan(c.Request.Context(), caller, id)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// CreateReservation handles POST /api/v1/reservations
func (h *Handler) CreateReservation(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	var req model.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	reservation, err := h.service.CreateReservation(c.Request.Context(), caller, req)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, reservation)
}

// GetReservationByID handles GET /api/v1/reservations/:id
func (h *Handler) GetReservationByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation id format")
		return
	}

	reservation, err := h.service.GetReservationByID(c.Request.Context(), id)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, reservation)
}

// ListReservations handles GET /api/v1/reservations
func (h *Handler) ListReservations(c *gin.Context) {
	reservations, err := h.service.ListReservations(c.Request.Context())
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reservations, &response.Meta{Total: len(reservations)})
}

// FulfillReservation handles POST /api/v1/reservations/:id/fulfill
func (h *Handler) FulfillReservation(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation id format")
		return
	}

	result, err := h.service.FulfillReservation(c.Request.Context(), caller, id)
	if err != nil {
		writeCirculationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func writeCirculationError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validationErrs)
	case errors.Is(err, access.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case model.IsNotFoundError(err),
		errors.Is(err, bookModel.ErrBookNotFound),
		errors.Is(err, memberModel.ErrMemberNotFound):
		response.NotFound(c, err.Error())
	case model.IsInvalidStateError(err):
		response.UnprocessableEntity(c, err.Error())
	case model.IsConflictError(err):
		response.Conflict(c, err.Error())
	case model.IsUnavailableError(err):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalServerError(c, "failed to process circulation request")
	}
}
