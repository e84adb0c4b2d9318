package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new book handler.
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// CreateBook handles POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), caller, req)
	if err != nil {
		writeBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book)
}

// GetBookByID handles GET /api/v1/books/:id
func (h *Handler) GetBookByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id format")
		return
	}

	book, err := h.service.GetBookByID(c.Request.Context(), id)
	if err != nil {
		writeBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// ListBooks handles GET /api/v1/books
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if err != nil {
		writeBookError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{Total: len(books)})
}

// UpdateBook handles PUT /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id format")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), caller, id, req)
	if err != nil {
		writeBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book id format")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), caller, id); err != nil {
		writeBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func writeBookError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validationErrs)
	case errors.Is(err, access.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case model.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case model.IsReferencedError(err):
		response.Conflict(c, "referenced")
	case model.IsOptimisticLockError(err):
		response.Conflict(c, err.Error())
	default:
		response.InternalServerError(c, "failed to process book request")
	}
}
