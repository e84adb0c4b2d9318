package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"library-backend/internal/domains/member/model"
	"library-backend/internal/domains/member/service"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new member handler.
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// CreateMember handles POST /api/v1/members
func (h *Handler) CreateMember(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	var req model.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	member, err := h.service.CreateMember(c.Request.Context(), caller, req)
	if err != nil {
		writeMemberError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, member)
}

// GetMemberByID handles GET /api/v1/members/:id
func (h *Handler) GetMemberByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id format")
		return
	}

	member, err := h.service.GetMemberByID(c.Request.Context(), id)
	if err != nil {
		writeMemberError(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// ListMembers handles GET /api/v1/members
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context())
	if err != nil {
		writeMemberError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, members, &response.Meta{Total: len(members)})
}

// UpdateMember handles PUT /api/v1/members/:id
func (h *Handler) UpdateMember(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id format")
		return
	}

	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request payload", err.Error())
		return
	}

	member, err := h.service.UpdateMember(c.Request.Context(), caller, id, req)
	if err != nil {
		writeMemberError(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DeleteMember handles DELETE /api/v1/members/:id
func (h *Handler) DeleteMember(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id format")
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), caller, id); err != nil {
		writeMemberError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func writeMemberError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validationErrs)
	case errors.Is(err, access.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case model.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrMembershipIDTaken):
		response.Conflict(c, err.Error())
	case model.IsReferencedError(err):
		response.Conflict(c, "referenced")
	case model.IsOptimisticLockError(err):
		response.Conflict(c, err.Error())
	default:
		response.InternalServerError(c, "failed to process member request")
	}
}
