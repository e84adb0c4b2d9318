package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	circulationModel "library-backend/internal/domains/circulation/model"
	"library-backend/internal/domains/report/service"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new report handler.
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// BooksOnLoan handles GET /api/v1/reports/books-on-loan
func (h *Handler) BooksOnLoan(c *gin.Context) {
	views, err := h.service.BooksOnLoan(c.Request.Context())
	if err != nil {
		writeReportError(c, err, "failed to build books-on-loan report")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, views, &response.Meta{Total: len(views)})
}

// OverdueBooks handles GET /api/v1/reports/overdue-books
func (h *Handler) OverdueBooks(c *gin.Context) {
	views, err := h.service.OverdueBooks(c.Request.Context())
	if err != nil {
		writeReportError(c, err, "failed to build overdue report")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, views, &response.Meta{Total: len(views)})
}

func writeReportError(c *gin.Context, err error, message string) {
	if circulationModel.IsUnavailableError(err) {
		response.ServiceUnavailable(c, "store unavailable, try again later")
		return
	}
	response.InternalServerError(c, message)
}
