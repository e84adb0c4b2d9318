package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	circulationModel "library-backend/internal/domains/circulation/model"
)

type stubReportService struct {
	views []circulationModel.LoanView
	err   error
}

func (s *stubReportService) BooksOnLoan(ctx context.Context) ([]circulationModel.LoanView, error) {
	return s.views, s.err
}

func (s *stubReportService) OverdueBooks(ctx context.Context) ([]circulationModel.LoanView, error) {
	return s.views, s.err
}

func newReportRouter(svc *stubReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(svc)
	router.GET("/reports/books-on-loan", h.BooksOnLoan)
	router.GET("/reports/overdue-books", h.OverdueBooks)
	return router
}

func getReport(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestReportEndpoints_StatusMapping(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	views := []circulationModel.LoanView{{
		LoanID:    uuid.New(),
		BookID:    uuid.New(),
		BookTitle: "SICP",
		MemberID:  uuid.New(),
		DueDate:   now.AddDate(0, 0, -1),
		Overdue:   true,
	}}

	tests := []struct {
		name       string
		svc        *stubReportService
		wantStatus int
	}{
		{"report built", &stubReportService{views: views}, http.StatusOK},
		{"empty report", &stubReportService{}, http.StatusOK},
		{"store unavailable", &stubReportService{err: fmt.Errorf("%w: dial tcp refused", circulationModel.ErrStoreUnavailable)}, http.StatusServiceUnavailable},
		{"unexpected failure", &stubReportService{err: errors.New("scan mismatch")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newReportRouter(tt.svc)
			for _, path := range []string{"/reports/books-on-loan", "/reports/overdue-books"} {
				w := getReport(router, path)
				assert.Equal(t, tt.wantStatus, w.Code, path)
			}
		})
	}
}
