package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/shared/access"
	"library-backend/pkg/jwt"
)

func newAuthRouter(manager *jwt.Manager, captured *access.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", Auth(manager), func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		*captured = caller
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuth_ValidTokenAttachesCaller(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	userID := uuid.New()
	memberID := uuid.New()
	token, err := manager.GenerateToken(userID.String(), memberID.String(), []string{string(access.RoleMember)}, time.Hour)
	require.NoError(t, err)

	var caller access.Caller
	router := newAuthRouter(manager, &caller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, caller.UserID)
	require.NotNil(t, caller.MemberID)
	assert.Equal(t, memberID, *caller.MemberID)
	assert.Equal(t, []access.Role{access.RoleMember}, caller.Roles)
}

func TestAuth_StaffTokenCarriesNoMemberLink(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	token, err := manager.GenerateToken(uuid.NewString(), "", []string{string(access.RoleLibrarian)}, time.Hour)
	require.NoError(t, err)

	var caller access.Caller
	router := newAuthRouter(manager, &caller)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, caller.MemberID)
	assert.Equal(t, []access.Role{access.RoleLibrarian}, caller.Roles)
}

func TestAuth_Rejections(t *testing.T) {
	manager := jwt.NewManager("test-secret")

	expired, err := manager.GenerateToken(uuid.NewString(), "", []string{string(access.RoleLibrarian)}, -time.Hour)
	require.NoError(t, err)
	foreign, err := jwt.NewManager("another-secret").GenerateToken(uuid.NewString(), "", []string{string(access.RoleLibrarian)}, time.Hour)
	require.NoError(t, err)
	badUserID, err := manager.GenerateToken("not-a-uuid", "", []string{string(access.RoleLibrarian)}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + foreign},
		{"malformed user id claim", "Bearer " + badUserID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var caller access.Caller
			router := newAuthRouter(manager, &caller)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, uuid.Nil, caller.UserID)
		})
	}
}
