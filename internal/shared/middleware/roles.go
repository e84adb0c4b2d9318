package middleware

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
)

// RequireStaff rejects callers without the admin or librarian role.
// These checks are advisory routing guards only; the services consult the
// access gate again before every mutation, which is the authority.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok || !caller.IsStaff() {
			response.Forbidden(c, "admin or librarian role required")
			c.Abort()
			return
		}
		c.Next()
	}
}
