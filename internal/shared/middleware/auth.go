package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/shared/access"
	"library-backend/internal/shared/response"
	"library-backend/pkg/jwt"
)

// CallerKey is the gin context key carrying the verified access.Caller.
const CallerKey = "caller"

// Auth verifies the identity token supplied by the external identity
// provider and attaches the resulting caller to the request context.
// The backend trusts the (callerId, roles, memberId) triple after signature
// verification; it performs no credential checks of its own.
func Auth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := manager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "invalid user id in token")
			c.Abort()
			return
		}

		caller := access.Caller{UserID: userID}
		for _, r := range claims.Roles {
			caller.Roles = append(caller.Roles, access.Role(r))
		}
		if claims.MemberID != "" {
			memberID, err := uuid.Parse(claims.MemberID)
			if err != nil {
				response.Unauthorized(c, "invalid member id in token")
				c.Abort()
				return
			}
			caller.MemberID = &memberID
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// CallerFrom extracts the verified caller set by Auth.
func CallerFrom(c *gin.Context) (access.Caller, bool) {
	v, exists := c.Get(CallerKey)
	if !exists {
		return access.Caller{}, false
	}
	caller, ok := v.(access.Caller)
	return caller, ok
}
