package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload attached to every request by the external
// identity provider. The backend trusts it after signature verification and
// performs no credential handling of its own.
type Claims struct {
	UserID   string   `json:"user_id"`
	MemberID string   `json:"member_id,omitempty"` // linked library member, if any
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager verifies identity tokens issued by the identity provider.
type Manager struct {
	secret string
}

func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// ValidateToken verifies the signature and parses the identity claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// GenerateToken issues a signed identity token. Used by local development
// seeding and tests; production tokens come from the identity provider.
func (m *Manager) GenerateToken(userID, memberID string, roles []string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   userID,
		MemberID: memberID,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}
