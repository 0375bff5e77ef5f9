package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unilist-dev/unilist/internal/identity"
)

// SessionCookieName is the gateway's own session cookie on the dashboard domain
const SessionCookieName = "unilist_session"

// SessionTTL bounds how long a minted session token stays valid before the
// middleware re-checks identity upstream
const SessionTTL = 12 * time.Hour

var sessionSecret []byte

// SessionClaims carries the authenticated user plus the backend session
// cookie, so the gateway can talk to the backend on the user's behalf without
// a server-side session store.
type SessionClaims struct {
	UserID         string `json:"user_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	UpstreamCookie string `json:"upstream_cookie"` // name=value of the backend session cookie
	jwt.RegisteredClaims
}

// User reconstructs the identity held in the claims
func (c *SessionClaims) User() *identity.User {
	return &identity.User{
		ID:        c.UserID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Role:      identity.Role(c.Role),
	}
}

// InitializeSessionSecret sets the token signing key
func InitializeSessionSecret(secret string) {
	sessionSecret = []byte(secret)
}

// IssueSessionToken mints a session token for a freshly authenticated user
func IssueSessionToken(user *identity.User, upstreamCookie string) (string, error) {
	if len(sessionSecret) == 0 {
		return "", fmt.Errorf("session secret not initialized")
	}

	now := time.Now()
	claims := SessionClaims{
		UserID:         user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           string(user.Role),
		UpstreamCookie: upstreamCookie,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sessionSecret)
}

// ParseSessionToken validates a session token and returns the claims
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	if len(sessionSecret) == 0 {
		return nil, fmt.Errorf("session secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sessionSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
