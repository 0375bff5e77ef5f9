package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/auth"
	"github.com/unilist-dev/unilist/internal/gate"
	"github.com/unilist-dev/unilist/internal/session"
)

const (
	snapshotKey = "session_snapshot"
	claimsKey   = "session_claims"
)

// GetSessionSnapshot returns the session view built by SessionMiddleware.
// Without the middleware it reports an anonymous session.
func GetSessionSnapshot(c *gin.Context) session.Snapshot {
	if v, exists := c.Get(snapshotKey); exists {
		if snap, ok := v.(session.Snapshot); ok {
			return snap
		}
	}
	return session.Snapshot{}
}

// GetSessionClaims returns the parsed session token claims, if any
func GetSessionClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok
}

// SessionMiddleware resolves the request's session from the gateway cookie.
// A missing or invalid token is not an error: the request proceeds with an
// anonymous snapshot and the gate decides what that means per route.
func SessionMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := session.Snapshot{}

		if token, err := c.Cookie(auth.SessionCookieName); err == nil && token != "" {
			claims, err := auth.ParseSessionToken(token)
			if err != nil {
				log.Debug().Err(err).Msg("Rejecting invalid session token")
			} else {
				user := claims.User()
				snap = session.Snapshot{User: user, IsAdmin: user.IsAdmin()}
				c.Set(claimsKey, claims)
			}
		}

		c.Set(snapshotKey, snap)
		c.Next()
	}
}

// AdminGateMiddleware applies the session gate to admin routes. The redirect
// targets mirror the dashboard's login and home views; the SPA follows them
// client side.
func AdminGateMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := GetSessionSnapshot(c)

		switch gate.Evaluate(snap) {
		case gate.StateUnauthenticated:
			log.Debug().Str("path", c.Request.URL.Path).Msg("Unauthenticated admin request")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Authentication required",
				"redirect": gate.DefaultLoginPath,
			})
			c.Abort()
		case gate.StateUnauthorized:
			log.Debug().
				Str("path", c.Request.URL.Path).
				Str("user_id", snap.User.ID).
				Msg("Forbidden admin request")
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "Admin access required",
				"redirect": gate.DefaultHomePath,
			})
			c.Abort()
		default:
			c.Next()
		}
	}
}
