package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilist-dev/unilist/internal/auth"
	"github.com/unilist-dev/unilist/internal/gateway"
)

// LoginRequest represents a login request from the dashboard
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// login proxies the credentials to the platform backend. On success the
// backend's session cookie is wrapped into the gateway's own signed session
// cookie; credentials are never stored here.
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := s.backendClient()

	user, err := client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var invalid *gateway.InvalidCredentialsError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": invalid.Message})
			return
		}
		var netErr *gateway.NetworkError
		if errors.As(err, &netErr) {
			s.logger.Warn().Err(err).Msg("Backend unreachable during login")
			c.JSON(http.StatusBadGateway, gin.H{"error": "request failed"})
			return
		}
		s.logger.Error().Err(err).Msg("Unexpected login failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	upstream := gateway.SerializeCookies(client.Cookies())
	token, err := auth.IssueSessionToken(user, upstream)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.SetCookie(auth.SessionCookieName, token, int(auth.SessionTTL.Seconds()), "/", "", s.config.Server.SecureCookies, true)

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// logout ends the backend session best-effort and always clears the gateway
// cookie. The client ends up logged out no matter what the backend said.
func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookieName); err == nil && token != "" {
		if claims, err := auth.ParseSessionToken(token); err == nil && claims.UpstreamCookie != "" {
			client := s.backendClient()
			client.SetCookies(gateway.ParseCookieHeader(claims.UpstreamCookie))
			if err := client.Logout(c.Request.Context()); err != nil {
				s.logger.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
			}
		}
	}

	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", s.config.Server.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// getCurrentUser re-validates the session against the backend using the
// wrapped upstream cookie. A stale upstream session clears the gateway cookie.
func (s *Server) getCurrentUser(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client := s.backendClient()
	client.SetCookies(gateway.ParseCookieHeader(claims.UpstreamCookie))

	user, err := client.FetchIdentity(c.Request.Context())
	if err != nil {
		// upstream session expired or revoked
		c.SetCookie(auth.SessionCookieName, "", -1, "/", "", s.config.Server.SecureCookies, true)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, user)
}
