package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilist-dev/unilist/internal/auth"
	"github.com/unilist-dev/unilist/internal/config"
	"github.com/unilist-dev/unilist/internal/content"
	"github.com/unilist-dev/unilist/internal/identity"
)

// newTestBackend simulates the platform backend API
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
			return
		}
		role := identity.RoleAdmin
		if strings.HasPrefix(req.Email, "student") {
			role = identity.RoleStudent
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "backend-sess", Path: "/"})
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": identity.User{ID: "u1", Email: req.Email, Role: role},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "backend-sess" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(identity.User{ID: "u1", Email: "admin@example.com", Role: identity.RoleAdmin})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/universities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "uni-1", "name": "EFREI"}]}`))
	})

	return httptest.NewServer(mux)
}

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		API:             config.APIConfig{BaseURL: backendURL},
		Server:          config.ServerConfig{ListenAddr: ":0", SecureCookies: true},
		Database:        config.DatabaseConfig{URL: filepath.Join(dir, "test.sqlite")},
		Redis:           config.RedisConfig{Address: "localhost:6379"},
		Logging:         config.LoggingConfig{Level: "error", Format: "json"},
		RefreshPlanPath: filepath.Join(dir, "refresh.yaml"),
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	return srv
}

func sessionCookieFor(t *testing.T, role identity.Role) *http.Cookie {
	t.Helper()
	token, err := auth.IssueSessionToken(&identity.User{ID: "u1", Email: "x@example.com", Role: role}, "session=backend-sess")
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func TestAdminRoute_Unauthenticated(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/snapshots", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)
}

func TestAdminRoute_StudentForbidden(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/snapshots", nil)
	req.AddCookie(sessionCookieFor(t, identity.RoleStudent))
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/"`)
}

func TestAdminRoute_AdminAllowed(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/snapshots", nil)
	req.AddCookie(sessionCookieFor(t, identity.RoleAdmin))
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoute_EditorAllowed(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.AddCookie(sessionCookieFor(t, identity.RoleEditor))
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_SetsGatewaySessionCookie(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "secret"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var gatewayCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			gatewayCookie = c
		}
	}
	require.NotNil(t, gatewayCookie, "expected gateway session cookie")
	assert.True(t, gatewayCookie.Secure, "session cookie must carry Secure when configured")
	assert.True(t, gatewayCookie.HttpOnly)

	// the minted cookie authenticates /api/auth/me
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req2.AddCookie(gatewayCookie)
	srv.Router().ServeHTTP(w2, req2)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"role":"admin"`)
}

func TestLogin_InvalidCredentialsSurfaceBackendMessage(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "admin@example.com", "password": "wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	backend := newTestBackend(t)
	srv := newTestServer(t, backend.URL)
	// backend goes down before logout
	backend.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(sessionCookieFor(t, identity.RoleAdmin))
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected gateway session cookie to be cleared")
}

func TestUpdateSettings_RejectsInvalidCron(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/settings",
		strings.NewReader(`{"refresh_schedule": "every day at noon"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookieFor(t, identity.RoleAdmin))
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid cron expression")

	// the stored schedule must be untouched
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req2.AddCookie(sessionCookieFor(t, identity.RoleAdmin))
	srv.Router().ServeHTTP(w2, req2)

	require.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"refresh_schedule":""`)
}

func TestUpdateSettings_AcceptsValidCron(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/settings",
		strings.NewReader(`{"refresh_schedule": "0 */6 * * *", "max_snapshots": 5}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookieFor(t, identity.RoleAdmin))
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refresh_schedule":"0 */6 * * *"`)
	assert.Contains(t, w.Body.String(), `"max_snapshots":5`)
	assert.NotContains(t, w.Body.String(), `"next_refresh_at":null`)
}

func TestContent_LiveFallbackWithEmptyCache(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/universities", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"live"`)
	assert.Contains(t, w.Body.String(), "EFREI")
}

func TestContent_ServedFromCache(t *testing.T) {
	backend := newTestBackend(t)
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	_, err := srv.snapshotsService.Save(content.KindUniversities,
		[]json.RawMessage{json.RawMessage(`{"id": "uni-9", "name": "Cached U"}`)}, backend.URL)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/universities", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"cache"`)
	assert.Contains(t, w.Body.String(), "Cached U")
}

func TestContent_UnavailableWhenCacheEmptyAndBackendDown(t *testing.T) {
	backend := newTestBackend(t)
	srv := newTestServer(t, backend.URL)
	backend.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
