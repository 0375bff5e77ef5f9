package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/cli/config"
	"github.com/unilist-dev/unilist/internal/gateway"
	"github.com/unilist-dev/unilist/internal/identity"
)

// newIdentityServer serves /api/auth/me for a fixed user, or 401 when the
// request lacks the expected session cookie
func newIdentityServer(t *testing.T, user *identity.User) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		cookie, err := r.Cookie("unilist_session")
		if err != nil || cookie.Value == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	}))
}

func TestRequireAdmin_NotLoggedIn(t *testing.T) {
	ts := newIdentityServer(t, &identity.User{ID: "u1", Role: identity.RoleAdmin})
	defer ts.Close()

	store := newSessionStore(gateway.New(ts.URL, zerolog.Nop()))
	defer store.Close()

	_, err := requireAdmin(context.Background(), store)
	if err == nil {
		t.Fatal("expected error without a session")
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("expected 'not logged in' error, got: %v", err)
	}
}

func TestRequireAdmin_StudentRejected(t *testing.T) {
	user := &identity.User{ID: "u1", Email: "student@example.com", Role: identity.RoleStudent}
	ts := newIdentityServer(t, user)
	defer ts.Close()

	client := gateway.New(ts.URL, zerolog.Nop())
	client.SetCookies([]*http.Cookie{{Name: "unilist_session", Value: "tok"}})
	store := newSessionStore(client)
	defer store.Close()

	_, err := requireAdmin(context.Background(), store)
	if err == nil {
		t.Fatal("expected error for student session")
	}
	if !strings.Contains(err.Error(), "admin access required") {
		t.Errorf("expected 'admin access required' error, got: %v", err)
	}
}

func TestRequireAdmin_AdminAndEditorAccepted(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleEditor} {
		user := &identity.User{ID: "u1", Email: "staff@example.com", Role: role}
		ts := newIdentityServer(t, user)

		client := gateway.New(ts.URL, zerolog.Nop())
		client.SetCookies([]*http.Cookie{{Name: "unilist_session", Value: "tok"}})
		store := newSessionStore(client)

		got, err := requireAdmin(context.Background(), store)
		if err != nil {
			t.Errorf("role %s: unexpected error: %v", role, err)
		} else if got.Role != role {
			t.Errorf("role %s: got role %s", role, got.Role)
		}

		store.Close()
		ts.Close()
	}
}

func TestRequireAdmin_ResolvesSessionOnce(t *testing.T) {
	user := &identity.User{ID: "u1", Email: "staff@example.com", Role: identity.RoleAdmin}
	ts := newIdentityServer(t, user)
	defer ts.Close()

	client := gateway.New(ts.URL, zerolog.Nop())
	client.SetCookies([]*http.Cookie{{Name: "unilist_session", Value: "tok"}})
	store := newSessionStore(client)
	defer store.Close()

	if _, err := requireAdmin(context.Background(), store); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	// the gateway goes away; the store already resolved, so a second gate
	// check within the same command must not re-fetch
	ts.Close()

	if _, err := requireAdmin(context.Background(), store); err != nil {
		t.Errorf("second check hit the network again: %v", err)
	}
}

func TestNewAPIClient_PrimesStoredCookies(t *testing.T) {
	store := newMockSessionStore()
	site := &config.Site{URL: "http://127.0.0.1:9999", Alias: "test"}

	if err := store.SaveSession(site.URL, "unilist_session=abc123"); err != nil {
		t.Fatal(err)
	}

	client := newAPIClient(site, store)

	cookies := client.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 primed cookie, got %d", len(cookies))
	}
	if cookies[0].Name != "unilist_session" || cookies[0].Value != "abc123" {
		t.Errorf("unexpected cookie: %s=%s", cookies[0].Name, cookies[0].Value)
	}
}

func TestNewAPIClient_NoStoredSession(t *testing.T) {
	store := newMockSessionStore()
	site := &config.Site{URL: "http://127.0.0.1:9999", Alias: "test"}

	client := newAPIClient(site, store)

	if got := len(client.Cookies()); got != 0 {
		t.Errorf("expected no cookies, got %d", got)
	}
}
