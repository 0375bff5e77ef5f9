package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/identity"
)

// mockBackend simulates the platform auth endpoints with a cookie session
func mockBackend(t *testing.T, email, password string) *httptest.Server {
	t.Helper()

	const sessionValue = "sess-abc123"
	user := identity.User{
		ID:        "u1",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Role:      identity.RoleAdmin,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Email != email || req.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: sessionValue, Path: "/"})
		json.NewEncoder(w).Encode(map[string]interface{}{"user": user})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != sessionValue {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", MaxAge: -1, Path: "/"})
		w.WriteHeader(http.StatusOK)
	})

	return httptest.NewServer(mux)
}

func TestLogin_SuccessEstablishesCookieSession(t *testing.T) {
	backend := mockBackend(t, "admin@example.com", "secret")
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())

	user, err := client.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Email != "admin@example.com" || user.Role != identity.RoleAdmin {
		t.Errorf("unexpected user: %+v", user)
	}

	// the jar now carries the session cookie, so the identity check succeeds
	got, err := client.FetchIdentity(context.Background())
	if err != nil {
		t.Fatalf("identity check after login failed: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("expected user u1 from identity check, got %s", got.ID)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := mockBackend(t, "admin@example.com", "secret")
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())

	_, err := client.Login(context.Background(), "admin@example.com", "wrong")

	var invalid *InvalidCredentialsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}
	if invalid.Message != "Invalid email or password" {
		t.Errorf("unexpected message: %q", invalid.Message)
	}
}

func TestLogin_FallbackMessageWhenBackendBodyEmpty(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())

	_, err := client.Login(context.Background(), "a@b.c", "pw")

	var invalid *InvalidCredentialsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}
	if invalid.Message != DefaultInvalidCredentialsMessage {
		t.Errorf("expected fallback message, got %q", invalid.Message)
	}
}

func TestLogin_TransportFailureIsNetworkError(t *testing.T) {
	// nothing listens on this address
	client := New("http://127.0.0.1:1", zerolog.Nop())

	_, err := client.Login(context.Background(), "a@b.c", "pw")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestFetchIdentity_NoSessionIsUnauthenticated(t *testing.T) {
	backend := mockBackend(t, "admin@example.com", "secret")
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())

	_, err := client.FetchIdentity(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestFetchIdentity_TransportFailureIsUnauthenticated(t *testing.T) {
	client := New("http://127.0.0.1:1", zerolog.Nop())

	_, err := client.FetchIdentity(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on transport failure, got %v", err)
	}
}

func TestLogout_ReturnsErrorForLogging(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())

	if err := client.Logout(context.Background()); err == nil {
		t.Error("expected logout error for non-200 status")
	}
}

func TestCookieRoundTrip(t *testing.T) {
	backend := mockBackend(t, "admin@example.com", "secret")
	defer backend.Close()

	client := New(backend.URL, zerolog.Nop())
	if _, err := client.Login(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	cookies := client.Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie after login")
	}

	// a fresh client primed with the saved cookies is authenticated
	restored := New(backend.URL, zerolog.Nop())
	restored.SetCookies(cookies)

	if _, err := restored.FetchIdentity(context.Background()); err != nil {
		t.Errorf("expected restored cookies to authenticate, got %v", err)
	}
}
