package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/identity"
)

// Client is the only component that talks to the platform backend for
// authentication. All calls carry the session cookie through the jar; none
// retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates an API client for the given backend base URL
func New(baseURL string, logger zerolog.Logger) *Client {
	// cookiejar.New never fails with nil options
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logger.With().Str("component", "gateway").Logger(),
	}
}

// SetHTTPClient sets a custom HTTP client. The existing cookie jar is carried
// over unless the new client brings its own.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Jar == nil {
		httpClient.Jar = c.httpClient.Jar
	}
	c.httpClient = httpClient
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cookies returns the cookies currently held for the backend base URL
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// SetCookies primes the jar with previously persisted session cookies
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return
	}
	c.httpClient.Jar.SetCookies(u, cookies)
}

// FetchIdentity asks the backend who, if anyone, is logged in via the current
// session cookie. Any non-success status or transport failure means "no active
// session" and resolves to ErrUnauthenticated.
func (c *Client) FetchIdentity(ctx context.Context) (*identity.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/auth/me", c.baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Identity check transport failure")
		return nil, ErrUnauthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthenticated
	}

	var user identity.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		c.logger.Debug().Err(err).Msg("Identity check returned undecodable body")
		return nil, ErrUnauthenticated
	}

	return &user, nil
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the success body of the login endpoint
type loginResponse struct {
	User *identity.User `json:"user"`
}

// errorResponse is the failure body of the login endpoint
type errorResponse struct {
	Message string `json:"message"`
}

// Login authenticates against the backend. On success the backend sets the
// session cookie (captured by the jar) and the user is returned. A 4xx status
// becomes *InvalidCredentialsError; transport failures become *NetworkError.
func (c *Client) Login(ctx context.Context, email, password string) (*identity.User, error) {
	jsonData, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/auth/login", c.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, NewInvalidCredentialsError("")
		}
		return nil, NewInvalidCredentialsError(errResp.Message)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(body))
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if loginResp.User == nil {
		return nil, fmt.Errorf("login response missing user")
	}

	return loginResp.User, nil
}

// Logout ends the backend session. The error is for logging only: callers
// clear their local session regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/auth/logout", c.baseURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: "logout", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("logout failed (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
