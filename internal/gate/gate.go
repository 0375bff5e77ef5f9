// Package gate guards views that require an authenticated admin or editor.
// It is a small state machine over session snapshots: while the identity check
// is pending nothing happens, unauthenticated viewers are sent to the login
// view, authenticated non-admins are sent home, and admins pass through.
package gate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/session"
)

// State is the gate's view of a session snapshot
type State int

const (
	// StatePending means the identity check has not resolved yet; defer.
	StatePending State = iota
	// StateUnauthenticated means nobody is logged in; redirect to login.
	StateUnauthenticated
	// StateUnauthorized means a user is present but lacks admin capability;
	// redirect home.
	StateUnauthorized
	// StateAuthorized means an admin or editor is present; render.
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Evaluate maps a session snapshot to a gate state. It is pure: all
// authorization policy lives here.
func Evaluate(snap session.Snapshot) State {
	if snap.Loading {
		return StatePending
	}
	if snap.User == nil {
		return StateUnauthenticated
	}
	if !snap.IsAdmin {
		return StateUnauthorized
	}
	return StateAuthorized
}

// Navigator receives redirect decisions. The gateway server maps targets to
// HTTP redirects, the CLI maps them to error messages.
type Navigator interface {
	NavigateTo(target string)
}

// DefaultLoginPath and DefaultHomePath are the redirect targets used unless
// the gate is configured otherwise.
const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// Gate binds a session store subscription to a navigator
type Gate struct {
	store     *session.Store
	nav       Navigator
	logger    zerolog.Logger
	loginPath string
	homePath  string
}

// New creates a gate with the default redirect targets
func New(store *session.Store, nav Navigator, logger zerolog.Logger) *Gate {
	return &Gate{
		store:     store,
		nav:       nav,
		logger:    logger.With().Str("component", "gate").Logger(),
		loginPath: DefaultLoginPath,
		homePath:  DefaultHomePath,
	}
}

// SetPaths overrides the redirect targets
func (g *Gate) SetPaths(loginPath, homePath string) {
	g.loginPath = loginPath
	g.homePath = homePath
}

// Check evaluates the current session and issues the redirect for it, if any.
// It returns the resulting state.
func (g *Gate) Check() State {
	return g.apply(g.store.Read())
}

// Run re-evaluates the gate on every session change until the context ends or
// the store closes. A logout while authorized therefore redirects to login on
// the next evaluation.
func (g *Gate) Run(ctx context.Context) {
	ch := g.store.Subscribe()
	defer g.store.Unsubscribe(ch)

	g.apply(g.store.Read())

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			g.apply(snap)
		}
	}
}

func (g *Gate) apply(snap session.Snapshot) State {
	state := Evaluate(snap)
	switch state {
	case StateUnauthenticated:
		g.logger.Debug().Msg("No session, redirecting to login")
		g.nav.NavigateTo(g.loginPath)
	case StateUnauthorized:
		g.logger.Debug().Str("user_id", snap.User.ID).Msg("User lacks admin access, redirecting home")
		g.nav.NavigateTo(g.homePath)
	}
	return state
}
