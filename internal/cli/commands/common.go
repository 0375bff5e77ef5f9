package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/cli/auth"
	"github.com/unilist-dev/unilist/internal/cli/config"
	"github.com/unilist-dev/unilist/internal/cli/siteselect"
	"github.com/unilist-dev/unilist/internal/gate"
	"github.com/unilist-dev/unilist/internal/gateway"
	"github.com/unilist-dev/unilist/internal/identity"
	"github.com/unilist-dev/unilist/internal/session"
)

// getSelectedSite loads the config and returns the selected site.
// This is common logic used by most commands.
// If you need the config object itself, call config.LoadFromCurrentDir() separately.
func getSelectedSite() (*config.Site, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'unilist init' to create a configuration file", err)
	}

	site, err := siteselect.ResolveSite(cfg)
	if err != nil {
		return nil, err
	}

	if site.URL == "" {
		return nil, fmt.Errorf("site URL is empty. Please edit unilist.json and add a valid gateway URL")
	}

	return site, nil
}

// cliLogger writes warnings and errors to stderr; command output stays on
// stdout
func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
}

// newAPIClient builds a gateway client for a site and primes it with the
// stored session cookie, if any
func newAPIClient(site *config.Site, store auth.SessionStore) *gateway.Client {
	client := gateway.New(site.URL, cliLogger())

	cookies, err := store.LoadSession(site.URL)
	if err == nil && cookies != "" {
		client.SetCookies(gateway.ParseCookieHeader(cookies))
	}

	return client
}

// newSessionStore builds the command's session store on top of a gateway
// client. Each CLI invocation is one process, so the store lives for exactly
// one command.
func newSessionStore(client *gateway.Client) *session.Store {
	return session.NewStore(client, cliLogger())
}

// messageNavigator turns the gate's redirect targets into error messages: the
// CLI has no views to navigate, so "go to login" and "go home" become text.
type messageNavigator struct {
	target string
}

func (n *messageNavigator) NavigateTo(target string) {
	n.target = target
}

func (n *messageNavigator) errorFor(snap session.Snapshot) error {
	switch n.target {
	case gate.DefaultLoginPath:
		return fmt.Errorf("not logged in. Run 'unilist login' first")
	case gate.DefaultHomePath:
		if snap.User != nil {
			return fmt.Errorf("admin access required (logged in as %s with role '%s')", snap.User.Email, snap.User.Role)
		}
		return fmt.Errorf("admin access required")
	default:
		return fmt.Errorf("session check did not resolve")
	}
}

// requireAdmin resolves the stored session through the session store and
// gates on it. The returned user is dashboard-capable.
func requireAdmin(ctx context.Context, store *session.Store) (*identity.User, error) {
	store.Initialize(ctx)

	nav := &messageNavigator{}
	g := gate.New(store, nav, cliLogger())

	if state := g.Check(); state != gate.StateAuthorized {
		return nil, nav.errorFor(store.Read())
	}

	return store.Read().User, nil
}
