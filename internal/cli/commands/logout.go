package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/auth"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session with the selected gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	site, err := getSelectedSite()
	if err != nil {
		return err
	}

	client := newAPIClient(site, auth.Default)
	store := newSessionStore(client)
	defer store.Close()

	// Best effort: the store clears the session even when the gateway call
	// fails, and the keyring entry goes with it
	store.Logout(context.Background())

	if err := auth.DeleteSession(site.URL); err != nil {
		return err
	}

	fmt.Printf("✓ Logged out from %s (%s)\n", site.Alias, site.URL)
	return nil
}
