package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unilist-dev/unilist/internal/cli/auth"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user behind the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami()
		},
	}
}

func runWhoami() error {
	site, err := getSelectedSite()
	if err != nil {
		return err
	}

	client := newAPIClient(site, auth.Default)
	store := newSessionStore(client)
	defer store.Close()

	store.Initialize(context.Background())

	snap := store.Read()
	if snap.User == nil {
		return fmt.Errorf("not logged in. Run 'unilist login' first")
	}
	user := snap.User

	fmt.Printf("Site:  %s (%s)\n", site.Alias, site.URL)
	fmt.Printf("User:  %s (%s)\n", user.FullName(), user.Email)
	fmt.Printf("Role:  %s\n", user.Role)
	if user.IsAdmin() {
		fmt.Println("Dashboard access: yes")
	} else {
		fmt.Println("Dashboard access: no")
	}

	return nil
}
