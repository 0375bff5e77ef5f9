package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unilist-dev/unilist/internal/cli/auth"
	"github.com/unilist-dev/unilist/internal/gateway"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Unilist gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set UNILIST_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set UNILIST_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("UNILIST_EMAIL")
	}
	if password == "" {
		password = os.Getenv("UNILIST_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or UNILIST_EMAIL env var)")
	}

	site, err := getSelectedSite()
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or UNILIST_PASSWORD env var)")
		}
	}

	client := newAPIClient(site, auth.Default)
	store := newSessionStore(client)
	defer store.Close()

	fmt.Printf("Logging in to %s (%s)...\n", site.Alias, site.URL)

	user, err := store.Login(context.Background(), email, password)
	if err != nil {
		var credsErr *gateway.InvalidCredentialsError
		if errors.As(err, &credsErr) {
			return fmt.Errorf("login failed: %s", credsErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	// Save the session cookie the gateway set during login
	cookies := gateway.SerializeCookies(client.Cookies())
	if cookies == "" {
		return fmt.Errorf("login succeeded but the gateway did not set a session cookie")
	}
	if err := auth.SaveSession(site.URL, cookies); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.FullName(), user.Email)
	if user.IsAdmin() {
		fmt.Printf("  Role: %s (dashboard access)\n", user.Role)
	}

	return nil
}
