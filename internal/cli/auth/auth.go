package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "unilist-cli"
)

// getKeyringKey returns a unique key for storing session cookies per site
func getKeyringKey(siteURL string) string {
	return fmt.Sprintf("session-%s", siteURL)
}

// SaveSession persists the serialized session cookie securely in the OS
// keychain/credential manager
func SaveSession(siteURL, cookies string) error {
	key := getKeyringKey(siteURL)
	if err := keyring.Set(service, key, cookies); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves the serialized session cookie from the OS
// keychain/credential manager
func LoadSession(siteURL string) (string, error) {
	key := getKeyringKey(siteURL)
	cookies, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("not logged in. Run 'unilist login' first")
		}
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return cookies, nil
}

// DeleteSession removes the session cookie from the OS keychain/credential manager
func DeleteSession(siteURL string) error {
	key := getKeyringKey(siteURL)
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
