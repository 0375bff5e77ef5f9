package auth

// SessionStore defines the interface for session cookie storage operations
// This allows us to mock the keyring in tests
type SessionStore interface {
	SaveSession(siteURL, cookies string) error
	LoadSession(siteURL string) (string, error)
	DeleteSession(siteURL string) error
}

// defaultSessionStore implements SessionStore using the OS keyring
type defaultSessionStore struct{}

var Default SessionStore = &defaultSessionStore{}

func (d *defaultSessionStore) SaveSession(siteURL, cookies string) error {
	return SaveSession(siteURL, cookies)
}

func (d *defaultSessionStore) LoadSession(siteURL string) (string, error) {
	return LoadSession(siteURL)
}

func (d *defaultSessionStore) DeleteSession(siteURL string) error {
	return DeleteSession(siteURL)
}
