// Package session holds the process-wide authenticated session: who is logged
// in, whether the initial identity check is still running, and nothing else.
// Exactly one Store exists per running process; it is constructed at startup
// and passed by reference to every consumer.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/unilist-dev/unilist/internal/identity"
)

// Authenticator is the slice of the backend gateway the store depends on
type Authenticator interface {
	FetchIdentity(ctx context.Context) (*identity.User, error)
	Login(ctx context.Context, email, password string) (*identity.User, error)
	Logout(ctx context.Context) error
}

// Snapshot is a point-in-time read of the session. IsAdmin is derived from the
// user's role at snapshot time and never stored separately.
type Snapshot struct {
	User    *identity.User
	IsAdmin bool
	Loading bool
}

// Store is the single source of truth for authorization decisions
type Store struct {
	auth   Authenticator
	logger zerolog.Logger

	mu       sync.Mutex
	user     *identity.User
	loading  bool
	closed   bool
	loginGen uint64
	subs     map[chan Snapshot]struct{}

	initOnce sync.Once
}

// NewStore creates the session store. Loading stays true until Initialize
// completes its identity check.
func NewStore(auth Authenticator, logger zerolog.Logger) *Store {
	return &Store{
		auth:    auth,
		logger:  logger.With().Str("component", "session").Logger(),
		loading: true,
		subs:    make(map[chan Snapshot]struct{}),
	}
}

// Initialize runs the initial identity check. It runs at most once per store
// lifetime regardless of how many callers invoke it; a failed check resolves
// to logged-out and is never returned as an error.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		user, err := s.auth.FetchIdentity(ctx)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Identity check resolved to logged out")
			user = nil
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.user = user
		s.loading = false
		s.notifyLocked()
		s.mu.Unlock()
	})
}

// Read returns the current session without blocking
func (s *Store) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetUser replaces the cached identity. The caller is trusted; no validation
// is performed.
func (s *Store) SetUser(user *identity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.user = user
	s.notifyLocked()
}

// Login authenticates through the gateway and caches the resulting user. If a
// newer login started while this one was in flight, the stale result is
// discarded so out-of-order resolutions cannot clobber the session. On failure
// the cached user is left untouched and the typed error is returned for
// display.
func (s *Store) Login(ctx context.Context, email, password string) (*identity.User, error) {
	s.mu.Lock()
	s.loginGen++
	gen := s.loginGen
	s.mu.Unlock()

	user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return user, nil
	}
	if gen != s.loginGen {
		s.logger.Debug().Str("email", email).Msg("Discarding stale login result")
		return user, nil
	}
	s.user = user
	s.notifyLocked()
	return user, nil
}

// Logout always leaves the store logged out. The backend call is best-effort:
// a failure is logged and the local session is cleared anyway. Calling it
// twice is harmless.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Backend logout failed, clearing local session anyway")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.user = nil
	s.notifyLocked()
}

// Subscribe returns a channel that receives a snapshot after every session
// change. The channel holds only the most recent snapshot; slow consumers see
// the latest state, not every intermediate one.
func (s *Store) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe detaches a subscriber channel
func (s *Store) Unsubscribe(ch chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// Close detaches all subscribers and turns later writes into no-ops. It is the
// teardown guard: results of calls still in flight when the process is winding
// down cannot touch the store afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		User:    s.user,
		IsAdmin: s.user.IsAdmin(),
		Loading: s.loading,
	}
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subs {
		// keep only the newest snapshot in the buffer
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
