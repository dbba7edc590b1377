// ABOUTME: Authoritative, observable authentication state for the client
// ABOUTME: Sole writer of identity; fans out changes synchronously to subscribers

package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/loco-dev/loco-client/internal/api"
)

// Session is a point-in-time snapshot of the client's authentication state.
// Authenticated is true iff User is non-nil.
type Session struct {
	Authenticated bool
	User          *api.User
	Epoch         uint64
}

// Listener receives a session snapshot whenever the authentication state
// changes. Listeners are invoked synchronously on the mutating goroutine.
type Listener func(Session)

// Store holds the one Session per client process. All mutation goes through
// SetIdentity and Clear; every other component only reads.
type Store struct {
	mu        sync.RWMutex
	user      *api.User
	epoch     uint64
	listeners map[string]Listener
	logger    *slog.Logger
}

// NewStore creates an anonymous session store. Pass nil logger for default.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		listeners: make(map[string]Listener),
		logger:    logger.With("component", "session"),
	}
}

// SetIdentity replaces the session with an authenticated one for user.
// The epoch advances only on the anonymous-to-authenticated transition;
// re-asserting identity (refresh validation, /auth/me) keeps the epoch.
func (s *Store) SetIdentity(user api.User) {
	s.mu.Lock()
	wasAnonymous := s.user == nil
	u := user
	s.user = &u
	if wasAnonymous {
		s.epoch++
	}
	snapshot := s.snapshotLocked()
	targets := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info("identity set",
		"username", user.Username,
		"user_id", user.ID,
		"epoch", snapshot.Epoch)

	for _, fn := range targets {
		fn(snapshot)
	}
}

// Clear resets the session to anonymous. Calling Clear on an already-anonymous
// store is a no-op: no epoch bump, no listener notification.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user = nil
	s.epoch++
	snapshot := s.snapshotLocked()
	targets := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info("session cleared", "epoch", snapshot.Epoch)

	for _, fn := range targets {
		fn(snapshot)
	}
}

// Read returns the current session snapshot. Never blocks on I/O.
func (s *Store) Read() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Epoch returns the current authentication generation. It advances on every
// authenticated/anonymous transition and is used to invalidate stale
// connections from a previous session.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Subscribe registers a listener for session changes and returns an ID for
// later unsubscription. The listener is not called with the current state;
// callers that need it should Read first.
func (s *Store) Subscribe(fn Listener) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()

	s.logger.Debug("listener added", "listener_id", id)
	return id
}

// Unsubscribe removes a listener. Unknown IDs are ignored.
func (s *Store) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.listeners, id)
	s.mu.Unlock()

	s.logger.Debug("listener removed", "listener_id", id)
}

// snapshotLocked builds a Session copy. Must be called with mu held.
func (s *Store) snapshotLocked() Session {
	snap := Session{
		Authenticated: s.user != nil,
		Epoch:         s.epoch,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// listenersLocked copies the listener set so callbacks run without holding
// the lock. Must be called with mu held.
func (s *Store) listenersLocked() []Listener {
	targets := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		targets = append(targets, fn)
	}
	return targets
}
