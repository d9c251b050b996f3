package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
	"github.com/tildesoft/workspace-mcp/internal/logging"
)

// cleanupInterval is how often the store sweeps expired sessions that
// cannot be refreshed.
const cleanupInterval = 10 * time.Minute

// session pairs the credentials with the identity that owns them. Both
// fields are immutable after creation.
type session struct {
	bundle   *CredentialBundle
	identity *IdentityRecord
	created  time.Time
}

// SessionStore holds per-user sessions in memory. It is safe for
// concurrent use. The store also satisfies google.TokenProvider so the API
// clients can pull tokens without knowing about sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewSessionStore creates an empty store and starts its background sweep
// of unrefreshable expired sessions. Call Close to stop the sweep.
// Metrics may be nil.
func NewSessionStore(logger *slog.Logger, metrics *instrumentation.Metrics) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]*session),
		logger:      logger,
		metrics:     metrics,
		stopCleanup: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Put establishes the session for a user. Any previous session for the
// same user is replaced wholesale, never mutated in place.
func (s *SessionStore) Put(user string, bundle *CredentialBundle, identity *IdentityRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[user]; !exists {
		s.metrics.SessionOpened(context.Background())
	}
	s.sessions[user] = &session{
		bundle:   bundle,
		identity: identity,
		created:  time.Now(),
	}
}

// Delete destroys the session for a user, if any. Used on logout and
// revocation.
func (s *SessionStore) Delete(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[user]; !exists {
		return
	}
	delete(s.sessions, user)
	s.metrics.SessionClosed(context.Background())
}

// Identity returns the identity record for a user's session.
func (s *SessionStore) Identity(user string) (*IdentityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[user]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, user)
	}
	return sess.identity, nil
}

// Bundle returns the credential bundle for a user's session.
func (s *SessionStore) Bundle(user string) (*CredentialBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[user]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, user)
	}
	return sess.bundle, nil
}

// Users returns the users with an active session, in no particular order.
func (s *SessionStore) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.sessions))
	for user := range s.sessions {
		users = append(users, user)
	}
	return users
}

// TokenForUser implements google.TokenProvider. Expired tokens with a
// refresh token are still returned so the oauth2 token source can refresh
// them; expired tokens without one are an error.
func (s *SessionStore) TokenForUser(_ context.Context, user string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[user]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, user)
	}
	if sess.bundle.Expired() && sess.bundle.RefreshToken == "" {
		return nil, fmt.Errorf("%w: credentials for %s expired without refresh token", ErrNoSession, user)
	}
	return sess.bundle.Token(), nil
}

// HasTokenForUser implements google.TokenProvider.
func (s *SessionStore) HasTokenForUser(user string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[user]
	return ok
}

// Close stops the background cleanup loop. Safe to call more than once.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

func (s *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// removeExpired drops sessions whose tokens expired and cannot be
// refreshed. Sessions with a refresh token survive indefinitely.
func (s *SessionStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for user, sess := range s.sessions {
		if sess.bundle.Expired() && sess.bundle.RefreshToken == "" {
			delete(s.sessions, user)
			s.metrics.SessionClosed(context.Background())
			if s.logger != nil {
				s.logger.Debug("removed expired session",
					logging.KeyOperation, "session_cleanup",
					"user", logging.AnonymizeEmail(user))
			}
		}
	}
}
