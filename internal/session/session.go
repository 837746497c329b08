// Package session holds the single logged-in user of the dashboard station.
//
// Login accepts any non-empty credentials. The user record is persisted under
// storage.KeyUser so a restart restores the session, and a signed token bound
// to the session id is handed to the client. Logout removes the user and the
// selected-patient snapshot, which invalidates every issued token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/records"
	"stealthcompany.com/icudash/internal/storage"
)

// DefaultRole is given to every user at login
const DefaultRole = "Doctor"

var (
	// ErrValidation is returned by Login when a credential is empty
	ErrValidation = errors.New("Please fill in all fields")
	// ErrNoSession is returned when no user is logged in or the token does
	// not belong to the current session
	ErrNoSession = errors.New("no active session")
)

// User is the logged-in user record
type User struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	LastLogin time.Time `json:"lastLogin"`
}

// storedUser is the persisted form of the user record
type storedUser struct {
	User
	SessionID string `json:"sessionId"`
}

// NewUser builds the user record for a typed username
func NewUser(username string, now time.Time) User {
	name, _, _ := strings.Cut(username, "@")
	return User{
		Username:  username,
		Name:      name,
		Role:      DefaultRole,
		LastLogin: now.UTC(),
	}
}

// Manager owns the session state and its persisted record
type Manager struct {
	mu      sync.RWMutex
	current *storedUser
	userRec *records.Value[storedUser]
	store   storage.Store
	tokens  *TokenIssuer
	now     func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager over store
func NewManager(store storage.Store, tokens *TokenIssuer, opts ...Option) *Manager {
	m := &Manager{
		userRec: records.NewValue[storedUser](store, storage.KeyUser),
		store:   store,
		tokens:  tokens,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the persisted user, if any, into memory
func (m *Manager) Restore(ctx context.Context) (User, bool, error) {
	stored, found, err := m.userRec.Load(ctx)
	if err != nil {
		return User{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !found || stored.Username == "" {
		m.current = nil
		return User{}, false, nil
	}
	if stored.SessionID == "" {
		stored.SessionID = uuid.NewString()
	}
	m.current = &stored

	log.Info().
		Str("username", stored.Username).
		Msg("Session restored from store")

	return stored.User, true, nil
}

// Login creates and persists a new session for username and returns a token for it
func (m *Manager) Login(ctx context.Context, username, password string) (string, User, error) {
	if username == "" || password == "" {
		return "", User{}, ErrValidation
	}

	stored := storedUser{
		User:      NewUser(username, m.now()),
		SessionID: uuid.NewString(),
	}

	if err := m.userRec.Save(ctx, stored); err != nil {
		return "", User{}, fmt.Errorf("persist user: %w", err)
	}

	token, err := m.tokens.Issue(stored.SessionID, stored.User, m.now())
	if err != nil {
		return "", User{}, err
	}

	m.mu.Lock()
	m.current = &stored
	m.mu.Unlock()

	log.Info().
		Str("username", stored.Username).
		Str("role", stored.Role).
		Msg("User logged in")

	return token, stored.User, nil
}

// Logout clears the user and the selected-patient snapshot. It is a no-op
// without a session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.userRec.Clear(ctx); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, storage.KeySelectedPatient); err != nil {
		return fmt.Errorf("clear %s: %w", storage.KeySelectedPatient, err)
	}

	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev != nil {
		log.Info().
			Str("username", prev.Username).
			Msg("User logged out")
	}
	return nil
}

// Current returns the logged-in user
func (m *Manager) Current() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return User{}, false
	}
	return m.current.User, true
}

// Authenticate verifies token and checks that it belongs to the current session
func (m *Manager) Authenticate(token string) (User, error) {
	claims, err := m.tokens.Verify(token, m.now())
	if err != nil {
		return User{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.SessionID != claims.ID {
		return User{}, ErrNoSession
	}
	return m.current.User, nil
}

// Refresh issues a new token for the current session
func (m *Manager) Refresh() (string, error) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()
	if current == nil {
		return "", ErrNoSession
	}
	return m.tokens.Issue(current.SessionID, current.User, m.now())
}
