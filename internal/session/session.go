// Package session manages portal sessions: authentication against the
// remote property service, token persistence across portal restarts, and
// the per-session property store and listing wizard.
package session

import (
	"errors"
	"sync"
	"time"

	"estatehub-portal/internal/models"
	"estatehub-portal/internal/store"
	"estatehub-portal/internal/wizard"
)

// ErrNotAuthenticated means no valid session exists for the presented id.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is one authenticated browser session. The bearer token and user
// identity come from the upstream; the store and wizard are portal state.
type Session struct {
	ID       string
	User     models.User
	LastSeen time.Time

	mu     sync.Mutex
	token  string
	store  *store.Store
	wizard *wizard.Wizard
}

// Token returns the upstream bearer token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Store returns the session's property store.
func (s *Session) Store() *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Wizard returns the in-progress listing wizard, creating one on first use.
// The access precondition (role must be owner or broker) is enforced here,
// before any step state exists.
func (s *Session) Wizard() (*wizard.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wizard == nil {
		w, err := wizard.New(&s.User)
		if err != nil {
			return nil, err
		}
		s.wizard = w
	}
	return s.wizard, nil
}

// HasWizard reports whether a wizard is already in progress, so callers
// can restore a persisted draft into a fresh one.
func (s *Session) HasWizard() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard != nil
}

// ResetWizard discards the in-progress wizard, used after a successful
// submission.
func (s *Session) ResetWizard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizard = nil
}

// close releases per-session resources.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		s.store.Close()
	}
}

// ContextKey is the gin context key the middleware stores a *Session under.
const ContextKey = "portal_session"
