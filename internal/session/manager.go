package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"estatehub-portal/internal/database"
	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthAPI is the slice of the remote client the manager needs.
type AuthAPI interface {
	Register(ctx context.Context, req remote.RegisterRequest) (*remote.AuthResult, error)
	Login(ctx context.Context, req remote.LoginRequest) (*remote.AuthResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// ManagerConfig tunes the session manager.
type ManagerConfig struct {
	// IdleTTL is how long a session may sit unused before it is expired.
	IdleTTL time.Duration
	// StoreOptions is applied to each session's property store.
	StoreOptions store.Options
}

// Manager owns all live sessions, keyed by an opaque portal session id the
// browser presents on each request. Tokens are persisted locally so a
// session survives a portal restart and is re-validated against /auth/me
// on first use.
type Manager struct {
	auth     AuthAPI
	props    store.PropertyAPI
	db       *database.DB
	idleTTL  time.Duration
	storeOpt store.Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(auth AuthAPI, props store.PropertyAPI, db *database.DB, cfg ManagerConfig) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 24 * time.Hour
	}
	return &Manager{
		auth:     auth,
		props:    props,
		db:       db,
		idleTTL:  cfg.IdleTTL,
		storeOpt: cfg.StoreOptions,
		sessions: make(map[string]*Session),
	}
}

// Login authenticates against the upstream and establishes a session.
func (m *Manager) Login(ctx context.Context, req remote.LoginRequest) (*Session, error) {
	res, err := m.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.establish(res.Token, res.User)
}

// Register creates an account upstream and establishes a session, matching
// the upstream's register-then-logged-in behavior.
func (m *Manager) Register(ctx context.Context, req remote.RegisterRequest) (*Session, error) {
	res, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.establish(res.Token, res.User)
}

// establish builds the in-memory session and persists its token.
func (m *Manager) establish(token string, user models.User) (*Session, error) {
	sess := &Session{
		ID:       uuid.NewString(),
		User:     user,
		LastSeen: time.Now(),
		token:    token,
	}
	sess.store = store.New(m.props, sess.Token, m.storeOpt)
	sess.store.SeedSaved(user.SavedProperties)

	if m.db != nil {
		rec := &models.SessionRecord{
			ID:       sess.ID,
			Token:    token,
			UserID:   user.ID,
			Role:     string(user.Role),
			LastSeen: sess.LastSeen,
		}
		if err := m.db.SaveSession(rec); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Resolve returns the live session for id, restoring it from the persisted
// token if the portal restarted since login. A token that fails the local
// expiry check or the /auth/me probe is cleared silently and the caller
// falls back to unauthenticated, with no user-visible error.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		m.touch(sess)
		return sess, nil
	}

	if m.db == nil {
		return nil, ErrNotAuthenticated
	}
	rec, err := m.db.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted session: %w", err)
	}
	if rec == nil {
		return nil, ErrNotAuthenticated
	}

	// Skip the upstream probe when the token is visibly expired. The
	// signature is the upstream's to verify; only the exp claim is read.
	if tokenExpired(rec.Token) {
		log.Printf("session %s: persisted token expired, clearing", id)
		m.drop(id)
		return nil, ErrNotAuthenticated
	}

	user, err := m.auth.Me(ctx, rec.Token)
	if err != nil {
		log.Printf("session %s: restore probe failed, clearing: %v", id, err)
		m.drop(id)
		return nil, ErrNotAuthenticated
	}

	sess = &Session{
		ID:       id,
		User:     *user,
		LastSeen: time.Now(),
		token:    rec.Token,
	}
	sess.store = store.New(m.props, sess.Token, m.storeOpt)
	sess.store.SeedSaved(user.SavedProperties)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()
	m.touch(sess)
	return sess, nil
}

// Logout destroys the session in memory and clears the persisted token.
func (m *Manager) Logout(id string) {
	m.drop(id)
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		sess.close()
	}
	if m.db != nil {
		if err := m.db.DeleteSession(id); err != nil {
			log.Printf("session %s: failed to delete persisted record: %v", id, err)
		}
	}
}

func (m *Manager) touch(sess *Session) {
	now := time.Now()
	m.mu.Lock()
	sess.LastSeen = now
	m.mu.Unlock()
	if m.db != nil {
		if err := m.db.TouchSession(sess.ID, now); err != nil {
			log.Printf("session %s: failed to touch: %v", sess.ID, err)
		}
	}
}

// PruneIdle expires sessions unused for longer than the idle TTL and
// returns how many were dropped.
func (m *Manager) PruneIdle() int {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.LastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	if m.db != nil {
		if _, err := m.db.PruneSessions(cutoff); err != nil {
			log.Printf("failed to prune persisted sessions: %v", err)
		}
	}
	return len(expired)
}

// Count returns the number of live sessions, for the health endpoint.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// tokenExpired reads the exp claim without verifying the signature.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Not a JWT; let the upstream be the judge.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
