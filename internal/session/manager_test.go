package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"estatehub-portal/internal/database"
	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr error
	meErr    error
	meCalls  int
	user     models.User
}

func (f *fakeAuth) Login(ctx context.Context, req remote.LoginRequest) (*remote.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &remote.AuthResult{Token: mintToken(time.Hour), User: f.user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req remote.RegisterRequest) (*remote.AuthResult, error) {
	return f.Login(ctx, remote.LoginRequest{})
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*models.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

type fakeProps struct{}

func (fakeProps) ListProperties(ctx context.Context, token string, c models.FilterCriteria) ([]models.Property, error) {
	return nil, nil
}
func (fakeProps) GetProperty(ctx context.Context, token, id string) (*models.Property, error) {
	return &models.Property{ID: id}, nil
}
func (fakeProps) ToggleSave(ctx context.Context, token, id string) ([]string, error) {
	return []string{id}, nil
}
func (fakeProps) SubmitReview(ctx context.Context, token, id string, r models.Review) error {
	return nil
}

func mintToken(ttl time.Duration) string {
	claims := jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(ttl).Unix()}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := tok.SignedString([]byte("test-key"))
	return signed
}

func testManager(t *testing.T, auth *fakeAuth) (*Manager, *database.DB) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return NewManager(auth, fakeProps{}, db, ManagerConfig{IdleTTL: time.Hour}), db
}

func TestLoginEstablishesSession(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleCustomer, SavedProperties: []string{"p2", "p1"}}}
	m, _ := testManager(t, auth)

	sess, err := m.Login(context.Background(), remote.LoginRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.Token())
	assert.Equal(t, []string{"p1", "p2"}, sess.Store().SavedIDs(), "saved set is seeded from the user")

	got, err := m.Resolve(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 0, auth.meCalls, "a live session is not re-probed")
}

func TestLoginFailurePropagatesServerMessage(t *testing.T) {
	auth := &fakeAuth{loginErr: &remote.APIError{StatusCode: 401, Message: "Invalid credentials"}}
	m, _ := testManager(t, auth)

	_, err := m.Login(context.Background(), remote.LoginRequest{})
	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestResolveRestoresPersistedSessionAfterRestart(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleOwner}}
	m, db := testManager(t, auth)

	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)

	// Simulate a portal restart: fresh manager over the same database.
	m2 := NewManager(auth, fakeProps{}, db, ManagerConfig{IdleTTL: time.Hour})
	restored, err := m2.Resolve(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", restored.User.ID)
	assert.Equal(t, sess.Token(), restored.Token())
	assert.Equal(t, 1, auth.meCalls, "restore validates the token via /auth/me once")
}

func TestResolveClearsTokenOnFailedProbe(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1"}}
	m, db := testManager(t, auth)

	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)

	auth.meErr = errors.New("token revoked")
	m2 := NewManager(auth, fakeProps{}, db, ManagerConfig{IdleTTL: time.Hour})

	_, err = m2.Resolve(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	rec, err := db.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, rec, "a failed restore clears the persisted token")
}

func TestResolveSkipsProbeForExpiredToken(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1"}}
	m, db := testManager(t, auth)

	require.NoError(t, db.SaveSession(&models.SessionRecord{
		ID: "stale", Token: mintToken(-time.Minute), UserID: "u1",
	}))

	_, err := m.Resolve(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, auth.meCalls, "a visibly expired token is not probed upstream")
}

func TestLogoutClearsMemoryAndPersistence(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1"}}
	m, db := testManager(t, auth)

	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)

	m.Logout(sess.ID)

	_, err = m.Resolve(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	rec, err := db.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPruneIdle(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1"}}
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	defer db.Close()

	m := NewManager(auth, fakeProps{}, db, ManagerConfig{IdleTTL: 10 * time.Millisecond})

	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, m.Count())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, m.PruneIdle())
	assert.Equal(t, 0, m.Count())

	_, err = m.Resolve(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated, "pruned session does not resurrect from the pruned database")
}

func TestWizardAccessControlPerRole(t *testing.T) {
	auth := &fakeAuth{user: models.User{ID: "u1", Role: models.RoleCustomer}}
	m, _ := testManager(t, auth)

	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)

	_, err = sess.Wizard()
	assert.Error(t, err, "customers cannot open the listing wizard")

	auth.user.Role = models.RoleBroker
	sess2, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)
	w, err := sess2.Wizard()
	require.NoError(t, err)
	assert.NotNil(t, w)
}
