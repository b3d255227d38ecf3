package database

import (
	"testing"
	"time"

	"estatehub-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := testDB(t)

	rec := &models.SessionRecord{ID: "s1", Token: "jwt-abc", UserID: "u1", Role: "owner"}
	require.NoError(t, db.SaveSession(rec))

	got, err := db.GetSession("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jwt-abc", got.Token)
	assert.Equal(t, "owner", got.Role)

	missing, err := db.GetSession("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteSessionAlsoDropsDraft(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.SaveSession(&models.SessionRecord{ID: "s1", Token: "t"}))
	require.NoError(t, db.SaveDraft(&models.WizardDraft{SessionID: "s1", Step: 2, Form: "{}"}))

	require.NoError(t, db.DeleteSession("s1"))

	sess, err := db.GetSession("s1")
	require.NoError(t, err)
	assert.Nil(t, sess)

	draft, err := db.GetDraft("s1")
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestPruneSessions(t *testing.T) {
	db := testDB(t)

	old := &models.SessionRecord{ID: "old", Token: "t", LastSeen: time.Now().Add(-48 * time.Hour)}
	fresh := &models.SessionRecord{ID: "fresh", Token: "t", LastSeen: time.Now()}
	require.NoError(t, db.SaveSession(old))
	require.NoError(t, db.SaveSession(fresh))

	n, err := db.PruneSessions(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := db.GetSession("fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDraftRoundTrip(t *testing.T) {
	db := testDB(t)

	draft := &models.WizardDraft{SessionID: "s1", Step: 3, Form: `{"title":"x"}`}
	require.NoError(t, db.SaveDraft(draft))

	got, err := db.GetDraft("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Step)
	assert.JSONEq(t, `{"title":"x"}`, got.Form)

	require.NoError(t, db.DeleteDraft("s1"))
	got, err = db.GetDraft("s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
