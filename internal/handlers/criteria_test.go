package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/session"
	"estatehub-portal/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{ user models.User }

func (f *fakeAuth) Login(ctx context.Context, req remote.LoginRequest) (*remote.AuthResult, error) {
	return &remote.AuthResult{Token: "tok-1", User: f.user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req remote.RegisterRequest) (*remote.AuthResult, error) {
	return f.Login(ctx, remote.LoginRequest{})
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*models.User, error) {
	u := f.user
	return &u, nil
}

type fakeProps struct {
	mu        sync.Mutex
	listCalls int
	listFn    func(c models.FilterCriteria) ([]models.Property, error)
}

func (f *fakeProps) ListProperties(ctx context.Context, token string, c models.FilterCriteria) ([]models.Property, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(c)
	}
	return nil, nil
}

func (f *fakeProps) GetProperty(ctx context.Context, token, id string) (*models.Property, error) {
	return &models.Property{ID: id}, nil
}

func (f *fakeProps) ToggleSave(ctx context.Context, token, id string) ([]string, error) {
	return []string{id}, nil
}

func (f *fakeProps) SubmitReview(ctx context.Context, token, id string, r models.Review) error {
	return nil
}

func (f *fakeProps) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// criteriaRouter wires the criteria surface over a logged-in session.
func criteriaRouter(t *testing.T, props *fakeProps) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := session.NewManager(&fakeAuth{user: models.User{ID: "u1", Role: models.RoleCustomer}}, props, nil,
		session.ManagerConfig{StoreOptions: store.Options{Debounce: 20 * time.Millisecond}})
	sess, err := m.Login(context.Background(), remote.LoginRequest{})
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionMiddleware(m))
	h := NewPropertyHandler(nil, false)
	authed := r.Group("", RequireSession())
	authed.PUT("/criteria", h.UpdateCriteria)
	authed.DELETE("/criteria", h.ClearCriteria)
	authed.GET("/grid", h.Grid)
	return r, sess.ID
}

func do(r *gin.Engine, method, path, sessionID, body string) *httptest.ResponseRecorder {
	var payload *strings.Reader
	if body != "" {
		payload = strings.NewReader(body)
	} else {
		payload = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, payload)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCriteriaBurstCoalescesIntoOneUpstreamRequest(t *testing.T) {
	props := &fakeProps{}
	props.listFn = func(c models.FilterCriteria) ([]models.Property, error) {
		return []models.Property{{ID: "hit", City: c.City}}, nil
	}
	r, sid := criteriaRouter(t, props)

	// A burst of edits, one per keystroke.
	for _, city := range []string{"n", "no", "noi", "noid", "noida"} {
		body := fmt.Sprintf(`{"city":%q,"dealType":"all","propertyType":"all","bhk":"all","listedBy":"all"}`, city)
		w := do(r, http.MethodPut, "/criteria", sid, body)
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	require.Eventually(t, func() bool { return props.calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, props.calls(), "a burst of criteria edits issues one trailing upstream request")

	w := do(r, http.MethodGet, "/grid", sid, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Properties []models.Property     `json:"properties"`
		Criteria   models.FilterCriteria `json:"criteria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, "noida", resp.Properties[0].City, "the grid serves the trailing edit's result")
	assert.Equal(t, "noida", resp.Criteria.City)
	assert.Equal(t, 1, props.calls(), "serving the grid does not force a reload")
}

func TestClearCriteriaSchedulesRefetchToDefaults(t *testing.T) {
	props := &fakeProps{}
	props.listFn = func(c models.FilterCriteria) ([]models.Property, error) {
		return []models.Property{{ID: "p1"}}, nil
	}
	r, sid := criteriaRouter(t, props)

	w := do(r, http.MethodPut, "/criteria", sid, `{"city":"delhi","dealType":"all","propertyType":"all","bhk":"all","listedBy":"all"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = do(r, http.MethodDelete, "/criteria", sid, "")
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool { return props.calls() == 1 }, time.Second, 5*time.Millisecond)

	w = do(r, http.MethodGet, "/grid", sid, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Criteria models.FilterCriteria `json:"criteria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Criteria.IsDefault(), "clearing resets the filters to defaults")
}

func TestCriteriaEndpointsRequireSession(t *testing.T) {
	r, _ := criteriaRouter(t, &fakeProps{})

	w := do(r, http.MethodPut, "/criteria", "", `{"city":"noida"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/grid", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
