// Package store is the single source of truth for one session's view of
// the property marketplace: the loaded collection, the saved-id set and the
// active filter criteria. All reads and writes go through the remote
// property service; the store never fabricates server state.
package store

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"estatehub-portal/internal/filter"
	"estatehub-portal/internal/models"
)

// PropertyAPI is the slice of the remote client the store depends on.
type PropertyAPI interface {
	ListProperties(ctx context.Context, token string, criteria models.FilterCriteria) ([]models.Property, error)
	GetProperty(ctx context.Context, token, id string) (*models.Property, error)
	ToggleSave(ctx context.Context, token, id string) ([]string, error)
	SubmitReview(ctx context.Context, token, id string, review models.Review) error
}

// State is the load state of the collection.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

var (
	// ErrNoSession means an operation that requires authentication was
	// attempted without a token.
	ErrNoSession = errors.New("no active session")

	// ErrStaleLoad means a load completed after a newer load had already
	// been issued; its result was discarded.
	ErrStaleLoad = errors.New("stale load discarded")
)

// Options tunes a store instance.
type Options struct {
	// ClientFilter selects the client-side filtering variant: the store
	// fetches the unfiltered collection and filters locally. When false,
	// criteria are passed through to the upstream as query parameters.
	ClientFilter bool

	// Debounce is the trailing delay applied to criteria-triggered
	// refetches so rapid edits coalesce into one request.
	Debounce time.Duration
}

// Store holds one session's marketplace state. Safe for concurrent use.
type Store struct {
	api   PropertyAPI
	token func() string
	opts  Options

	mu         sync.Mutex
	props      []models.Property
	saved      map[string]struct{}
	criteria   models.FilterCriteria
	state      State
	lastErr    error
	generation uint64

	debounce *time.Timer
}

// New creates a store. tokenFn supplies the current bearer token (empty
// when unauthenticated) so the store always uses a fresh one.
func New(api PropertyAPI, tokenFn func() string, opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}
	if tokenFn == nil {
		tokenFn = func() string { return "" }
	}
	return &Store{
		api:      api,
		token:    tokenFn,
		opts:     opts,
		saved:    make(map[string]struct{}),
		criteria: models.DefaultCriteria(),
		state:    StateIdle,
	}
}

// LoadProperties fetches the collection for the given criteria. Each call
// is tagged with a monotonically increasing generation; a response that
// completes after a newer call was issued is discarded so a slow response
// can never clobber a newer one. On failure the collection resets to empty
// and the error is kept as the retryable last error.
func (s *Store) LoadProperties(ctx context.Context, criteria models.FilterCriteria) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.criteria = criteria
	s.state = StateLoading
	s.mu.Unlock()

	upstream := criteria
	if s.opts.ClientFilter {
		upstream = models.DefaultCriteria()
	}
	props, err := s.api.ListProperties(ctx, s.token(), upstream)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Printf("store: discarding stale load (generation %d, latest %d)", gen, s.generation)
		return ErrStaleLoad
	}

	s.state = StateReady
	if err != nil {
		s.props = nil
		s.lastErr = err
		log.Printf("store: load failed: %v", err)
		return err
	}
	s.props = props
	s.lastErr = nil
	return nil
}

// Reload re-fetches with the current criteria.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	criteria := s.criteria
	s.mu.Unlock()
	return s.LoadProperties(ctx, criteria)
}

// SetCriteria records new criteria and schedules a debounced trailing
// refetch, so one request is issued per burst of edits rather than one per
// keystroke.
func (s *Store) SetCriteria(criteria models.FilterCriteria) {
	s.mu.Lock()
	s.criteria = criteria
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.opts.Debounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// The error is already retained as the store's last error.
		_ = s.LoadProperties(ctx, criteria)
	})
	s.mu.Unlock()
}

// ClearCriteria resets the filters to defaults and schedules a refetch.
func (s *Store) ClearCriteria() {
	s.SetCriteria(models.DefaultCriteria())
}

// ToggleSave flips the saved state of a property through the upstream. On
// success the saved set is replaced by the server's reported membership and
// the property's save counter is adjusted to match. On failure local state
// is left unchanged and the collection is re-fetched so the UI cannot drift
// from server truth.
func (s *Store) ToggleSave(ctx context.Context, propertyID string) error {
	token := s.token()
	if token == "" {
		return ErrNoSession
	}

	savedList, err := s.api.ToggleSave(ctx, token, propertyID)
	if err != nil {
		log.Printf("store: toggle save failed for %s: %v", propertyID, err)
		if rerr := s.Reload(ctx); rerr != nil && !errors.Is(rerr, ErrStaleLoad) {
			log.Printf("store: re-sync after failed toggle also failed: %v", rerr)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, wasSaved := s.saved[propertyID]
	s.saved = make(map[string]struct{}, len(savedList))
	for _, id := range savedList {
		s.saved[id] = struct{}{}
	}
	_, nowSaved := s.saved[propertyID]

	if wasSaved != nowSaved {
		delta := 1
		if !nowSaved {
			delta = -1
		}
		for i := range s.props {
			if s.props[i].ID == propertyID {
				s.props[i].Stats.Saves += delta
				break
			}
		}
	}
	return nil
}

// RecordReview validates a review, posts it to the remote service, and
// re-reads the property: the portal never appends to a review list locally,
// the collection reflects whatever the server accepted.
func (s *Store) RecordReview(ctx context.Context, propertyID string, review models.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	token := s.token()
	if token == "" {
		return ErrNoSession
	}

	if err := s.api.SubmitReview(ctx, token, propertyID, review); err != nil {
		log.Printf("store: review submission for %s failed: %v", propertyID, err)
		return err
	}

	prop, err := s.api.GetProperty(ctx, token, propertyID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.props {
		if s.props[i].ID == propertyID {
			s.props[i] = *prop
			break
		}
	}
	return nil
}

// SeedSaved replaces the saved set wholesale, used when a session is
// established and the server reports the user's saved ids.
func (s *Store) SeedSaved(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.saved[id] = struct{}{}
	}
}

// Properties returns a copy of the loaded collection in server order.
func (s *Store) Properties() []models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Property, len(s.props))
	copy(out, s.props)
	return out
}

// Visible returns the collection the grid should render: in the
// client-filtering variant the current criteria are applied locally, in the
// server variant the collection is already filtered.
func (s *Store) Visible() []models.Property {
	s.mu.Lock()
	props := make([]models.Property, len(s.props))
	copy(props, s.props)
	criteria := s.criteria
	s.mu.Unlock()

	if s.opts.ClientFilter {
		return filter.Apply(props, criteria)
	}
	return props
}

// SavedIDs returns the saved-property ids in stable order.
func (s *Store) SavedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.saved))
	for id := range s.saved {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsSaved reports whether the property is in the saved set.
func (s *Store) IsSaved(propertyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[propertyID]
	return ok
}

// SavedProperties returns the loaded properties that are in the saved set,
// preserving collection order.
func (s *Store) SavedProperties() []models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Property, 0, len(s.saved))
	for _, p := range s.props {
		if _, ok := s.saved[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Criteria returns the active filter criteria.
func (s *Store) Criteria() models.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// CurrentState returns the load state.
func (s *Store) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	return s.CurrentState() == StateLoading
}

// LastError returns the error from the most recent failed load, nil after
// a successful one. The UI uses it to show a retry affordance instead of a
// silently empty grid.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Close stops any pending debounced refetch.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}
