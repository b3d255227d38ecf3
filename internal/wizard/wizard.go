// Package wizard drives the four-step listing creation flow: collect the
// form data step by step, gate each transition on that step's required
// fields, and assemble the multipart creation request.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
)

// Step identifiers. The flow is linear: Back/Next only.
const (
	StepBasicInfo = 1 + iota
	StepDetails
	StepLocation
	StepAmenitiesAndPhotos

	stepCount = 4
)

// MaxImages is the upper bound on attached photos.
const MaxImages = 3

var (
	// ErrLoginRequired means no authenticated session was presented.
	ErrLoginRequired = errors.New("login required to list a property")

	// ErrRoleNotAllowed means the session's role may not create listings.
	ErrRoleNotAllowed = errors.New("only owners and brokers can list properties")

	// ErrStepIncomplete means the current step's required fields are not
	// all filled; the step does not advance.
	ErrStepIncomplete = errors.New("please fill all required fields for this step")

	// ErrImageCount means the attached image count is outside 1..3.
	ErrImageCount = errors.New("attach between 1 and 3 images")
)

// Submitter is the slice of the remote client the wizard needs.
type Submitter interface {
	CreateProperty(ctx context.Context, token string, sub remote.ListingSubmission, images []remote.ImageAttachment) (*models.Property, error)
}

// FormData is the accumulated input across all steps.
type FormData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	DealType    string `json:"dealType"`
	Type        string `json:"propertyType"`

	Beds       int    `json:"beds"`
	Baths      int    `json:"baths"`
	Area       string `json:"area"`
	Furnishing string `json:"furnishing"`

	City     string `json:"city"`
	Locality string `json:"locality"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`

	Amenities []string `json:"amenities"`
	// Highlights is kept as the raw newline-delimited text the user typed;
	// splitting it into a list is the upstream's responsibility.
	Highlights string `json:"highlights"`
}

// defaultForm mirrors the initial values the listing form presents.
func defaultForm() FormData {
	return FormData{
		DealType:   string(models.DealSale),
		Type:       string(models.TypeApartment),
		Beds:       2,
		Baths:      2,
		Furnishing: string(models.Unfurnished),
	}
}

// Wizard is one session's in-progress listing. Safe for concurrent use:
// requests for the same session may interleave, a form update racing an
// image upload must not corrupt either.
type Wizard struct {
	mu     sync.Mutex
	user   models.User
	step   int
	form   FormData
	images []remote.ImageAttachment
}

// New creates a wizard for the given user, enforcing the access
// precondition before any step state exists.
func New(user *models.User) (*Wizard, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	if user.Role == models.RoleCustomer {
		return nil, ErrRoleNotAllowed
	}
	return &Wizard{
		user: *user,
		step: StepBasicInfo,
		form: defaultForm(),
	}, nil
}

// Step returns the current step (1-based).
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Form returns the accumulated form data.
func (w *Wizard) Form() FormData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// SetForm merges user input into the form. Field-level validation happens
// at step transitions, not on entry.
func (w *Wizard) SetForm(form FormData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = form
}

// AttachImage adds one photo, rejecting a fourth.
func (w *Wizard) AttachImage(img remote.ImageAttachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.images) >= MaxImages {
		return ErrImageCount
	}
	w.images = append(w.images, img)
	return nil
}

// ClearImages drops all attached photos.
func (w *Wizard) ClearImages() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.images = nil
}

// ImageCount returns the number of attached photos.
func (w *Wizard) ImageCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.images)
}

// ValidateStep is a pure predicate over the accumulated data for one step.
// Step 4 requires at least one amenity and 1..3 images, so a dead-end
// submission attempt can never be reached through the UI.
func (w *Wizard) ValidateStep(step int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validateStep(step)
}

// validateStep is ValidateStep with the lock already held.
func (w *Wizard) validateStep(step int) bool {
	f := &w.form
	switch step {
	case StepBasicInfo:
		return notBlank(f.Title) && notBlank(f.Price)
	case StepDetails:
		return f.Beds > 0 && f.Baths > 0 && notBlank(f.Area) && notBlank(f.Furnishing)
	case StepLocation:
		return notBlank(f.City) && notBlank(f.Locality) && notBlank(f.Address) && notBlank(f.Pincode)
	case StepAmenitiesAndPhotos:
		return len(f.Amenities) > 0 && len(w.images) >= 1 && len(w.images) <= MaxImages
	default:
		return true
	}
}

// Next advances to the following step, or returns ErrStepIncomplete and
// stays put when the current step's required fields are missing.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.validateStep(w.step) {
		return ErrStepIncomplete
	}
	if w.step < stepCount {
		w.step++
	}
	return nil
}

// Back returns to the previous step, never below the first.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepBasicInfo {
		w.step--
	}
}

// Result is the outcome of a successful submission.
type Result struct {
	Property *models.Property
	// RedirectPath is the role-specific dashboard the UI navigates to.
	RedirectPath string
}

// Submit re-validates the final step and the image-count bound as a last
// guard, then posts the listing. On failure the wizard stays on step 4 so
// the user can correct and retry.
func (w *Wizard) Submit(ctx context.Context, api Submitter, token string) (*Result, error) {
	if token == "" {
		return nil, ErrLoginRequired
	}

	// Snapshot under the lock; the upstream call happens outside it.
	w.mu.Lock()
	if len(w.images) < 1 || len(w.images) > MaxImages {
		w.mu.Unlock()
		return nil, ErrImageCount
	}
	if !w.validateStep(StepAmenitiesAndPhotos) {
		w.mu.Unlock()
		return nil, ErrStepIncomplete
	}
	sub := remote.ListingSubmission{
		Title:       w.form.Title,
		Description: w.form.Description,
		Price:       w.form.Price,
		DealType:    w.form.DealType,
		Type:        w.form.Type,
		Beds:        w.form.Beds,
		Baths:       w.form.Baths,
		Area:        w.form.Area,
		Furnishing:  w.form.Furnishing,
		City:        w.form.City,
		Locality:    w.form.Locality,
		Address:     w.form.Address,
		Pincode:     w.form.Pincode,
		Amenities:   w.form.Amenities,
		Highlights:  w.form.Highlights,
	}
	images := append([]remote.ImageAttachment(nil), w.images...)
	w.mu.Unlock()

	prop, err := api.CreateProperty(ctx, token, sub, images)
	if err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%s", apiErr.UserMessage())
		}
		return nil, fmt.Errorf("failed to list property: %w", err)
	}

	return &Result{
		Property:     prop,
		RedirectPath: w.user.DashboardPath(),
	}, nil
}

// MarshalForm serializes the form for draft persistence. Images are not
// part of a draft.
func (w *Wizard) MarshalForm() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, err := json.Marshal(w.form)
	if err != nil {
		return "", fmt.Errorf("failed to encode draft: %w", err)
	}
	return string(data), nil
}

// RestoreDraft loads a persisted draft back into the wizard.
func (w *Wizard) RestoreDraft(step int, form string) error {
	var f FormData
	if err := json.Unmarshal([]byte(form), &f); err != nil {
		return fmt.Errorf("failed to decode draft: %w", err)
	}
	if step < StepBasicInfo || step > stepCount {
		step = StepBasicInfo
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = f
	w.step = step
	return nil
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
