package wizard

import (
	"context"
	"sync"
	"testing"

	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func owner() *models.User {
	return &models.User{ID: "u1", Name: "Asha", Role: models.RoleOwner}
}

func broker() *models.User {
	return &models.User{ID: "u2", Name: "Ravi", Role: models.RoleBroker}
}

func image(name string) remote.ImageAttachment {
	return remote.ImageAttachment{Filename: name, ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
}

// completeForm fills every required field across all four steps.
func completeForm() FormData {
	f := defaultForm()
	f.Title = "2BHK near metro"
	f.Price = "2500000"
	f.Area = "950"
	f.City = "Noida"
	f.Locality = "Sector 62"
	f.Address = "Tower 4, Flat 1203"
	f.Pincode = "201301"
	f.Amenities = []string{"Parking", "Lift"}
	f.Highlights = "East facing\nNear metro"
	return f
}

func TestNewEnforcesAccessPrecondition(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = New(&models.User{Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	w, err := New(owner())
	require.NoError(t, err)
	assert.Equal(t, StepBasicInfo, w.Step())
}

func TestNextBlocksOnIncompleteStep(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)

	// Step 1 with no title or price.
	assert.ErrorIs(t, w.Next(), ErrStepIncomplete)
	assert.Equal(t, StepBasicInfo, w.Step())

	f := w.Form()
	f.Title = "Plot in Sector 150"
	w.SetForm(f)
	assert.ErrorIs(t, w.Next(), ErrStepIncomplete, "price still missing")

	f.Price = "9000000"
	w.SetForm(f)
	require.NoError(t, w.Next())
	assert.Equal(t, StepDetails, w.Step())
}

func TestBackNeverGoesBelowFirstStep(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)

	w.Back()
	assert.Equal(t, StepBasicInfo, w.Step())

	w.SetForm(completeForm())
	require.NoError(t, w.Next())
	w.Back()
	assert.Equal(t, StepBasicInfo, w.Step())
}

func TestWalkThroughAllSteps(t *testing.T) {
	w, err := New(broker())
	require.NoError(t, err)
	w.SetForm(completeForm())

	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	assert.Equal(t, StepAmenitiesAndPhotos, w.Step())

	// Step 4 gates on images too, not only amenities.
	assert.ErrorIs(t, w.Next(), ErrStepIncomplete)

	require.NoError(t, w.AttachImage(image("front.jpg")))
	require.NoError(t, w.Next())
	assert.Equal(t, StepAmenitiesAndPhotos, w.Step(), "terminal step does not advance past itself")
}

func TestValidateStepFourMatrix(t *testing.T) {
	tests := []struct {
		name      string
		amenities []string
		images    int
		want      bool
	}{
		{"no amenities, no images", nil, 0, false},
		{"no amenities, two images", nil, 2, false},
		{"amenities, no images", []string{"Lift"}, 0, false},
		{"amenities, one image", []string{"Lift"}, 1, true},
		{"amenities, three images", []string{"Lift"}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(owner())
			require.NoError(t, err)
			f := completeForm()
			f.Amenities = tt.amenities
			w.SetForm(f)
			for i := 0; i < tt.images; i++ {
				require.NoError(t, w.AttachImage(image("img.jpg")))
			}
			assert.Equal(t, tt.want, w.ValidateStep(StepAmenitiesAndPhotos))
		})
	}
}

func TestAttachImageRejectsFourth(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)
	for i := 0; i < MaxImages; i++ {
		require.NoError(t, w.AttachImage(image("img.jpg")))
	}
	assert.ErrorIs(t, w.AttachImage(image("extra.jpg")), ErrImageCount)
	assert.Equal(t, MaxImages, w.ImageCount())
}

type fakeSubmitter struct {
	gotSub    remote.ListingSubmission
	gotImages []remote.ImageAttachment
	err       error
}

func (f *fakeSubmitter) CreateProperty(ctx context.Context, token string, sub remote.ListingSubmission, images []remote.ImageAttachment) (*models.Property, error) {
	f.gotSub = sub
	f.gotImages = images
	if f.err != nil {
		return nil, f.err
	}
	return &models.Property{ID: "new-1", Title: sub.Title}, nil
}

func TestSubmitSuccessRedirectsToRoleDashboard(t *testing.T) {
	for _, tt := range []struct {
		user *models.User
		path string
	}{
		{owner(), "/dashboard/owner"},
		{broker(), "/dashboard/broker"},
	} {
		w, err := New(tt.user)
		require.NoError(t, err)
		w.SetForm(completeForm())
		require.NoError(t, w.AttachImage(image("a.jpg")))
		require.NoError(t, w.AttachImage(image("b.jpg")))

		api := &fakeSubmitter{}
		res, err := w.Submit(context.Background(), api, "token-1")
		require.NoError(t, err)
		assert.Equal(t, tt.path, res.RedirectPath)
		assert.Equal(t, "new-1", res.Property.ID)
		assert.Len(t, api.gotImages, 2)
		assert.Equal(t, []string{"Parking", "Lift"}, api.gotSub.Amenities)
		assert.Equal(t, "East facing\nNear metro", api.gotSub.Highlights,
			"highlights pass through as raw newline-delimited text")
	}
}

func TestSubmitGuards(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)
	w.SetForm(completeForm())

	_, err = w.Submit(context.Background(), &fakeSubmitter{}, "")
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = w.Submit(context.Background(), &fakeSubmitter{}, "token-1")
	assert.ErrorIs(t, err, ErrImageCount, "zero images fails the final guard")

	require.NoError(t, w.AttachImage(image("a.jpg")))
	f := w.Form()
	f.Amenities = nil
	w.SetForm(f)
	_, err = w.Submit(context.Background(), &fakeSubmitter{}, "token-1")
	assert.ErrorIs(t, err, ErrStepIncomplete, "no amenities fails the final guard")
}

func TestSubmitSurfacesServerMessage(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)
	w.SetForm(completeForm())
	require.NoError(t, w.AttachImage(image("a.jpg")))

	api := &fakeSubmitter{err: &remote.APIError{StatusCode: 422, Message: "pincode not serviced"}}
	_, err = w.Submit(context.Background(), api, "token-1")
	require.Error(t, err)
	assert.Equal(t, "pincode not serviced", err.Error())
	assert.Equal(t, StepAmenitiesAndPhotos, w.Step(), "failed submission stays on step 4")
}

func TestConcurrentFormAndImageMutation(t *testing.T) {
	// A form update racing an image upload on the same session must not
	// corrupt either; run with the race detector.
	w, err := New(owner())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			f := w.Form()
			f.Title = "Flat"
			w.SetForm(f)
		}()
		go func() {
			defer wg.Done()
			if w.AttachImage(image("img.jpg")) != nil {
				w.ClearImages()
			}
		}()
		go func() {
			defer wg.Done()
			_ = w.Step()
			_ = w.ValidateStep(StepAmenitiesAndPhotos)
			_, _ = w.MarshalForm()
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, w.ImageCount(), MaxImages)
	assert.Equal(t, "Flat", w.Form().Title)
}

func TestDraftRoundTrip(t *testing.T) {
	w, err := New(owner())
	require.NoError(t, err)
	w.SetForm(completeForm())
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())

	draft, err := w.MarshalForm()
	require.NoError(t, err)

	restored, err := New(owner())
	require.NoError(t, err)
	require.NoError(t, restored.RestoreDraft(w.Step(), draft))
	assert.Equal(t, StepLocation, restored.Step())
	assert.Equal(t, w.Form(), restored.Form())
}
