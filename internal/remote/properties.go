package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"estatehub-portal/internal/models"
)

// ListingSubmission is the full field set posted when creating a listing.
// Highlights stays raw newline-delimited text: splitting it into a list is
// the upstream's job, not the portal's.
type ListingSubmission struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	DealType    string   `json:"dealType"`
	Type        string   `json:"propertyType"`
	Beds        int      `json:"beds"`
	Baths       int      `json:"baths"`
	Area        string   `json:"area"`
	Furnishing  string   `json:"furnishing"`
	City        string   `json:"city"`
	Locality    string   `json:"locality"`
	Address     string   `json:"address"`
	Pincode     string   `json:"pincode"`
	Amenities   []string `json:"amenities"`
	Highlights  string   `json:"highlights"`
}

// ImageAttachment is one listing photo to upload.
type ImageAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListProperties fetches listings matching the criteria; the upstream
// applies the filters server-side.
func (c *Client) ListProperties(ctx context.Context, token string, criteria models.FilterCriteria) ([]models.Property, error) {
	path := "/properties"
	if q := criteria.QueryValues().Encode(); q != "" {
		path += "?" + q
	}

	var res struct {
		Properties []models.Property `json:"properties"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &res); err != nil {
		return nil, err
	}
	return res.Properties, nil
}

// GetProperty fetches one listing. The upstream increments its view counter
// as a side effect.
func (c *Client) GetProperty(ctx context.Context, token, id string) (*models.Property, error) {
	var res struct {
		Property models.Property `json:"property"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/properties/"+url.PathEscape(id), token, nil, &res); err != nil {
		return nil, err
	}
	return &res.Property, nil
}

// MyListings fetches the authenticated user's own listings.
func (c *Client) MyListings(ctx context.Context, token string) ([]models.Property, error) {
	var res struct {
		Properties []models.Property `json:"properties"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/properties/my/listings", token, nil, &res); err != nil {
		return nil, err
	}
	return res.Properties, nil
}

// ToggleSave flips the saved state of a listing for the current user and
// returns the user's updated saved-id list as reported by the server.
func (c *Client) ToggleSave(ctx context.Context, token, id string) ([]string, error) {
	var res struct {
		Saved []string `json:"saved"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/properties/"+url.PathEscape(id)+"/save", token, nil, &res); err != nil {
		return nil, err
	}
	return res.Saved, nil
}

// CreateProperty posts a new listing as multipart/form-data: scalar fields,
// one repeated amenities field per amenity, the raw highlights block, and
// the image binaries.
func (c *Client) CreateProperty(ctx context.Context, token string, sub ListingSubmission, images []ImageAttachment) (*models.Property, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":        sub.Title,
		"description":  sub.Description,
		"price":        sub.Price,
		"dealType":     sub.DealType,
		"propertyType": sub.Type,
		"beds":         strconv.Itoa(sub.Beds),
		"baths":        strconv.Itoa(sub.Baths),
		"area":         sub.Area,
		"furnishing":   sub.Furnishing,
		"city":         sub.City,
		"locality":     sub.Locality,
		"address":      sub.Address,
		"pincode":      sub.Pincode,
		"highlights":   sub.Highlights,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	for _, a := range sub.Amenities {
		if err := w.WriteField("amenities", a); err != nil {
			return nil, fmt.Errorf("failed to write amenities field: %w", err)
		}
	}
	for _, img := range images {
		part, err := w.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("failed to write image %s: %w", img.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/properties", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var res struct {
		Property models.Property `json:"property"`
	}
	if err := c.send(req, token, true, &res); err != nil {
		return nil, err
	}
	return &res.Property, nil
}

// SubmitReview posts a review for a property. The upstream owns the
// review list; callers re-fetch the property to observe the result.
func (c *Client) SubmitReview(ctx context.Context, token, id string, review models.Review) error {
	return c.doJSON(ctx, http.MethodPost, "/properties/"+url.PathEscape(id)+"/reviews", token, review, nil)
}

// UpdateProperty updates an existing listing.
func (c *Client) UpdateProperty(ctx context.Context, token, id string, sub ListingSubmission) (*models.Property, error) {
	var res struct {
		Property models.Property `json:"property"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/properties/"+url.PathEscape(id), token, sub, &res); err != nil {
		return nil, err
	}
	return &res.Property, nil
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/properties/"+url.PathEscape(id), token, nil, nil)
}
