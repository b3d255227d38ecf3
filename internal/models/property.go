package models

import "time"

// DealType is whether a listing is for sale or for rent.
type DealType string

const (
	DealSale DealType = "sale"
	DealRent DealType = "rent"
)

// PropertyType is the category of a listing.
type PropertyType string

const (
	TypeApartment  PropertyType = "Apartment"
	TypeVilla      PropertyType = "Villa"
	TypePlot       PropertyType = "Plot"
	TypeCommercial PropertyType = "Commercial"
)

// Furnishing is the furnishing level of a listing.
type Furnishing string

const (
	Unfurnished    Furnishing = "Unfurnished"
	SemiFurnished  Furnishing = "Semi-Furnished"
	FullyFurnished Furnishing = "Fully-Furnished"
)

// PropertyStats holds the server-maintained counters for a listing.
type PropertyStats struct {
	Views     int `json:"views"`
	Saves     int `json:"saves"`
	Inquiries int `json:"inquiries"`
}

// ListedBy identifies the user who created a listing. Read-only join
// materialized by the upstream service.
type ListedBy struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Phone  string  `json:"phone,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// Property is a listing as served by the remote property service.
// Beds is a pointer because Plot and Commercial listings carry no bedroom
// count; a missing value must never satisfy a BHK filter.
type Property struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Price       int64        `json:"price"`
	DealType    DealType     `json:"dealType"`
	Type        PropertyType `json:"propertyType"`
	Beds        *int         `json:"beds,omitempty"`
	Baths       int          `json:"baths,omitempty"`
	AreaSqFt    float64      `json:"area"`
	Furnishing  Furnishing   `json:"furnishing"`

	City     string `json:"city"`
	Locality string `json:"locality"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`

	Amenities  []string `json:"amenities,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
	Images     []string `json:"images,omitempty"`
	Reviews    []Review `json:"reviews,omitempty"`

	Stats    PropertyStats `json:"stats"`
	ListedBy ListedBy      `json:"listedBy"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// HasBeds reports whether the listing carries a bedroom count.
func (p *Property) HasBeds() bool {
	return p.Beds != nil
}
