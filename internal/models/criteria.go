package models

import "net/url"

// FilterCriteria is the active filter set for the property grid.
// Empty string means "any" for free-form fields; the literal "all" means
// "any" for the enumerated fields, matching the values the UI sends.
type FilterCriteria struct {
	City         string `json:"city"`
	DealType     string `json:"dealType"`
	PropertyType string `json:"propertyType"`
	BHK          string `json:"bhk"`
	MinPrice     string `json:"minPrice"`
	MaxPrice     string `json:"maxPrice"`
	ListedBy     string `json:"listedBy"`
	SearchQuery  string `json:"searchQuery"`
}

// DefaultCriteria returns the criteria with every field at its "any" value.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		DealType:     "all",
		PropertyType: "all",
		BHK:          "all",
		ListedBy:     "all",
	}
}

// IsDefault reports whether every field is at its "any" value.
func (c FilterCriteria) IsDefault() bool {
	return c == DefaultCriteria()
}

// QueryValues encodes the criteria as the query parameters the remote
// property service accepts on GET /properties. "all" and empty fields are
// omitted so the upstream treats them as unconstrained.
func (c FilterCriteria) QueryValues() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" && val != "all" {
			v.Set(key, val)
		}
	}
	set("city", c.City)
	set("dealType", c.DealType)
	set("propertyType", c.PropertyType)
	set("beds", c.BHK)
	set("minPrice", c.MinPrice)
	set("maxPrice", c.MaxPrice)
	set("listedBy", c.ListedBy)
	set("searchQuery", c.SearchQuery)
	return v
}
