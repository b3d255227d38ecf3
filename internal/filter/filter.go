// Package filter implements the client-side filtering variant of the
// property grid: a pure mapping from (collection, criteria) to the retained
// subset. The server-side variant is the remote service's job; this one is
// used against an already loaded collection.
package filter

import (
	"math"
	"strconv"
	"strings"

	"estatehub-portal/internal/models"
)

// Apply returns the properties retained by the criteria, preserving input
// order. Predicates are conjunctive and applied in a fixed order: search,
// city, deal type, property type, BHK, price bounds, listed-by.
func Apply(props []models.Property, c models.FilterCriteria) []models.Property {
	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		if matches(&p, c) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *models.Property, c models.FilterCriteria) bool {
	if q := strings.TrimSpace(c.SearchQuery); q != "" && !matchesQuery(p, q) {
		return false
	}
	if c.City != "" && !strings.EqualFold(p.City, c.City) {
		return false
	}
	if c.DealType != "" && c.DealType != "all" && string(p.DealType) != c.DealType {
		return false
	}
	if c.PropertyType != "" && c.PropertyType != "all" && string(p.Type) != c.PropertyType {
		return false
	}
	if !matchesBHK(p, c.BHK) {
		return false
	}
	if min, ok := parsePrice(c.MinPrice); ok && float64(p.Price) < min {
		return false
	}
	if max, ok := parsePrice(c.MaxPrice); ok && float64(p.Price) > max {
		return false
	}
	if c.ListedBy != "" && c.ListedBy != "all" && string(p.ListedBy.Role) != c.ListedBy {
		return false
	}
	return true
}

// matchesQuery is a case-insensitive substring match over city, locality
// and title; any one hit retains the property.
func matchesQuery(p *models.Property, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.City), q) ||
		strings.Contains(strings.ToLower(p.Locality), q) ||
		strings.Contains(strings.ToLower(p.Title), q)
}

// matchesBHK applies the bedroom bucket. A property with no bedroom count
// never matches a concrete bucket, only "all".
func matchesBHK(p *models.Property, bhk string) bool {
	if bhk == "" || bhk == "all" {
		return true
	}
	if !p.HasBeds() {
		return false
	}
	if bhk == "4+" {
		return *p.Beds >= 4
	}
	n, err := strconv.Atoi(bhk)
	if err != nil {
		return false
	}
	return *p.Beds == n
}

// parsePrice parses an optional price bound. Empty or unparseable input
// counts as absent, never as zero. The bound stays a float so a fractional
// value like "99.5" is not truncated below itself.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
