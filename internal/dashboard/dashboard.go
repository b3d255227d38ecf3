// Package dashboard derives the read-only counters the role dashboards
// render. Everything here is computed from an already loaded collection;
// nothing is written back.
package dashboard

import "estatehub-portal/internal/models"

// ListingSummary aggregates a lister's (owner or broker) own properties.
type ListingSummary struct {
	Listings       int `json:"listings"`
	TotalViews     int `json:"totalViews"`
	TotalSaves     int `json:"totalSaves"`
	TotalInquiries int `json:"totalInquiries"`
	ForSale        int `json:"forSale"`
	ForRent        int `json:"forRent"`
}

// CustomerSummary aggregates a customer's activity.
type CustomerSummary struct {
	SavedProperties int `json:"savedProperties"`
	ReviewsWritten  int `json:"reviewsWritten"`
}

// SummarizeListings totals views/saves/inquiries over a user's own
// listings.
func SummarizeListings(props []models.Property, userID string) ListingSummary {
	var sum ListingSummary
	for _, p := range props {
		if p.ListedBy.ID != userID {
			continue
		}
		sum.Listings++
		sum.TotalViews += p.Stats.Views
		sum.TotalSaves += p.Stats.Saves
		sum.TotalInquiries += p.Stats.Inquiries
		switch p.DealType {
		case models.DealSale:
			sum.ForSale++
		case models.DealRent:
			sum.ForRent++
		}
	}
	return sum
}

// SummarizeCustomer counts the customer's saved properties and the reviews
// they have written across the loaded collection.
func SummarizeCustomer(props []models.Property, savedIDs []string, userID string) CustomerSummary {
	sum := CustomerSummary{SavedProperties: len(savedIDs)}
	for _, p := range props {
		for _, r := range p.Reviews {
			if r.AuthorID == userID {
				sum.ReviewsWritten++
			}
		}
	}
	return sum
}
