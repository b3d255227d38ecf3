package models

import (
	"errors"
	"strings"
	"time"
)

// Review is a user review attached to a property. Immutable once created.
type Review struct {
	ID        string    `json:"id,omitempty"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"authorId,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrEmptyComment     = errors.New("comment must not be empty")
)

// Validate checks the submission-time invariants.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrRatingOutOfRange
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}
