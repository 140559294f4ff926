package domain

import "time"

// Rating represents a single rater's score for an artwork.
type Rating struct {
	ArtworkID int64
	RaterID   string
	Value     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingSummary provides average and count for an artwork's ratings.
type RatingSummary struct {
	Average float64
	Count   int
}
