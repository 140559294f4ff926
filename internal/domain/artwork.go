package domain

import "time"

// MediaFile is one uploaded file attached to an artwork.
type MediaFile struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Artwork represents an uploaded piece of art and its denormalized rating summary.
type Artwork struct {
	ID            int64
	Title         string
	Description   string
	Files         []MediaFile
	AverageRating float64
	RatingCount   int
	CreatedAt     time.Time
}

// Clone returns a copy that shares no mutable state with a.
func (a Artwork) Clone() Artwork {
	out := a
	out.Files = make([]MediaFile, len(a.Files))
	copy(out.Files, a.Files)
	return out
}
