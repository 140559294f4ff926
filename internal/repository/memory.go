package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// MemoryArtworks keeps artworks in insertion order in process memory.
type MemoryArtworks struct {
	mu    sync.RWMutex
	items []domain.Artwork
	index map[int64]int
	ids   IDSource
}

// NewMemoryArtworks returns an empty registry.
func NewMemoryArtworks(ids IDSource) *MemoryArtworks {
	return &MemoryArtworks{
		index: make(map[int64]int),
		ids:   ids,
	}
}

// Create appends a new artwork with zeroed rating fields.
func (m *MemoryArtworks) Create(ctx context.Context, params ArtworkCreateParams) (domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artwork{}, err
	}

	files := make([]domain.MediaFile, len(params.Files))
	copy(files, params.Files)

	m.mu.Lock()
	defer m.mu.Unlock()

	art := domain.Artwork{
		ID:          m.ids.Next(),
		Title:       params.Title,
		Description: params.Description,
		Files:       files,
		CreatedAt:   time.Now().UTC(),
	}
	m.index[art.ID] = len(m.items)
	m.items = append(m.items, art)
	return art.Clone(), nil
}

// List returns a snapshot of all artworks in creation order.
func (m *MemoryArtworks) List(ctx context.Context) ([]domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Artwork, len(m.items))
	for i, art := range m.items {
		out[i] = art.Clone()
	}
	return out, nil
}

// GetByID returns a copy of one artwork.
func (m *MemoryArtworks) GetByID(ctx context.Context, id int64) (domain.Artwork, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.index[id]
	if !ok {
		return domain.Artwork{}, ErrNotFound
	}
	return m.items[idx].Clone(), nil
}

// UpdateRatingSummary overwrites the rating fields in place.
func (m *MemoryArtworks) UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[id]
	if !ok {
		return false, nil
	}
	m.items[idx].AverageRating = summary.Average
	m.items[idx].RatingCount = summary.Count
	return true, nil
}

// MemoryRatings maps artwork id to rater id to rating in process memory.
type MemoryRatings struct {
	mu        sync.RWMutex
	byArtwork map[int64]map[string]domain.Rating
}

// NewMemoryRatings returns an empty ledger.
func NewMemoryRatings() *MemoryRatings {
	return &MemoryRatings{byArtwork: make(map[int64]map[string]domain.Rating)}
}

// Upsert sets the rater's value for the artwork, replacing any earlier one.
func (m *MemoryRatings) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Rating{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	raters, ok := m.byArtwork[params.ArtworkID]
	if !ok {
		raters = make(map[string]domain.Rating)
		m.byArtwork[params.ArtworkID] = raters
	}

	now := time.Now().UTC()
	rating, existed := raters[params.RaterID]
	if !existed {
		rating = domain.Rating{
			ArtworkID: params.ArtworkID,
			RaterID:   params.RaterID,
			CreatedAt: now,
		}
	}
	rating.Value = params.Value
	rating.UpdatedAt = now
	raters[params.RaterID] = rating

	return rating, !existed, nil
}

// Get returns the stored rating for a rater.
func (m *MemoryRatings) Get(ctx context.Context, artworkID int64, raterID string) (domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rating, ok := m.byArtwork[artworkID][raterID]
	if !ok {
		return domain.Rating{}, ErrNotFound
	}
	return rating, nil
}

// Summarize computes the mean over all current values for the artwork.
func (m *MemoryRatings) Summarize(ctx context.Context, artworkID int64) (domain.RatingSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raters := m.byArtwork[artworkID]
	if len(raters) == 0 {
		return domain.RatingSummary{}, nil
	}

	var sum float64
	for _, rating := range raters {
		sum += rating.Value
	}
	return domain.RatingSummary{
		Average: sum / float64(len(raters)),
		Count:   len(raters),
	}, nil
}
