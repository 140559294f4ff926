package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/artboard/internal/domain"
	"github.com/Clark-Hu/artboard/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// IDSource hands out artwork ids.
type IDSource interface {
	Next() int64
}

// ArtworkCreateParams bundles the fields required to create an artwork.
type ArtworkCreateParams struct {
	Title       string
	Description string
	Files       []domain.MediaFile
}

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	ArtworkID int64
	RaterID   string
	Value     float64
}

// ArtworkRepository is the artwork registry: an append-only, ordered list of
// artworks whose rating summaries may be overwritten.
type ArtworkRepository interface {
	Create(ctx context.Context, params ArtworkCreateParams) (domain.Artwork, error)
	List(ctx context.Context) ([]domain.Artwork, error)
	GetByID(ctx context.Context, id int64) (domain.Artwork, error)
	// UpdateRatingSummary reports false when no artwork has the given id.
	UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary) (bool, error)
}

// RatingRepository is the rating ledger: at most one value per
// (artwork, rater) pair.
type RatingRepository interface {
	// Upsert stores the value and reports whether the pair was new.
	Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error)
	Get(ctx context.Context, artworkID int64, raterID string) (domain.Rating, error)
	// Summarize returns a zero summary for artworks without ratings.
	Summarize(ctx context.Context, artworkID int64) (domain.RatingSummary, error)
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Artworks ArtworkRepository
	Ratings  RatingRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store, ids IDSource) *Repository {
	return NewWithPool(st.Pool(), ids)
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool, ids IDSource) *Repository {
	return &Repository{
		Artworks: &ArtworksRepository{pool: pool, ids: ids},
		Ratings:  &RatingsRepository{pool: pool},
	}
}

// NewMemory constructs process-local repositories. Their contents are lost
// when the process exits.
func NewMemory(ids IDSource) *Repository {
	return &Repository{
		Artworks: NewMemoryArtworks(ids),
		Ratings:  NewMemoryRatings(),
	}
}
