// Package gallery composes the file store, artwork registry and rating ledger
// into the operations exposed by the API.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Clark-Hu/artboard/internal/domain"
	"github.com/Clark-Hu/artboard/internal/filestore"
	"github.com/Clark-Hu/artboard/internal/repository"
)

const lockStripes = 64

// RateParams identifies one rater's score for one artwork.
type RateParams struct {
	ArtworkID int64
	RaterID   string
	Value     float64
}

// RateResult reports what a rating submission changed.
type RateResult struct {
	// Found is false when the artwork does not exist; nothing is stored then.
	Found    bool
	Inserted bool
	Summary  domain.RatingSummary
}

// Service owns the artwork workflows.
type Service struct {
	repo   *repository.Repository
	files  filestore.Store
	logger *zap.Logger

	// ledger upsert, summary and registry write-back run under the stripe
	// of the artwork id
	stripes [lockStripes]sync.Mutex
}

// New constructs a Service.
func New(repo *repository.Repository, files filestore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, files: files, logger: logger}
}

// CreateArtwork stores every upload in order and registers the artwork.
// Files written before a failing upload are kept.
func (s *Service) CreateArtwork(ctx context.Context, title, description string, uploads []filestore.Upload) (domain.Artwork, error) {
	files := make([]domain.MediaFile, 0, len(uploads))
	for _, upload := range uploads {
		file, err := s.files.Save(ctx, upload)
		if err != nil {
			return domain.Artwork{}, fmt.Errorf("store file %q: %w", upload.Filename, err)
		}
		files = append(files, file)
	}

	art, err := s.repo.Artworks.Create(ctx, repository.ArtworkCreateParams{
		Title:       title,
		Description: description,
		Files:       files,
	})
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("create artwork: %w", err)
	}

	s.logger.Info("artwork created", zap.Int64("id", art.ID), zap.Int("files", len(files)))
	return art, nil
}

// ListArtworks returns all artworks in creation order.
func (s *Service) ListArtworks(ctx context.Context) ([]domain.Artwork, error) {
	arts, err := s.repo.Artworks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artworks: %w", err)
	}
	return arts, nil
}

// RateArtwork records the rater's value and refreshes the artwork's summary.
// Ratings for unknown artworks are dropped and reported with Found=false.
func (s *Service) RateArtwork(ctx context.Context, params RateParams) (RateResult, error) {
	mu := s.stripe(params.ArtworkID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.repo.Artworks.GetByID(ctx, params.ArtworkID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("rating for unknown artwork ignored",
				zap.Int64("artwork_id", params.ArtworkID),
				zap.String("rater_id", params.RaterID))
			return RateResult{}, nil
		}
		return RateResult{}, fmt.Errorf("lookup artwork: %w", err)
	}

	_, inserted, err := s.repo.Ratings.Upsert(ctx, repository.RatingUpsertParams{
		ArtworkID: params.ArtworkID,
		RaterID:   params.RaterID,
		Value:     params.Value,
	})
	if err != nil {
		return RateResult{}, err
	}

	summary, err := s.repo.Ratings.Summarize(ctx, params.ArtworkID)
	if err != nil {
		return RateResult{}, err
	}

	found, err := s.repo.Artworks.UpdateRatingSummary(ctx, params.ArtworkID, summary)
	if err != nil {
		return RateResult{}, err
	}

	s.logger.Debug("rating recorded",
		zap.Int64("artwork_id", params.ArtworkID),
		zap.String("rater_id", params.RaterID),
		zap.Bool("inserted", inserted),
		zap.Float64("average", summary.Average),
		zap.Int("count", summary.Count))

	return RateResult{Found: found, Inserted: inserted, Summary: summary}, nil
}

func (s *Service) stripe(id int64) *sync.Mutex {
	return &s.stripes[uint64(id)%lockStripes]
}
