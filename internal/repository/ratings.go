package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// RatingsRepository provides helpers for artwork ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// Upsert inserts or updates a rating and indicates whether it was newly created.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO ratings (artwork_id, rater_id, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (artwork_id, rater_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
        RETURNING artwork_id, rater_id, rating, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, params.ArtworkID, params.RaterID, params.Value).Scan(
		&rating.ArtworkID,
		&rating.RaterID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, fmt.Errorf("upsert rating: %w", err)
	}

	return rating, inserted, nil
}

// Summarize returns the exact rating mean and count for an artwork.
func (r *RatingsRepository) Summarize(ctx context.Context, artworkID int64) (domain.RatingSummary, error) {
	const query = `
        SELECT COALESCE(AVG(rating), 0)::float8 AS average,
               COUNT(*)::int8 AS count
        FROM ratings
        WHERE artwork_id = $1
    `

	var (
		summary domain.RatingSummary
		count   int64
	)
	err := r.pool.QueryRow(ctx, query, artworkID).Scan(&summary.Average, &count)
	if err != nil {
		return domain.RatingSummary{}, fmt.Errorf("summarize ratings: %w", err)
	}
	summary.Count = int(count)
	return summary, nil
}

// Get retrieves a rating for a specific rater/artwork combination.
func (r *RatingsRepository) Get(ctx context.Context, artworkID int64, raterID string) (domain.Rating, error) {
	const query = `
        SELECT artwork_id, rater_id, rating, created_at, updated_at
        FROM ratings
        WHERE artwork_id = $1 AND rater_id = $2
    `
	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, artworkID, raterID).Scan(
		&rating.ArtworkID,
		&rating.RaterID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}
