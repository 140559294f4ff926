package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/artboard/internal/domain"
)

// ArtworksRepository provides persistence helpers for artwork entities.
type ArtworksRepository struct {
	pool *pgxpool.Pool
	ids  IDSource
}

const artworkColumns = `
    id,
    title,
    description,
    files,
    average_rating,
    rating_count,
    created_at
`

// Create inserts a new artwork row and returns the stored entity.
func (r *ArtworksRepository) Create(ctx context.Context, params ArtworkCreateParams) (domain.Artwork, error) {
	filesJSON, err := marshalFiles(params.Files)
	if err != nil {
		return domain.Artwork{}, err
	}

	query := fmt.Sprintf(`
        INSERT INTO artworks (id, title, description, files)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, artworkColumns)

	row := r.pool.QueryRow(ctx, query, r.ids.Next(), params.Title, params.Description, filesJSON)
	return scanArtwork(row)
}

// List returns every artwork in creation order.
func (r *ArtworksRepository) List(ctx context.Context) ([]domain.Artwork, error) {
	query := fmt.Sprintf(`SELECT %s FROM artworks ORDER BY created_at ASC, id ASC`, artworkColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Artwork{}
	for rows.Next() {
		art, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, art)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetByID fetches a single artwork.
func (r *ArtworksRepository) GetByID(ctx context.Context, id int64) (domain.Artwork, error) {
	query := fmt.Sprintf(`SELECT %s FROM artworks WHERE id = $1`, artworkColumns)
	art, err := scanArtwork(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Artwork{}, ErrNotFound
		}
		return domain.Artwork{}, err
	}
	return art, nil
}

// UpdateRatingSummary overwrites the denormalized rating columns.
func (r *ArtworksRepository) UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary) (bool, error) {
	const query = `
        UPDATE artworks
        SET average_rating = $2,
            rating_count = $3
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, id, summary.Average, summary.Count)
	if err != nil {
		return false, fmt.Errorf("update rating summary: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanArtwork(row pgx.Row) (domain.Artwork, error) {
	var (
		art       domain.Artwork
		filesJSON []byte
		createdAt time.Time
	)

	err := row.Scan(
		&art.ID,
		&art.Title,
		&art.Description,
		&filesJSON,
		&art.AverageRating,
		&art.RatingCount,
		&createdAt,
	)
	if err != nil {
		return domain.Artwork{}, err
	}

	art.CreatedAt = createdAt.UTC()
	art.Files = []domain.MediaFile{}
	if len(filesJSON) > 0 {
		if err := json.Unmarshal(filesJSON, &art.Files); err != nil {
			return domain.Artwork{}, fmt.Errorf("decode files: %w", err)
		}
	}
	return art, nil
}

func marshalFiles(files []domain.MediaFile) ([]byte, error) {
	if files == nil {
		files = []domain.MediaFile{}
	}
	return json.Marshal(files)
}
