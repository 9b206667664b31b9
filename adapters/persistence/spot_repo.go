package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spothop/media-service/internal/domain/spot"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

type postgresSpotRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSpotRepo(db *pgxpool.Pool, logger logger.Logger) spot.Repository {
	return &postgresSpotRepo{db: db, logger: logger}
}

func scanSpot(row pgx.Row) (*spot.Spot, error) {
	s := &spot.Spot{}
	var coverURL sql.NullString

	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Latitude, &s.Longitude,
		&s.PhotoCount, &s.VideoCount, &coverURL,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("spot", "")
		}
		return nil, apperror.NewInternal("failed to scan spot row", err)
	}

	if coverURL.Valid {
		s.CoverURL = &coverURL.String
	}
	return s, nil
}

func (r *postgresSpotRepo) FindByID(ctx context.Context, id uuid.UUID) (*spot.Spot, error) {
	query := `
		SELECT id, owner_id, name, latitude, longitude,
		       photo_count, video_count, cover_url, created_at, updated_at
		FROM spots WHERE id = $1
	`
	row := r.db.QueryRow(ctx, query, id)
	return scanSpot(row)
}

func (r *postgresSpotRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM spots WHERE id = $1)`
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, apperror.NewInternal("failed to check spot existence", err)
	}
	return exists, nil
}

// RefreshMediaCounts recomputes the denormalized counters from the media
// tables. Recomputing instead of incrementing keeps the worker idempotent
// under event redelivery.
func (r *postgresSpotRepo) RefreshMediaCounts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE spots SET
			photo_count = (SELECT COUNT(*) FROM spot_photos WHERE spot_id = $1),
			video_count = (SELECT COUNT(*) FROM spot_videos WHERE spot_id = $1),
			updated_at = NOW()
		WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperror.NewInternal("failed to refresh spot media counts", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("spot", id.String())
	}
	return nil
}

func (r *postgresSpotRepo) SetCoverURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE spots SET cover_url = $2, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return apperror.NewInternal("failed to set spot cover url", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("spot", id.String())
	}
	return nil
}
