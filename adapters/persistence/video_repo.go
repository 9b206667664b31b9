package persistence

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

const videoColumns = `id, spot_id, owner_id, video_url, thumbnail_url,
	width, height, duration_ms, file_size, created_at`

type postgresVideoRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresVideoRepo(db *pgxpool.Pool, logger logger.Logger) media.VideoRepository {
	return &postgresVideoRepo{db: db, logger: logger}
}

func scanVideo(row pgx.Row) (*media.SpotVideo, error) {
	v := &media.SpotVideo{}
	err := row.Scan(
		&v.ID, &v.SpotID, &v.OwnerID, &v.VideoURL, &v.ThumbnailURL,
		&v.Width, &v.Height, &v.DurationMs, &v.FileSize, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("video", "")
		}
		return nil, apperror.NewInternal("failed to scan video row", err)
	}
	return v, nil
}

func scanVideos(rows pgx.Rows) ([]*media.SpotVideo, error) {
	defer rows.Close()
	videos := make([]*media.SpotVideo, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating video rows", err)
	}
	return videos, nil
}

func (r *postgresVideoRepo) Save(ctx context.Context, v *media.SpotVideo) error {
	query := `
		INSERT INTO spot_videos (id, spot_id, owner_id, video_url, thumbnail_url,
			width, height, duration_ms, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		v.ID, v.SpotID, v.OwnerID, v.VideoURL, v.ThumbnailURL,
		v.Width, v.Height, v.DurationMs, v.FileSize, v.CreatedAt,
	)
	return err
}

func (r *postgresVideoRepo) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	query := `DELETE FROM spot_videos WHERE id = $1 AND owner_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return apperror.NewInternal("failed to delete video", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("video", id.String())
	}
	return nil
}

func (r *postgresVideoRepo) FindByID(ctx context.Context, id uuid.UUID) (*media.SpotVideo, error) {
	query := `SELECT ` + videoColumns + ` FROM spot_videos WHERE id = $1`
	row := r.db.QueryRow(ctx, query, id)
	return scanVideo(row)
}

func (r *postgresVideoRepo) ListBySpot(ctx context.Context, spotID uuid.UUID, limit, offset int) ([]*media.SpotVideo, error) {
	builder := psql.Select(videoColumns).
		From("spot_videos").
		Where(sq.Eq{"spot_id": spotID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list videos query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query videos by spot", err)
	}
	return scanVideos(rows)
}
