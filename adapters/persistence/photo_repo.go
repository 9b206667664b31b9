package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const photoColumns = `id, spot_id, owner_id, original_url, thumb_small_url,
	thumb_large_url, width, height, taken_at, location, created_at`

type postgresPhotoRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresPhotoRepo(db *pgxpool.Pool, logger logger.Logger) media.PhotoRepository {
	return &postgresPhotoRepo{db: db, logger: logger}
}

func scanPhoto(row pgx.Row) (*media.SpotPhoto, error) {
	p := &media.SpotPhoto{}
	var locationBytes []byte

	err := row.Scan(
		&p.ID, &p.SpotID, &p.OwnerID, &p.OriginalURL,
		&p.ThumbSmallURL, &p.ThumbLargeURL, &p.Width, &p.Height,
		&p.TakenAt, &locationBytes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("photo", "")
		}
		return nil, apperror.NewInternal("failed to scan photo row", err)
	}

	if len(locationBytes) > 0 {
		loc := &media.Location{}
		if err := json.Unmarshal(locationBytes, loc); err == nil {
			p.Location = loc
		}
	}
	return p, nil
}

func scanPhotos(rows pgx.Rows) ([]*media.SpotPhoto, error) {
	defer rows.Close()
	photos := make([]*media.SpotPhoto, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating photo rows", err)
	}
	return photos, nil
}

func (r *postgresPhotoRepo) Save(ctx context.Context, p *media.SpotPhoto) error {
	var locationBytes []byte
	if p.Location != nil {
		b, err := json.Marshal(p.Location)
		if err != nil {
			return apperror.NewInternal("failed to marshal photo location", err)
		}
		locationBytes = b
	}

	query := `
		INSERT INTO spot_photos (id, spot_id, owner_id, original_url, thumb_small_url,
			thumb_large_url, width, height, taken_at, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.SpotID, p.OwnerID, p.OriginalURL, p.ThumbSmallURL,
		p.ThumbLargeURL, p.Width, p.Height, p.TakenAt, locationBytes, p.CreatedAt,
	)
	return err
}

func (r *postgresPhotoRepo) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	query := `DELETE FROM spot_photos WHERE id = $1 AND owner_id = $2`
	cmdTag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return apperror.NewInternal("failed to delete photo", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound("photo", id.String())
	}
	return nil
}

func (r *postgresPhotoRepo) FindByID(ctx context.Context, id uuid.UUID) (*media.SpotPhoto, error) {
	query := `SELECT ` + photoColumns + ` FROM spot_photos WHERE id = $1`
	row := r.db.QueryRow(ctx, query, id)
	return scanPhoto(row)
}

func (r *postgresPhotoRepo) ListBySpot(ctx context.Context, spotID uuid.UUID, limit, offset int) ([]*media.SpotPhoto, error) {
	builder := psql.Select(photoColumns).
		From("spot_photos").
		Where(sq.Eq{"spot_id": spotID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list photos query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query photos by spot", err)
	}
	return scanPhotos(rows)
}
