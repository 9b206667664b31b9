package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spothop/media-service/internal/domain/profile"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

const profileColumns = `id, username, display_name, avatar_url, bio,
	spot_count, created_at, updated_at`

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var avatarURL sql.NullString

	err := row.Scan(
		&p.ID, &p.Username, &p.DisplayName, &avatarURL, &p.Bio,
		&p.SpotCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("profile", "")
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}

	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	return p, nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	row := r.db.QueryRow(ctx, query, id)
	return scanProfile(row)
}

func (r *postgresProfileRepo) FindByUsername(ctx context.Context, username string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	row := r.db.QueryRow(ctx, query, username)
	return scanProfile(row)
}
