package spot

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Spot is the parent entity media attaches to. This service only reads it
// (existence checks before metadata writes) and maintains its denormalized
// media counters from the worker.
type Spot struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	PhotoCount int       `json:"photo_count"`
	VideoCount int       `json:"video_count"`
	CoverURL   *string   `json:"cover_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Spot, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	RefreshMediaCounts(ctx context.Context, id uuid.UUID) error
	SetCoverURL(ctx context.Context, id uuid.UUID, url string) error
}
