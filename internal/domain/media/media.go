package media

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Location is an optional capture position carried on photo metadata.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SpotPhoto is the durable record of one uploaded photo and its two
// thumbnail derivatives. Width and height are the dimensions the caller
// reported for the source asset, not the optimized file's.
type SpotPhoto struct {
	ID            uuid.UUID `json:"id"`
	SpotID        uuid.UUID `json:"spot_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OriginalURL   string    `json:"original_url"`
	ThumbSmallURL string    `json:"thumb_small_url"`
	ThumbLargeURL string    `json:"thumb_large_url"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	TakenAt       time.Time `json:"taken_at"`
	Location      *Location `json:"location,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SpotVideo is the durable record of one uploaded video and its poster
// thumbnail.
type SpotVideo struct {
	ID           uuid.UUID `json:"id"`
	SpotID       uuid.UUID `json:"spot_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	DurationMs   int64     `json:"duration_ms"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

type PhotoRepository interface {
	Save(ctx context.Context, photo *SpotPhoto) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*SpotPhoto, error)
	ListBySpot(ctx context.Context, spotID uuid.UUID, limit, offset int) ([]*SpotPhoto, error)
}

type VideoRepository interface {
	Save(ctx context.Context, video *SpotVideo) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*SpotVideo, error)
	ListBySpot(ctx context.Context, spotID uuid.UUID, limit, offset int) ([]*SpotVideo, error)
}
