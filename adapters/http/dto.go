package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/internal/domain/profile"
)

// Photo DTOs

type PhotoDTO struct {
	ID            uuid.UUID       `json:"id"`
	SpotID        uuid.UUID       `json:"spot_id"`
	OriginalURL   string          `json:"original_url"`
	ThumbSmallURL string          `json:"thumb_small_url"`
	ThumbLargeURL string          `json:"thumb_large_url"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	TakenAt       time.Time       `json:"taken_at"`
	Location      *media.Location `json:"location,omitempty"`
	Saved         bool            `json:"saved"`
}

func ToPhotoDTO(p *media.SpotPhoto, saved bool) PhotoDTO {
	return PhotoDTO{
		ID:            p.ID,
		SpotID:        p.SpotID,
		OriginalURL:   p.OriginalURL,
		ThumbSmallURL: p.ThumbSmallURL,
		ThumbLargeURL: p.ThumbLargeURL,
		Width:         p.Width,
		Height:        p.Height,
		TakenAt:       p.TakenAt,
		Location:      p.Location,
		Saved:         saved,
	}
}

// Video DTOs

type VideoDTO struct {
	ID           uuid.UUID `json:"id"`
	SpotID       uuid.UUID `json:"spot_id"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	DurationMs   int64     `json:"duration_ms"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToVideoDTO(v *media.SpotVideo) VideoDTO {
	return VideoDTO{
		ID:           v.ID,
		SpotID:       v.SpotID,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Width:        v.Width,
		Height:       v.Height,
		DurationMs:   v.DurationMs,
		FileSize:     v.FileSize,
		CreatedAt:    v.CreatedAt,
	}
}

// PhotoUploadItem is the per-file metadata the client attaches to a batch
// upload, positionally matched with the multipart files.
type PhotoUploadItem struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Location *media.Location `json:"location,omitempty"`
}

type RecoveryDecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type RecoverySessionDTO struct {
	SessionID uuid.UUID `json:"session_id"`
	State     string    `json:"state"`
	LastError string    `json:"last_error,omitempty"`
}

// Profile DTOs

type ProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio"`
	SpotCount   int       `json:"spot_count"`
}

func ToProfileDTO(p *profile.Profile) ProfileDTO {
	return ProfileDTO{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
		SpotCount:   p.SpotCount,
	}
}
