package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/pkg/logger"
)

// EventPublisher is what the delete path needs from the kafka producer.
type EventPublisher interface {
	PublishMediaEvent(ctx context.Context, payload event.MediaEventPayload) error
}

// objectPathFromURL recovers the in-bucket path from a public URL so the
// stored object can be removed alongside the row. Returns "" when the URL
// does not reference the given bucket.
func objectPathFromURL(url, bucket string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return url[idx+len(marker):]
}

// Delete photo

type DeletePhotoUseCase struct {
	photoRepo media.PhotoRepository
	store     service.ObjectStorage
	events    EventPublisher
	bucket    string
	logger    logger.Logger
}

func NewDeletePhotoUseCase(photos media.PhotoRepository, store service.ObjectStorage, events EventPublisher, bucket string, log logger.Logger) *DeletePhotoUseCase {
	return &DeletePhotoUseCase{photoRepo: photos, store: store, events: events, bucket: bucket, logger: log}
}

type DeletePhotoInput struct {
	OwnerID uuid.UUID
	PhotoID uuid.UUID
}

// Execute removes the row first, then best-effort removes the stored
// objects. A row without objects is a bug; orphaned objects are only
// wasted space.
func (uc *DeletePhotoUseCase) Execute(ctx context.Context, in DeletePhotoInput) error {
	p, err := uc.photoRepo.FindByID(ctx, in.PhotoID)
	if err != nil {
		return err
	}

	if err := uc.photoRepo.Delete(ctx, in.PhotoID, in.OwnerID); err != nil {
		return err
	}

	for _, url := range []string{p.OriginalURL, p.ThumbSmallURL, p.ThumbLargeURL} {
		path := objectPathFromURL(url, uc.bucket)
		if path == "" {
			uc.logger.Warn("could not derive object path from photo url", zap.String("url", url))
			continue
		}
		if err := uc.store.Remove(ctx, uc.bucket, path); err != nil {
			uc.logger.Warn("failed to remove photo object", zap.String("path", path), zap.Error(err))
		}
	}

	uc.publishDeleted(p.ID, p.SpotID, in.OwnerID)
	return nil
}

func (uc *DeletePhotoUseCase) publishDeleted(mediaID, spotID, ownerID uuid.UUID) {
	if uc.events == nil {
		return
	}
	go func() {
		payload := event.MediaEventPayload{
			EventType: event.MediaEventTypeMediaDeleted,
			MediaID:   mediaID,
			SpotID:    spotID,
			OwnerID:   ownerID,
		}
		if err := uc.events.PublishMediaEvent(context.Background(), payload); err != nil {
			uc.logger.Error("failed to publish media.deleted event", err,
				zap.String("media_id", mediaID.String()))
		}
	}()
}

// Delete video

type DeleteVideoUseCase struct {
	videoRepo media.VideoRepository
	store     service.ObjectStorage
	events    EventPublisher
	bucket    string
	logger    logger.Logger
}

func NewDeleteVideoUseCase(videos media.VideoRepository, store service.ObjectStorage, events EventPublisher, bucket string, log logger.Logger) *DeleteVideoUseCase {
	return &DeleteVideoUseCase{videoRepo: videos, store: store, events: events, bucket: bucket, logger: log}
}

type DeleteVideoInput struct {
	OwnerID uuid.UUID
	VideoID uuid.UUID
}

func (uc *DeleteVideoUseCase) Execute(ctx context.Context, in DeleteVideoInput) error {
	v, err := uc.videoRepo.FindByID(ctx, in.VideoID)
	if err != nil {
		return err
	}

	if err := uc.videoRepo.Delete(ctx, in.VideoID, in.OwnerID); err != nil {
		return err
	}

	for _, url := range []string{v.VideoURL, v.ThumbnailURL} {
		path := objectPathFromURL(url, uc.bucket)
		if path == "" {
			uc.logger.Warn("could not derive object path from video url", zap.String("url", url))
			continue
		}
		if err := uc.store.Remove(ctx, uc.bucket, path); err != nil {
			uc.logger.Warn("failed to remove video object", zap.String("path", path), zap.Error(err))
		}
	}

	if uc.events != nil {
		go func() {
			payload := event.MediaEventPayload{
				EventType: event.MediaEventTypeMediaDeleted,
				MediaID:   v.ID,
				SpotID:    v.SpotID,
				OwnerID:   in.OwnerID,
			}
			if err := uc.events.PublishMediaEvent(context.Background(), payload); err != nil {
				uc.logger.Error("failed to publish media.deleted event", err,
					zap.String("media_id", v.ID.String()))
			}
		}()
	}
	return nil
}
