package upload

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/internal/application/service"
	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/internal/domain/spot"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

// EventPublisher is the slice of the kafka producer the orchestrators need.
type EventPublisher interface {
	PublishMediaEvent(ctx context.Context, payload event.MediaEventPayload) error
}

type PhotoUseCase struct {
	spotRepo    spot.Repository
	photoRepo   media.PhotoRepository
	images      service.ImageProcessor
	store       service.ObjectStorage
	events      EventPublisher
	bucket      string
	concurrency int
	clock       service.Clock
	logger      logger.Logger
}

func NewPhotoUseCase(
	spotRepo spot.Repository,
	photoRepo media.PhotoRepository,
	images service.ImageProcessor,
	store service.ObjectStorage,
	events EventPublisher,
	bucket string,
	concurrency int,
	clock service.Clock,
	log logger.Logger,
) *PhotoUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	if clock == nil {
		clock = time.Now
	}
	return &PhotoUseCase{
		spotRepo:    spotRepo,
		photoRepo:   photoRepo,
		images:      images,
		store:       store,
		events:      events,
		bucket:      bucket,
		concurrency: concurrency,
		clock:       clock,
		logger:      log,
	}
}

type PhotoInput struct {
	SpotID    uuid.UUID
	OwnerID   uuid.UUID
	LocalPath string

	// Dimensions as reported by the capturing client. These are what the
	// record carries, not the optimized file's dimensions.
	Width  int
	Height int

	Location *media.Location

	// DeferSave leaves the metadata write to the caller.
	DeferSave bool
}

type PhotoResult struct {
	Photo *media.SpotPhoto
	Saved bool
}

// Execute runs the full photo pipeline for one asset: optimize (degrade on
// failure), generate both thumbnails (abort on failure), fan the three
// artifacts out to storage concurrently, then write the metadata record.
func (uc *PhotoUseCase) Execute(ctx context.Context, in PhotoInput) (*PhotoResult, error) {
	if in.OwnerID == uuid.Nil {
		return nil, apperror.NewInvalidInput("owner id is required for photo upload", nil)
	}
	if in.LocalPath == "" {
		return nil, apperror.NewInvalidInput("photo file is required", nil)
	}

	optimized, err := uc.images.Optimize(ctx, in.LocalPath)
	if err != nil {
		// Optimize degrades internally; a returned error is a programming
		// bug in the transform adapter, so surface it.
		return nil, apperror.NewInternal("image optimization failed", err)
	}

	small, large, err := uc.images.Thumbnails(ctx, optimized)
	if err != nil {
		return nil, apperror.NewInternal("thumbnail generation failed", err)
	}

	fileID := uuid.New()
	paths := media.NewPhotoPaths(in.SpotID, in.OwnerID, fileID)

	var originalURL, smallURL, largeURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		originalURL, err = uc.store.Upload(gctx, uc.bucket, paths.Original, optimized, "image/jpeg")
		return err
	})
	g.Go(func() error {
		var err error
		smallURL, err = uc.store.Upload(gctx, uc.bucket, paths.ThumbSmall, small, "image/jpeg")
		return err
	})
	g.Go(func() error {
		var err error
		largeURL, err = uc.store.Upload(gctx, uc.bucket, paths.ThumbLarge, large, "image/jpeg")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.NewUnavailable("photo artifact upload failed", err)
	}

	now := uc.clock().UTC()
	photo := &media.SpotPhoto{
		ID:            fileID,
		SpotID:        in.SpotID,
		OwnerID:       in.OwnerID,
		OriginalURL:   originalURL,
		ThumbSmallURL: smallURL,
		ThumbLargeURL: largeURL,
		Width:         in.Width,
		Height:        in.Height,
		TakenAt:       now,
		Location:      in.Location,
		CreatedAt:     now,
	}

	if in.DeferSave {
		return &PhotoResult{Photo: photo, Saved: false}, nil
	}

	return &PhotoResult{Photo: photo, Saved: uc.saveRecord(ctx, photo)}, nil
}

// saveRecord writes the metadata row. A missing spot (spot creation can
// race behind media upload) skips the write with a warning; insert errors
// are logged, not propagated, so a metadata hiccup never loses bytes that
// already reached storage.
func (uc *PhotoUseCase) saveRecord(ctx context.Context, photo *media.SpotPhoto) bool {
	exists, err := uc.spotRepo.Exists(ctx, photo.SpotID)
	if err != nil {
		uc.logger.Warn("spot existence check failed, skipping photo record write",
			zap.String("spot_id", photo.SpotID.String()), zap.Error(err))
		return false
	}
	if !exists {
		uc.logger.Warn("spot does not exist yet, skipping photo record write",
			zap.String("spot_id", photo.SpotID.String()),
			zap.String("photo_id", photo.ID.String()))
		return false
	}

	if err := uc.photoRepo.Save(ctx, photo); err != nil {
		uc.logger.Error("photo record insert failed, artifacts remain in storage", err,
			zap.String("photo_id", photo.ID.String()))
		return false
	}

	uc.publish(photo)
	return true
}

func (uc *PhotoUseCase) publish(photo *media.SpotPhoto) {
	if uc.events == nil {
		return
	}
	go func() {
		payload := event.MediaEventPayload{
			EventType: event.MediaEventTypePhotoUploaded,
			MediaID:   photo.ID,
			SpotID:    photo.SpotID,
			OwnerID:   photo.OwnerID,
			URL:       photo.OriginalURL,
		}
		if err := uc.events.PublishMediaEvent(context.Background(), payload); err != nil {
			uc.logger.Error("failed to publish photo.uploaded event", err,
				zap.String("photo_id", photo.ID.String()))
		}
	}()
}

// ExecuteBatch uploads photos through a bounded worker pool that preserves
// input order. The default pool width of 1 keeps strict sequential
// semantics: a failure aborts before any later photo starts. Results are
// positional; only a fully successful batch returns.
func (uc *PhotoUseCase) ExecuteBatch(ctx context.Context, inputs []PhotoInput) ([]*PhotoResult, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewInvalidInput("no photos provided", nil)
	}

	results := make([]*PhotoResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := uc.Execute(gctx, in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	succeeded := 0
	for _, r := range results {
		if r != nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, apperror.NewInternal("no photos were uploaded", nil)
	}
	return results, nil
}
