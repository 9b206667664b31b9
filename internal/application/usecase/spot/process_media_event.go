package spot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/internal/domain/spot"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

// ProcessMediaEventUseCase is the worker side of the media pipeline: after
// a record write it refreshes the spot's denormalized counters and, for
// the first photo, promotes its URL to the spot cover.
type ProcessMediaEventUseCase struct {
	spotRepo spot.Repository
	logger   logger.Logger
}

func NewProcessMediaEventUseCase(repo spot.Repository, log logger.Logger) *ProcessMediaEventUseCase {
	return &ProcessMediaEventUseCase{spotRepo: repo, logger: log}
}

func (uc *ProcessMediaEventUseCase) Execute(ctx context.Context, payload event.MediaEventPayload) error {
	l := uc.logger.With(
		zap.String("spot_id", payload.SpotID.String()),
		zap.String("event_type", string(payload.EventType)))
	l.Info("Worker processing media event")

	s, err := uc.spotRepo.FindByID(ctx, payload.SpotID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// The spot may have been deleted between the event and now.
			l.Warn("Spot not found, skipping event")
			return nil
		}
		return apperror.NewInternal("failed to load spot", err)
	}

	if err := uc.spotRepo.RefreshMediaCounts(ctx, payload.SpotID); err != nil {
		return err
	}

	if payload.EventType == event.MediaEventTypePhotoUploaded &&
		(s.CoverURL == nil || *s.CoverURL == "") && payload.URL != "" {
		if err := uc.spotRepo.SetCoverURL(ctx, payload.SpotID, payload.URL); err != nil {
			return err
		}
		l.Info("Promoted photo to spot cover", zap.String("url", payload.URL))
	}

	return nil
}
