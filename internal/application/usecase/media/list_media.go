package media

import (
	"context"

	"github.com/google/uuid"

	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/pkg/apperror"
)

// List

type ListSpotMediaUseCase struct {
	photoRepo media.PhotoRepository
	videoRepo media.VideoRepository
	spotRepo  spotChecker
}

type spotChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

func NewListSpotMediaUseCase(photos media.PhotoRepository, videos media.VideoRepository, spots spotChecker) *ListSpotMediaUseCase {
	return &ListSpotMediaUseCase{photoRepo: photos, videoRepo: videos, spotRepo: spots}
}

type ListSpotMediaInput struct {
	SpotID uuid.UUID
	Limit  int
	Offset int
}

type ListSpotMediaOutput struct {
	Photos []*media.SpotPhoto `json:"photos"`
	Videos []*media.SpotVideo `json:"videos"`
}

func (uc *ListSpotMediaUseCase) Execute(ctx context.Context, in ListSpotMediaInput) (*ListSpotMediaOutput, error) {
	if in.Limit <= 0 {
		in.Limit = 30
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	exists, err := uc.spotRepo.Exists(ctx, in.SpotID)
	if err != nil {
		return nil, apperror.NewInternal("failed to check spot", err)
	}
	if !exists {
		return nil, apperror.NewNotFound("spot", in.SpotID.String())
	}

	photos, err := uc.photoRepo.ListBySpot(ctx, in.SpotID, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	videos, err := uc.videoRepo.ListBySpot(ctx, in.SpotID, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &ListSpotMediaOutput{Photos: photos, Videos: videos}, nil
}
