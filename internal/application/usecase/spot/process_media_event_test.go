package spot

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spothop/media-service/adapters/event"
	domain "github.com/spothop/media-service/internal/domain/spot"
	"github.com/spothop/media-service/pkg/apperror"
	"github.com/spothop/media-service/pkg/logger"
)

type fakeSpotRepo struct {
	spots     map[uuid.UUID]*domain.Spot
	refreshed []uuid.UUID
	covers    map[uuid.UUID]string
}

func newFakeSpotRepo() *fakeSpotRepo {
	return &fakeSpotRepo{spots: map[uuid.UUID]*domain.Spot{}, covers: map[uuid.UUID]string{}}
}

func (f *fakeSpotRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Spot, error) {
	s, ok := f.spots[id]
	if !ok {
		return nil, apperror.NewNotFound("spot", id.String())
	}
	return s, nil
}

func (f *fakeSpotRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.spots[id]
	return ok, nil
}

func (f *fakeSpotRepo) RefreshMediaCounts(_ context.Context, id uuid.UUID) error {
	f.refreshed = append(f.refreshed, id)
	return nil
}

func (f *fakeSpotRepo) SetCoverURL(_ context.Context, id uuid.UUID, url string) error {
	f.covers[id] = url
	return nil
}

func TestProcessMediaEvent_RefreshesCountsAndPromotesCover(t *testing.T) {
	repo := newFakeSpotRepo()
	spotID := uuid.New()
	repo.spots[spotID] = &domain.Spot{ID: spotID}
	uc := NewProcessMediaEventUseCase(repo, logger.NewNop())

	err := uc.Execute(context.Background(), event.MediaEventPayload{
		EventType: event.MediaEventTypePhotoUploaded,
		SpotID:    spotID,
		URL:       "https://cdn.test/spot-photos/a_720.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{spotID}, repo.refreshed)
	assert.Equal(t, "https://cdn.test/spot-photos/a_720.jpg", repo.covers[spotID])
}

func TestProcessMediaEvent_ExistingCoverIsKept(t *testing.T) {
	repo := newFakeSpotRepo()
	spotID := uuid.New()
	existing := "https://cdn.test/spot-photos/first.jpg"
	repo.spots[spotID] = &domain.Spot{ID: spotID, CoverURL: &existing}
	uc := NewProcessMediaEventUseCase(repo, logger.NewNop())

	err := uc.Execute(context.Background(), event.MediaEventPayload{
		EventType: event.MediaEventTypePhotoUploaded,
		SpotID:    spotID,
		URL:       "https://cdn.test/spot-photos/second.jpg",
	})

	require.NoError(t, err)
	assert.Empty(t, repo.covers, "an established cover is never replaced")
}

func TestProcessMediaEvent_VideoEventDoesNotSetCover(t *testing.T) {
	repo := newFakeSpotRepo()
	spotID := uuid.New()
	repo.spots[spotID] = &domain.Spot{ID: spotID}
	uc := NewProcessMediaEventUseCase(repo, logger.NewNop())

	err := uc.Execute(context.Background(), event.MediaEventPayload{
		EventType: event.MediaEventTypeVideoUploaded,
		SpotID:    spotID,
		URL:       "https://cdn.test/spot-videos/clip.mp4",
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{spotID}, repo.refreshed)
	assert.Empty(t, repo.covers)
}

func TestProcessMediaEvent_MissingSpotIsSkippedNotFailed(t *testing.T) {
	repo := newFakeSpotRepo()
	uc := NewProcessMediaEventUseCase(repo, logger.NewNop())

	err := uc.Execute(context.Background(), event.MediaEventPayload{
		EventType: event.MediaEventTypePhotoUploaded,
		SpotID:    uuid.New(),
	})

	assert.NoError(t, err, "deleted spots must not wedge the consumer")
	assert.Empty(t, repo.refreshed)
}
