package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/spothop/media-service/internal/domain/media"
	"github.com/spothop/media-service/internal/domain/spot"
	"github.com/spothop/media-service/pkg/logger"
)

type MediaRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger
	spotRepo    spot.Repository
	photoRepo   media.PhotoRepository
	videoRepo   media.VideoRepository
	testSpot    *spot.Spot
	ownerID     uuid.UUID
}

func (s *MediaRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.testLogger = logger.NewNop()
	s.spotRepo = NewPostgresSpotRepo(s.dbPool, s.testLogger)
	s.photoRepo = NewPostgresPhotoRepo(s.dbPool, s.testLogger)
	s.videoRepo = NewPostgresVideoRepo(s.dbPool, s.testLogger)

	s.ownerID = uuid.New()
	query := `
		INSERT INTO profiles (id, username, display_name, bio)
		VALUES ($1, 'skater01', 'Skater One', '')
	`
	if _, err := s.dbPool.Exec(ctx, query, s.ownerID); err != nil {
		s.T().Fatalf("Failed to seed owner profile: %s", err)
	}

	s.testSpot = &spot.Spot{
		ID:        uuid.New(),
		OwnerID:   s.ownerID,
		Name:      "Courthouse Ledges",
		Latitude:  37.7749,
		Longitude: -122.4194,
	}
	query = `
		INSERT INTO spots (id, owner_id, name, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.dbPool.Exec(ctx, query,
		s.testSpot.ID, s.testSpot.OwnerID, s.testSpot.Name,
		s.testSpot.Latitude, s.testSpot.Longitude)
	if err != nil {
		s.T().Fatalf("Failed to seed spot: %s", err)
	}
}

func (s *MediaRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestMediaRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(MediaRepoIntegrationTestSuite))
}

func (s *MediaRepoIntegrationTestSuite) newPhoto(suffix string) *media.SpotPhoto {
	return &media.SpotPhoto{
		ID:            uuid.New(),
		SpotID:        s.testSpot.ID,
		OwnerID:       s.ownerID,
		OriginalURL:   "https://cdn.test/originals/" + suffix + ".jpg",
		ThumbSmallURL: "https://cdn.test/thumbs/" + suffix + "_240.jpg",
		ThumbLargeURL: "https://cdn.test/thumbs/" + suffix + "_720.jpg",
		Width:         4000,
		Height:        3000,
		TakenAt:       time.Now().UTC().Truncate(time.Microsecond),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *MediaRepoIntegrationTestSuite) Test_SavePhoto_And_FindByID() {
	ctx := context.Background()

	photo := s.newPhoto("a")
	photo.Location = &media.Location{Latitude: 37.77, Longitude: -122.41}

	s.NoError(s.photoRepo.Save(ctx, photo))

	found, err := s.photoRepo.FindByID(ctx, photo.ID)

	s.NoError(err)
	s.NotNil(found)
	s.Equal(photo.OriginalURL, found.OriginalURL)
	s.Equal(photo.Width, found.Width)
	s.Require().NotNil(found.Location)
	s.InDelta(photo.Location.Latitude, found.Location.Latitude, 1e-9)
}

func (s *MediaRepoIntegrationTestSuite) Test_DeletePhoto_EnforcesOwnership() {
	ctx := context.Background()

	photo := s.newPhoto("b")
	s.NoError(s.photoRepo.Save(ctx, photo))

	err := s.photoRepo.Delete(ctx, photo.ID, uuid.New())
	s.Error(err, "a stranger must not be able to delete the photo")

	s.NoError(s.photoRepo.Delete(ctx, photo.ID, s.ownerID))

	_, err = s.photoRepo.FindByID(ctx, photo.ID)
	s.Error(err)
}

func (s *MediaRepoIntegrationTestSuite) Test_SaveVideo_And_ListBySpot() {
	ctx := context.Background()

	video := &media.SpotVideo{
		ID:           uuid.New(),
		SpotID:       s.testSpot.ID,
		OwnerID:      s.ownerID,
		VideoURL:     "https://cdn.test/videos/clip.mp4",
		ThumbnailURL: "https://cdn.test/videos/clip-thumb.jpg",
		Width:        1280,
		Height:       720,
		DurationMs:   9500,
		FileSize:     1 << 20,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	s.NoError(s.videoRepo.Save(ctx, video))

	videos, err := s.videoRepo.ListBySpot(ctx, s.testSpot.ID, 10, 0)

	s.NoError(err)
	s.Require().NotEmpty(videos)
	s.Equal(video.ID, videos[0].ID)
	s.Equal(int64(9500), videos[0].DurationMs)
}

func (s *MediaRepoIntegrationTestSuite) Test_SpotExists_And_RefreshCounts() {
	ctx := context.Background()

	exists, err := s.spotRepo.Exists(ctx, s.testSpot.ID)
	s.NoError(err)
	s.True(exists)

	exists, err = s.spotRepo.Exists(ctx, uuid.New())
	s.NoError(err)
	s.False(exists)

	photo := s.newPhoto("c")
	s.NoError(s.photoRepo.Save(ctx, photo))
	s.NoError(s.spotRepo.RefreshMediaCounts(ctx, s.testSpot.ID))

	found, err := s.spotRepo.FindByID(ctx, s.testSpot.ID)
	s.NoError(err)
	s.GreaterOrEqual(found.PhotoCount, 1)
}

func (s *MediaRepoIntegrationTestSuite) Test_SetCoverURL() {
	ctx := context.Background()

	cover := "https://cdn.test/thumbs/a_720.jpg"
	s.NoError(s.spotRepo.SetCoverURL(ctx, s.testSpot.ID, cover))

	found, err := s.spotRepo.FindByID(ctx, s.testSpot.ID)
	s.NoError(err)
	s.Require().NotNil(found.CoverURL)
	s.Equal(cover, *found.CoverURL)
}
