package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/adapters/ffmpeg"
	httpAdapter "github.com/spothop/media-service/adapters/http"
	"github.com/spothop/media-service/adapters/persistence"
	"github.com/spothop/media-service/adapters/storage"
	mediaUC "github.com/spothop/media-service/internal/application/usecase/media"
	profileUC "github.com/spothop/media-service/internal/application/usecase/profile"
	uploadUC "github.com/spothop/media-service/internal/application/usecase/upload"
	"github.com/spothop/media-service/internal/config"
	"github.com/spothop/media-service/pkg/auth"
	"github.com/spothop/media-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting SpotHop media service...")

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Redis: %v", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot init Kafka: %v", err)
	}
	defer kafkaClient.Close()

	// Repositories
	spotRepo := persistence.NewPostgresSpotRepo(dbPool, appLogger)
	photoRepo := persistence.NewPostgresPhotoRepo(dbPool, appLogger)
	videoRepo := persistence.NewPostgresVideoRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	profileCache := persistence.NewRedisCache(redisClient)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	ops, err := ffmpeg.NewOps(ffmpeg.Config{
		FFmpegPath:        cfg.Media.FFmpegPath,
		FFprobePath:       cfg.Media.FFprobePath,
		TempDir:           cfg.Media.TempDir,
		MaxImageEdge:      cfg.Media.MaxImageEdge,
		ThumbSmallWidth:   cfg.Media.ThumbSmallWidth,
		ThumbLargeWidth:   cfg.Media.ThumbLargeWidth,
		VideoThumbWidth:   cfg.Media.VideoThumbWidth,
		VideoMaxDimension: cfg.Media.VideoMaxDimension,
		VideoBitrateKbps:  cfg.Media.VideoBitrateKbps,
	}, ffmpeg.NewCommandRunner(), appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot init ffmpeg ops: %v", err)
	}

	store := storage.NewClient(
		cfg.Storage.BaseURL,
		storage.StaticTokenSource(cfg.Storage.ServiceKey),
		cfg.Media.UploadAttempts,
		time.Duration(cfg.Media.BackoffBaseMs)*time.Millisecond,
		appLogger,
	)

	// Use cases
	photoUseCase := uploadUC.NewPhotoUseCase(
		spotRepo, photoRepo, ops, store, kafkaClient,
		cfg.Storage.PhotoBucket, cfg.Media.BatchConcurrency, nil, appLogger)
	videoUseCase := uploadUC.NewVideoUseCase(
		videoRepo, ops, store, kafkaClient,
		cfg.Storage.VideoBucket, cfg.Media.EditCapSeconds, cfg.Media.HardCapSeconds,
		nil, appLogger)
	listMediaUseCase := mediaUC.NewListSpotMediaUseCase(photoRepo, videoRepo, spotRepo)
	deletePhotoUseCase := mediaUC.NewDeletePhotoUseCase(photoRepo, store, kafkaClient, cfg.Storage.PhotoBucket, appLogger)
	deleteVideoUseCase := mediaUC.NewDeleteVideoUseCase(videoRepo, store, kafkaClient, cfg.Storage.VideoBucket, appLogger)
	getProfileUseCase := profileUC.NewGetProfileUseCase(profileRepo, profileCache, appLogger)

	// HTTP handlers
	mediaHandler := httpAdapter.NewMediaHandler(
		photoUseCase, videoUseCase, listMediaUseCase,
		deletePhotoUseCase, deleteVideoUseCase,
		ops, cfg.Media.TempDir, appLogger)
	profileHandler := httpAdapter.NewProfileHandler(getProfileUseCase, appLogger)

	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc, appLogger)
	errorMiddleware := httpAdapter.ErrorMiddleware(appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), errorMiddleware)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		api.GET("/spots/:id/media", mediaHandler.ListSpotMedia)
		api.GET("/profiles/:id", profileHandler.GetProfile)

		private := api.Group("/")
		private.Use(authMiddleware)
		{
			private.GET("/me/profile", profileHandler.GetOwnProfile)

			private.POST("/spots/:id/photos", mediaHandler.UploadPhotos)
			private.POST("/spots/:id/video", mediaHandler.UploadVideo)
			private.POST("/uploads/sessions/:id/decision", mediaHandler.DecideRecovery)

			private.DELETE("/photos/:id", mediaHandler.DeletePhoto)
			private.DELETE("/videos/:id", mediaHandler.DeleteVideo)
		}
	}

	appLogger.Info("Server running on port " + cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Cannot run server: %v", err)
	}
}
