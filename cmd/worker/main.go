package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spothop/media-service/adapters/event"
	"github.com/spothop/media-service/adapters/persistence"
	spotUC "github.com/spothop/media-service/internal/application/usecase/spot"
	"github.com/spothop/media-service/internal/config"
	"github.com/spothop/media-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting SpotHop media worker...")

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	spotRepo := persistence.NewPostgresSpotRepo(dbPool, appLogger)
	processMediaEventUC := spotUC.NewProcessMediaEventUseCase(spotRepo, appLogger)

	mediaConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicMediaEvents,
		GroupID:  "spot-media-counter-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer mediaConsumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicMediaEvents))

	ctx := context.Background()
	for {
		msg, err := mediaConsumer.ReadMessage(ctx)
		if err != nil {
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload event.MediaEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Error("Failed to unmarshal event, skipping", err,
				zap.String("key", string(msg.Key)))
			commitMessage(mediaConsumer, msg, appLogger)
			continue
		}

		if err := processMediaEventUC.Execute(ctx, payload); err != nil {
			// Leave the offset uncommitted so the event is retried.
			appLogger.Error("Failed to process media event", err,
				zap.String("spot_id", payload.SpotID.String()))
			continue
		}

		commitMessage(mediaConsumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
