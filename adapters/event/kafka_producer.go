package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/spothop/media-service/internal/config"
)

const TopicMediaEvents = "media.events"

type MediaEventType string

const (
	MediaEventTypePhotoUploaded MediaEventType = "media.photo.uploaded"
	MediaEventTypeVideoUploaded MediaEventType = "media.video.uploaded"
	MediaEventTypeMediaDeleted  MediaEventType = "media.deleted"
)

// MediaEventPayload is the message written after a media record changes.
// The worker consumes it to refresh denormalized spot counters.
type MediaEventPayload struct {
	EventType MediaEventType `json:"event_type"`
	MediaID   uuid.UUID      `json:"media_id"`
	SpotID    uuid.UUID      `json:"spot_id"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	URL       string         `json:"url,omitempty"`
}

type KafkaProducerClient struct {
	MediaEventsWriter *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	mediaWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicMediaEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{MediaEventsWriter: mediaWriter}, nil
}

// PublishMediaEvent writes one event keyed by spot id so per-spot ordering
// survives partitioning.
func (c *KafkaProducerClient) PublishMediaEvent(ctx context.Context, payload MediaEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal media event: %w", err)
	}
	return c.MediaEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.SpotID.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) Close() {
	if c.MediaEventsWriter != nil {
		c.MediaEventsWriter.Close()
	}
}
