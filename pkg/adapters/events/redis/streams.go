package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamSink implements EventSink using Redis Streams. It is publish-only:
// downstream consumers (dashboards, audit pipelines) read the streams with
// their own consumer groups.
type StreamSink struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamSink creates a new Redis Streams event sink
func NewStreamSink(client *redis.Client, logger *zap.Logger) *StreamSink {
	return &StreamSink{
		client: client,
		logger: logger,
	}
}

// Publish appends an event to the topic's stream
func (s *StreamSink) Publish(ctx context.Context, topic, requestID string, event domain.Event) error {
	streamKey := getStreamKey(topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"request_id": requestID,
			"data":       string(data),
		},
	}

	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	s.logger.Debug("event published",
		zap.String("request_id", requestID),
		zap.String("type", string(event.Kind)),
		zap.String("stream", streamKey))

	return nil
}

// Close closes the event sink. The Redis client is owned by the caller.
func (s *StreamSink) Close() error {
	return nil
}

// getStreamKey returns the Redis stream key for a topic
func getStreamKey(topic string) string {
	return fmt.Sprintf("atelier:events:%s", topic)
}
