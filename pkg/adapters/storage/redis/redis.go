package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ArtifactStore implements ArtifactStore using Redis. Artifact bytes and
// their content type live under separate keys with a shared TTL; the URL
// returned by Put points at the service's own /assets/ route.
type ArtifactStore struct {
	client  *redis.Client
	baseURL string
	ttl     time.Duration
	logger  *zap.Logger
}

// NewArtifactStore creates a new Redis artifact store
func NewArtifactStore(client *redis.Client, baseURL string, ttl time.Duration, logger *zap.Logger) *ArtifactStore {
	return &ArtifactStore{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
		logger:  logger,
	}
}

// Put stores artifact bytes and returns the public URL they are served at
func (s *ArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := s.client.Set(ctx, getDataKey(key), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}
	if err := s.client.Set(ctx, getTypeKey(key), contentType, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store artifact type: %w", err)
	}

	s.logger.Debug("artifact stored",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.String("content_type", contentType))

	return s.baseURL + "/assets/" + key, nil
}

// Get retrieves artifact bytes and their content type
func (s *ArtifactStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	data, err := s.client.Get(ctx, getDataKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, "", fmt.Errorf("artifact not found: %s", key)
		}
		return nil, "", fmt.Errorf("failed to get artifact: %w", err)
	}

	contentType, err := s.client.Get(ctx, getTypeKey(key)).Result()
	if err != nil && err != redis.Nil {
		return nil, "", fmt.Errorf("failed to get artifact type: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return data, contentType, nil
}

func getDataKey(key string) string {
	return "atelier:artifact:" + key
}

func getTypeKey(key string) string {
	return "atelier:artifact-type:" + key
}
