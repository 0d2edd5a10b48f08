package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type artifact struct {
	data        []byte
	contentType string
}

// ArtifactStore is an in-memory ArtifactStore for tests and single-node
// setups. No TTL: entries live until the process exits.
type ArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]artifact
	baseURL   string
}

// NewArtifactStore creates a new in-memory artifact store
func NewArtifactStore(baseURL string) *ArtifactStore {
	return &ArtifactStore{
		artifacts: make(map[string]artifact),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// Put stores artifact bytes and returns the public URL they are served at
func (s *ArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.artifacts[key] = artifact{data: stored, contentType: contentType}

	return s.baseURL + "/assets/" + key, nil
}

// Get retrieves artifact bytes and their content type
func (s *ArtifactStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifacts[key]
	if !ok {
		return nil, "", fmt.Errorf("artifact not found: %s", key)
	}
	return a.data, a.contentType, nil
}

// Len returns the number of stored artifacts.
func (s *ArtifactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}
