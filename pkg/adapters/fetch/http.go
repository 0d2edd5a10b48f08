// Package fetch pulls remote image bytes over HTTP for the adapters that
// need to inline them into provider payloads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
)

const defaultTimeout = 60 * time.Second

// Limit on fetched payloads. Provider payload limits are lower anyway.
const maxFetchBytes = 32 << 20

// Fetcher implements Fetcher over net/http.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a new HTTP fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// FetchBytes downloads a URL and returns its payload and content type
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch %s: %v", domain.ErrExternalService, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrExternalService, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}
