package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher()
	data, contentType, err := f.FetchBytes(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestFetchBytesNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	_, _, err := f.FetchBytes(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestFetchBytesDetectsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n        "))
	}))
	defer srv.Close()

	f := NewFetcher()
	_, contentType, err := f.FetchBytes(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}
