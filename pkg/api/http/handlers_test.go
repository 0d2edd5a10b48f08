package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/internal/application/workers"
	"github.com/atelabs/atelier/internal/workflows"
	storagemem "github.com/atelabs/atelier/pkg/adapters/storage/memory"
	"github.com/atelabs/atelier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeImages struct {
	mu   sync.Mutex
	next int
}

func (f *fakeImages) Generate(ctx context.Context, req *ports.GenerateRequest) *ports.GenerateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return &ports.GenerateResult{
		URL:    fmt.Sprintf("http://assets.test/u%d", f.next),
		ID:     fmt.Sprintf("id-%d", f.next),
		Tag:    req.Tag,
		Source: "fake",
	}
}

type countingChat struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (c *countingChat) Chat(ctx context.Context, req *ports.ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.reply, nil
}

func (c *countingChat) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type nopMetrics struct{}

func (nopMetrics) RecordWorkflowExecuted(string, string, time.Duration) {}
func (nopMetrics) RecordMatch(string, bool)                             {}
func (nopMetrics) RecordSemanticFailure(string)                         {}
func (nopMetrics) RecordStageFanout(string, int, int)                   {}
func (nopMetrics) RecordWorkerPoolStatus(int, int, int)                 {}
func (nopMetrics) RecordQueueDepth(int)                                 {}

func newTestServer(t *testing.T) (*Server, *storagemem.ArtifactStore) {
	return newTestServerWithChat(t, nil)
}

func newTestServerWithChat(t *testing.T, chat ports.ChatClient) (*Server, *storagemem.ArtifactStore) {
	registry, err := runtime.NewRegistry(workflows.Definitions())
	require.NoError(t, err)

	pool := workers.NewPool(2, 4, time.Second, nopMetrics{}, zap.NewNop(), time.Hour)
	require.NoError(t, pool.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})

	store := storagemem.NewArtifactStore("http://assets.test")

	service := runtime.NewService(registry, pool, runtime.Deps{
		Chat:    chat,
		Images:  &fakeImages{},
		Store:   store,
		Metrics: nopMetrics{},
		Logger:  zap.NewNop(),
	}, runtime.ServiceConfig{
		SemanticTimeout: time.Second,
		PlanTimeout:     time.Second,
		ChatProvider:    "gemini",
	})

	return NewServer(&Config{
		Port:    0,
		Service: service,
		Store:   store,
		Logger:  zap.NewNop(),
	}), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestHandleListWorkflows(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/workflows", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Total)
}

func TestHandleGetWorkflow(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/workflows/background-remover", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "background-remover", resp.ID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/workflows/no-such-flow", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleUploadAsset(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/assets", jsonBody{
		"data":         base64.StdEncoding.EncodeToString([]byte("png-bytes")),
		"content_type": "image/png",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Key, "upload_")
	assert.Contains(t, resp.Key, ".png")
	assert.Contains(t, resp.URL, resp.Key)

	w = doJSON(t, s, http.MethodGet, "/assets/"+resp.Key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestHandleUploadAssetBadBase64(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/assets", jsonBody{"data": "not base64!!"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExecuteUnknownWorkflow(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/no-such-flow/execute", jsonBody{"inputs": jsonBody{}})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_WORKFLOW")
}

func TestHandleExecuteSuccess(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/background-remover/execute", jsonBody{
		"inputs": jsonBody{"image": "http://in.test/photo.png"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Success)
	assert.NotEmpty(t, resp.Images)
}

func TestHandleExecuteMissingInputs(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/background-remover/execute", jsonBody{
		"inputs": jsonBody{},
	})

	require.Equal(t, http.StatusOK, w.Code, "validation failures are structured results")

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Result.Success)
}

func TestHandleMatch(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/match", jsonBody{
		"prompt": "remove the background from this image",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Matched  bool `json:"matched"`
		Workflow struct {
			ID string `json:"id"`
		} `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "background-remover", resp.Workflow.ID)
}

func TestHandleMatchSemanticToggle(t *testing.T) {
	chat := &countingChat{reply: `{"matched": false, "confidence": 0.2}`}
	s, _ := newTestServerWithChat(t, chat)

	// Two keywords, no pattern: below the fast path, so the semantic tier
	// is consulted unless the request disables it.
	w := doJSON(t, s, http.MethodPost, "/api/v1/match", jsonBody{
		"prompt":       "product in a new scene",
		"use_semantic": false,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Matched  bool `json:"matched"`
		Workflow struct {
			ID string `json:"id"`
		} `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "product-swap", resp.Workflow.ID)
	assert.Equal(t, 0, chat.count(), "use_semantic=false must not reach the chat client")

	// Omitting the flag keeps the semantic tier on.
	w = doJSON(t, s, http.MethodPost, "/api/v1/match", jsonBody{
		"prompt": "product in a new scene",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, chat.count())
}

func TestHandleMatchAndExecute(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/match-and-execute", jsonBody{
		"prompt": "remove the background from this image",
		"inputs": jsonBody{"image": "http://in.test/photo.png"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.Success)
}

func TestHandleMatchAndExecuteNoMatch(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/match-and-execute", jsonBody{
		"prompt": "what is the meaning of life",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_MATCH")
}

func TestHandleGetAsset(t *testing.T) {
	s, store := newTestServer(t)

	_, err := store.Put(context.Background(), "banner_abc123.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, "/assets/banner_abc123.png", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/assets/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// jsonBody is shorthand for request payloads.
type jsonBody = map[string]any
