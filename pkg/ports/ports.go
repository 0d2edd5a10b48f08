package ports

import (
	"context"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
)

// ImageRef names a remote image passed to a collaborator.
type ImageRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Message is one turn of a chat conversation. Images, when present, are
// attached to the turn in order.
type Message struct {
	Role    string
	Content string
	Images  []ImageRef
}

// ChatRequest is a single chat/completion call. APIKey, when set, overrides
// the client's configured key for this call only (BYOK).
type ChatRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxTokens   int
	APIKey      string
}

// ChatClient talks to an LLM chat collaborator. Implementations return
// domain.ErrExternalService on non-success status or empty replies.
type ChatClient interface {
	Chat(ctx context.Context, req *ChatRequest) (string, error)
}

// GenerateRequest asks for one generated image.
type GenerateRequest struct {
	Prompt       string
	References   []ImageRef
	Tag          string
	AspectRatio  string
	OutputFormat string
	Temperature  float64
	APIKey       string
}

// GenerateResult is a tagged result: either URL or Err is set, never both.
type GenerateResult struct {
	URL    string
	ID     string
	Tag    string
	Source string
	Err    string
}

// Failed reports whether the generation produced no image.
func (r *GenerateResult) Failed() bool { return r.Err != "" }

// ImageGenerator produces images from prompts and reference images. It never
// returns a Go error; failures are carried in the result.
type ImageGenerator interface {
	Generate(ctx context.Context, req *GenerateRequest) *GenerateResult
}

// ArtifactStore persists produced artifact bytes and serves them back by key.
// Callers append a uniqueness token to the key; idempotency is not required.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// Fetcher pulls raw bytes from a URL, returning the payload and its
// content type.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

// EventSink mirrors request-scoped lifecycle events to a process-wide
// destination for observability. Publishing is best-effort; failures must
// never reach the recording caller.
type EventSink interface {
	Publish(ctx context.Context, topic string, requestID string, event domain.Event) error
	Close() error
}

// MetricsCollector records runtime metrics.
type MetricsCollector interface {
	RecordWorkflowExecuted(workflowID, status string, duration time.Duration)
	RecordMatch(tier string, matched bool)
	RecordSemanticFailure(kind string)
	RecordStageFanout(workflowID string, produced, failed int)
	RecordWorkerPoolStatus(idle, busy, stopped int)
	RecordQueueDepth(depth int)
}
