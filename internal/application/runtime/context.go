package runtime

import (
	"github.com/atelabs/atelier/internal/application/progress"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// KeyOverrides carries per-request API keys (BYOK). Empty fields fall back
// to the process-configured keys inside each adapter.
type KeyOverrides struct {
	Gemini    string
	Anthropic string
}

// ExecContext is the per-request container every workflow receives. It is
// created at the start of request handling and discarded at the end; it is
// never shared across requests. Whenever execution crosses onto the worker
// pool or a spawned goroutine, the ExecContext is captured explicitly in the
// closure; there is no ambient propagation.
type ExecContext struct {
	RequestID string

	// Resolved per-request key overrides. ChatKey matches the configured
	// chat provider; ImageKey is always the Gemini key.
	ChatKey  string
	ImageKey string

	// ChatModel is the model workflows use for in-flight analysis calls.
	ChatModel string

	Progress *progress.Recorder

	Chat    ports.ChatClient
	Images  ports.ImageGenerator
	Store   ports.ArtifactStore
	Fetch   ports.Fetcher
	Metrics ports.MetricsCollector
	Logger  *zap.Logger
}
