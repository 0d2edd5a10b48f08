package runtime

import (
	"time"

	"github.com/atelabs/atelier/internal/application/progress"
	"github.com/atelabs/atelier/internal/application/workers"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// Deps are the external collaborators the runtime wires together.
type Deps struct {
	Chat    ports.ChatClient
	Images  ports.ImageGenerator
	Store   ports.ArtifactStore
	Fetch   ports.Fetcher
	Metrics ports.MetricsCollector
	Sink    ports.EventSink
	Logger  *zap.Logger
}

// ServiceConfig carries the runtime's tunables.
type ServiceConfig struct {
	MatcherModel    string
	PlannerModel    string
	AnalysisModel   string
	SemanticTimeout time.Duration
	PlanTimeout     time.Duration

	// ChatProvider decides which BYOK header key the chat client gets.
	ChatProvider string
}

// Service is the application facade the transports talk to.
type Service struct {
	Registry *Registry
	Executor *Executor
	Matcher  *Matcher
	Planner  *Planner

	deps Deps
	cfg  ServiceConfig
}

// NewService assembles the runtime over a compiled registry and worker pool.
func NewService(registry *Registry, pool *workers.Pool, deps Deps, cfg ServiceConfig) *Service {
	executor := NewExecutor(registry, pool, deps.Metrics, deps.Logger)
	matcher := NewMatcher(registry, deps.Chat, cfg.MatcherModel, cfg.SemanticTimeout, deps.Metrics, deps.Logger)
	planner := NewPlanner(registry, matcher, deps.Chat, cfg.PlannerModel, cfg.PlanTimeout, deps.Logger)

	return &Service{
		Registry: registry,
		Executor: executor,
		Matcher:  matcher,
		Planner:  planner,
		deps:     deps,
		cfg:      cfg,
	}
}

// ChatKey resolves which of the per-request keys feeds the configured chat
// provider.
func (s *Service) ChatKey(keys KeyOverrides) string {
	if s.cfg.ChatProvider == "anthropic" {
		return keys.Anthropic
	}
	return keys.Gemini
}

// NewContext builds the per-request execution context, including a fresh
// progress recorder wired to the logger and event sink.
func (s *Service) NewContext(requestID string, keys KeyOverrides) *ExecContext {
	chatKey := s.ChatKey(keys)

	return &ExecContext{
		RequestID: requestID,
		ChatKey:   chatKey,
		ImageKey:  keys.Gemini,
		ChatModel: s.cfg.AnalysisModel,
		Progress:  progress.New(requestID, s.deps.Logger, s.deps.Sink),
		Chat:      s.deps.Chat,
		Images:    s.deps.Images,
		Store:     s.deps.Store,
		Fetch:     s.deps.Fetch,
		Metrics:   s.deps.Metrics,
		Logger:    s.deps.Logger,
	}
}
