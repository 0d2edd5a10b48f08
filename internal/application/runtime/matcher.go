package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// Confidence thresholds of the matching cascade. The rule tier short-circuits
// at the fast-path threshold; otherwise the semantic tier gets a try and its
// answer is accepted above its own threshold; otherwise the rule score is
// reused as a low-confidence fallback.
const (
	ruleFastPath   = 0.8
	semanticAccept = 0.6
	ruleFallback   = 0.3
)

// Rule-tier scoring weights.
const (
	keywordWeight = 0.2
	keywordCap    = 0.6
	patternWeight = 0.4
)

const matcherTemperature = 0.1

// Matcher resolves free-text prompts to registered workflows through a
// three-tier confidence cascade.
type Matcher struct {
	registry *Registry
	chat     ports.ChatClient
	model    string
	timeout  time.Duration
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewMatcher creates a matcher. chat may be nil, in which case the semantic
// tier is skipped and only the rule tiers apply.
func NewMatcher(registry *Registry, chat ports.ChatClient, model string, timeout time.Duration, metrics ports.MetricsCollector, logger *zap.Logger) *Matcher {
	return &Matcher{
		registry: registry,
		chat:     chat,
		model:    model,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Match runs the cascade. useSemantic toggles the semantic tier per call;
// when false only the rule tiers apply. apiKey, when set, overrides the chat
// client's configured key for the semantic call. Match never returns an
// error: semantic-tier failures degrade to the rule fallback.
func (m *Matcher) Match(ctx context.Context, prompt string, useSemantic bool, apiKey string) *domain.MatchResult {
	best, score, signals := m.ruleMatch(prompt)

	if best != nil && score >= ruleFastPath {
		m.metrics.RecordMatch("rule", true)
		m.logger.Debug("rule tier matched",
			zap.String("workflow_id", best.Info.ID),
			zap.Float64("confidence", score))
		return &domain.MatchResult{
			Matched:        true,
			Workflow:       &best.Info,
			Confidence:     score,
			MatchedSignals: signals,
		}
	}

	if useSemantic {
		// An explicit no-match answer from the collaborator is not accepted
		// outright, whatever its confidence; the rule fallback still gets
		// its turn.
		if sem := m.semanticMatch(ctx, prompt, apiKey); sem != nil && sem.Matched && sem.Confidence >= semanticAccept {
			m.metrics.RecordMatch("semantic", true)
			return sem
		}
	}

	if best != nil && score >= ruleFallback {
		m.metrics.RecordMatch("fallback", true)
		return &domain.MatchResult{
			Matched:        true,
			Workflow:       &best.Info,
			Confidence:     score,
			MatchedSignals: signals,
		}
	}

	m.metrics.RecordMatch("none", false)
	return &domain.MatchResult{Matched: false, Confidence: score, MatchedSignals: signals}
}

// ruleMatch scores every registered workflow against the prompt and returns
// the best descriptor with its score and the signals that fired. Keywords
// contribute a capped share of the score, patterns the rest.
func (m *Matcher) ruleMatch(prompt string) (*Descriptor, float64, []string) {
	lower := strings.ToLower(prompt)

	var best *Descriptor
	var bestScore float64
	var bestSignals []string

	for _, desc := range m.registry.List() {
		var score float64
		var signals []string

		var kwScore float64
		for _, kw := range desc.Info.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				kwScore += keywordWeight
				signals = append(signals, "keyword:"+kw)
			}
		}
		if kwScore > keywordCap {
			kwScore = keywordCap
		}
		score += kwScore

		for i, re := range desc.patterns {
			if re.MatchString(prompt) {
				score += patternWeight
				signals = append(signals, "pattern:"+desc.Patterns[i])
				break
			}
		}

		if score > 1.0 {
			score = 1.0
		}
		if score > bestScore {
			best = desc
			bestScore = score
			bestSignals = signals
		}
	}

	return best, bestScore, bestSignals
}

type semanticReply struct {
	Matched    bool    `json:"matched"`
	WorkflowID string  `json:"workflow_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// semanticMatch asks the chat collaborator to pick a workflow. Any failure
// (transport, parse, hallucinated id) is logged and counted, never raised;
// the cascade falls back to the rule score.
func (m *Matcher) semanticMatch(ctx context.Context, prompt, apiKey string) *domain.MatchResult {
	if m.chat == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	reply, err := m.chat.Chat(callCtx, &ports.ChatRequest{
		Messages: []ports.Message{
			{Role: "user", Content: m.buildPrompt(prompt)},
		},
		Model:       m.model,
		Temperature: matcherTemperature,
		Timeout:     m.timeout,
		APIKey:      apiKey,
	})
	if err != nil {
		m.metrics.RecordSemanticFailure("transport")
		m.logger.Warn("semantic tier failed", zap.Error(err))
		return nil
	}

	var parsed semanticReply
	if err := DecodeReply(reply, &parsed); err != nil {
		m.metrics.RecordSemanticFailure("parse")
		m.logger.Warn("semantic tier reply unparseable",
			zap.Error(err),
			zap.String("reply", truncate(reply, 200)))
		return nil
	}

	if !parsed.Matched {
		return &domain.MatchResult{Matched: false, Confidence: parsed.Confidence}
	}

	desc, ok := m.registry.Get(parsed.WorkflowID)
	if !ok {
		m.metrics.RecordSemanticFailure("unknown-id")
		m.logger.Warn("semantic tier named unknown workflow",
			zap.String("workflow_id", parsed.WorkflowID))
		return nil
	}

	conf := parsed.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return &domain.MatchResult{
		Matched:        true,
		Workflow:       &desc.Info,
		Confidence:     conf,
		MatchedSignals: []string{"semantic"},
	}
}

// buildPrompt renders the semantic-tier instruction with the full catalog.
func (m *Matcher) buildPrompt(userPrompt string) string {
	var sb strings.Builder
	sb.WriteString("You match a user request to one of the available workflows.\n")
	sb.WriteString("Available workflows:\n")
	for _, desc := range m.registry.List() {
		fmt.Fprintf(&sb, "- id: %s\n  name: %s\n  description: %s\n",
			desc.Info.ID, desc.Info.Name, desc.Info.Description)
	}
	sb.WriteString("\nUser request: ")
	sb.WriteString(userPrompt)
	sb.WriteString("\n\nReply with JSON only: ")
	sb.WriteString(`{"matched": bool, "workflow_id": string, "confidence": number between 0 and 1, "reasoning": string}`)
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
