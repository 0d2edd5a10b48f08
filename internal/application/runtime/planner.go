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

// A match at or above this confidence makes the plan a single-workflow one.
const planSimpleThreshold = 0.7

const plannerTemperature = 0.2

// Planner turns a free-text request into a task plan. High-confidence
// matches produce a simple one-workflow plan without a model call; everything
// else is broken into steps by the chat collaborator.
type Planner struct {
	registry *Registry
	matcher  *Matcher
	chat     ports.ChatClient
	model    string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPlanner creates a planner sharing the matcher's registry.
func NewPlanner(registry *Registry, matcher *Matcher, chat ports.ChatClient, model string, timeout time.Duration, logger *zap.Logger) *Planner {
	return &Planner{
		registry: registry,
		matcher:  matcher,
		chat:     chat,
		model:    model,
		timeout:  timeout,
		logger:   logger,
	}
}

// Plan builds a task plan for the request. apiKey, when set, overrides the
// chat client's configured key. Plan never returns an error: a failed or
// unparseable model reply yields an empty plan whose reasoning says so.
func (p *Planner) Plan(ctx context.Context, request, apiKey string) *domain.TaskPlan {
	match := p.matcher.Match(ctx, request, true, apiKey)

	if match.Matched && match.Confidence >= planSimpleThreshold {
		return &domain.TaskPlan{
			IsSimple:        true,
			MatchedWorkflow: match.Workflow,
			Confidence:      match.Confidence,
			Steps: []domain.PlanStep{{
				StepNumber:   1,
				Action:       domain.ActionInvokeWorkflow,
				Description:  "Run " + match.Workflow.Name,
				WorkflowID:   match.Workflow.ID,
				InputsNeeded: match.Workflow.RequiredInputs,
			}},
			Reasoning: "request maps directly to a single workflow",
		}
	}

	return p.composePlan(ctx, request, apiKey, match)
}

type plannedStep struct {
	StepNumber   int      `json:"step_number"`
	Action       string   `json:"action"`
	Description  string   `json:"description"`
	WorkflowID   string   `json:"workflow_id"`
	InputsNeeded []string `json:"inputs_needed"`
	DependsOn    []int    `json:"depends_on"`
}

type plannerReply struct {
	Steps     []plannedStep `json:"steps"`
	Reasoning string        `json:"reasoning"`
}

// composePlan asks the chat collaborator to break the request into steps.
func (p *Planner) composePlan(ctx context.Context, request, apiKey string, match *domain.MatchResult) *domain.TaskPlan {
	plan := &domain.TaskPlan{
		IsSimple:   false,
		Confidence: match.Confidence,
		Steps:      []domain.PlanStep{},
	}

	if p.chat == nil {
		plan.Reasoning = "no planner collaborator configured"
		return plan
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reply, err := p.chat.Chat(callCtx, &ports.ChatRequest{
		Messages: []ports.Message{
			{Role: "user", Content: p.buildPrompt(request)},
		},
		Model:       p.model,
		Temperature: plannerTemperature,
		Timeout:     p.timeout,
		APIKey:      apiKey,
	})
	if err != nil {
		p.logger.Warn("planner call failed", zap.Error(err))
		plan.Reasoning = "planning unavailable: " + err.Error()
		return plan
	}

	var parsed plannerReply
	if err := DecodeReply(reply, &parsed); err != nil {
		p.logger.Warn("planner reply unparseable",
			zap.Error(err),
			zap.String("reply", truncate(reply, 200)))
		plan.Reasoning = "planning reply could not be interpreted"
		return plan
	}

	for _, s := range parsed.Steps {
		step := domain.PlanStep{
			StepNumber:   s.StepNumber,
			Action:       normalizeAction(s.Action),
			Description:  s.Description,
			InputsNeeded: s.InputsNeeded,
			DependsOn:    s.DependsOn,
		}
		if step.Action == domain.ActionInvokeWorkflow {
			if _, ok := p.registry.Get(s.WorkflowID); ok {
				step.WorkflowID = s.WorkflowID
			} else {
				step.Action = domain.ActionAskClarifying
				step.Description = s.Description + " (no matching workflow available)"
			}
		}
		plan.Steps = append(plan.Steps, step)
	}
	plan.Reasoning = parsed.Reasoning
	return plan
}

// normalizeAction maps model output to a known action, defaulting to a
// clarifying question rather than inventing work.
func normalizeAction(s string) domain.PlanAction {
	switch domain.PlanAction(strings.ToLower(strings.TrimSpace(s))) {
	case domain.ActionInvokeWorkflow:
		return domain.ActionInvokeWorkflow
	case domain.ActionGatherInformation:
		return domain.ActionGatherInformation
	case domain.ActionAnalyze:
		return domain.ActionAnalyze
	case domain.ActionAskClarifying:
		return domain.ActionAskClarifying
	default:
		return domain.ActionAskClarifying
	}
}

// buildPrompt renders the planning instruction with the workflow catalog.
func (p *Planner) buildPrompt(request string) string {
	var sb strings.Builder
	sb.WriteString("Break the user request into ordered steps. Available workflows:\n")
	for _, desc := range p.registry.List() {
		fmt.Fprintf(&sb, "- id: %s\n  name: %s\n  description: %s\n  required inputs: %s\n",
			desc.Info.ID, desc.Info.Name, desc.Info.Description,
			strings.Join(desc.Info.RequiredInputs, ", "))
	}
	sb.WriteString("\nActions: invoke-workflow, gather-information, analyze, ask-clarifying-question.\n")
	sb.WriteString("User request: ")
	sb.WriteString(request)
	sb.WriteString("\n\nReply with JSON only: ")
	sb.WriteString(`{"steps": [{"step_number": int, "action": string, "description": string, "workflow_id": string, "inputs_needed": [string], "depends_on": [int]}], "reasoning": string}`)
	return sb.String()
}
