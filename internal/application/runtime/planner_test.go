package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPlanner(t *testing.T, chat *fakeChat) *Planner {
	r := testRegistry(t)
	var m *Matcher
	if chat == nil {
		m = NewMatcher(r, nil, "test-model", time.Second, &fakeMetrics{}, zap.NewNop())
		return NewPlanner(r, m, nil, "test-model", time.Second, zap.NewNop())
	}
	m = NewMatcher(r, chat, "test-model", time.Second, &fakeMetrics{}, zap.NewNop())
	return NewPlanner(r, m, chat, "test-model", time.Second, zap.NewNop())
}

func TestPlanSimpleHighConfidence(t *testing.T) {
	p := newTestPlanner(t, nil)

	plan := p.Plan(context.Background(), "remove the background from this photo", "")

	require.True(t, plan.IsSimple)
	require.NotNil(t, plan.MatchedWorkflow)
	assert.Equal(t, "background-remover", plan.MatchedWorkflow.ID)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.ActionInvokeWorkflow, plan.Steps[0].Action)
	assert.Equal(t, "background-remover", plan.Steps[0].WorkflowID)
	assert.Equal(t, []string{"image"}, plan.Steps[0].InputsNeeded)
}

func TestPlanComposedSteps(t *testing.T) {
	chat := &fakeChat{reply: `{
		"steps": [
			{"step_number": 1, "action": "analyze", "description": "Inspect the photos", "inputs_needed": ["image"], "depends_on": []},
			{"step_number": 2, "action": "invoke-workflow", "description": "Swap the product", "workflow_id": "product-swap", "inputs_needed": ["product_image"], "depends_on": [1]}
		],
		"reasoning": "two phase request"
	}`}
	p := newTestPlanner(t, chat)

	plan := p.Plan(context.Background(), "figure out which shot works best and use it", "")

	assert.False(t, plan.IsSimple)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, domain.ActionAnalyze, plan.Steps[0].Action)
	assert.Equal(t, domain.ActionInvokeWorkflow, plan.Steps[1].Action)
	assert.Equal(t, "product-swap", plan.Steps[1].WorkflowID)
	assert.Equal(t, []int{1}, plan.Steps[1].DependsOn)
	assert.Equal(t, "two phase request", plan.Reasoning)
}

func TestPlanUnknownWorkflowStepDowngraded(t *testing.T) {
	chat := &fakeChat{reply: `{
		"steps": [
			{"step_number": 1, "action": "invoke-workflow", "description": "Make coffee", "workflow_id": "make-coffee", "inputs_needed": [], "depends_on": []}
		],
		"reasoning": "x"
	}`}
	p := newTestPlanner(t, chat)

	plan := p.Plan(context.Background(), "do something unusual", "")

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.ActionAskClarifying, plan.Steps[0].Action)
	assert.Empty(t, plan.Steps[0].WorkflowID)
}

func TestPlanUnknownActionDefaultsToClarifying(t *testing.T) {
	chat := &fakeChat{reply: `{
		"steps": [
			{"step_number": 1, "action": "launch-rocket", "description": "??", "inputs_needed": [], "depends_on": []}
		],
		"reasoning": "x"
	}`}
	p := newTestPlanner(t, chat)

	plan := p.Plan(context.Background(), "do something unusual", "")

	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.ActionAskClarifying, plan.Steps[0].Action)
}

func TestPlanChatFailureYieldsEmptyPlan(t *testing.T) {
	chat := &fakeChat{err: errors.New("upstream down")}
	p := newTestPlanner(t, chat)

	plan := p.Plan(context.Background(), "do something unusual", "")

	assert.False(t, plan.IsSimple)
	assert.Empty(t, plan.Steps)
	assert.Contains(t, plan.Reasoning, "planning unavailable")
}

func TestPlanUnparseableReplyYieldsEmptyPlan(t *testing.T) {
	chat := &fakeChat{reply: "I would suggest doing several things"}
	p := newTestPlanner(t, chat)

	plan := p.Plan(context.Background(), "do something unusual", "")

	assert.Empty(t, plan.Steps)
	assert.Contains(t, plan.Reasoning, "could not be interpreted")
}

func TestPlanWithoutChatClient(t *testing.T) {
	p := newTestPlanner(t, nil)

	plan := p.Plan(context.Background(), "do something unusual", "")

	assert.False(t, plan.IsSimple)
	assert.Empty(t, plan.Steps)
}
