package domain

// PlanAction is the kind of work one plan step performs.
type PlanAction string

const (
	ActionInvokeWorkflow    PlanAction = "invoke-workflow"
	ActionGatherInformation PlanAction = "gather-information"
	ActionAnalyze           PlanAction = "analyze"
	ActionAskClarifying     PlanAction = "ask-clarifying-question"
)

// PlanStep is one step of a multi-step task plan.
type PlanStep struct {
	StepNumber   int        `json:"step_number"`
	Action       PlanAction `json:"action"`
	Description  string     `json:"description"`
	WorkflowID   string     `json:"workflow_id,omitempty"`
	InputsNeeded []string   `json:"inputs_needed"`
	DependsOn    []int      `json:"depends_on"`
}

// TaskPlan is the planner's answer for a free-text request. Simple plans
// name a single workflow; complex ones carry ordered, dependency-annotated
// steps. The plan is data only, execution stays with the caller.
type TaskPlan struct {
	IsSimple        bool          `json:"is_simple"`
	MatchedWorkflow *WorkflowInfo `json:"matched_workflow,omitempty"`
	Confidence      float64       `json:"confidence"`
	Steps           []PlanStep    `json:"steps"`
	Reasoning       string        `json:"reasoning"`
}
