package domain

// CallConvention describes how a workflow entry point receives its input.
type CallConvention string

const (
	// ConventionExpandedArgs passes the input fields as discrete, typed
	// parameters. The binder decodes the body into the workflow's args
	// struct at dispatch time.
	ConventionExpandedArgs CallConvention = "expanded"

	// ConventionSingleBodyArg passes the whole input body as one value.
	ConventionSingleBodyArg CallConvention = "body"
)

// WorkflowInfo is the caller-visible summary of a registered workflow.
type WorkflowInfo struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          string   `json:"category,omitempty"`
	Keywords          []string `json:"keywords"`
	RequiredInputs    []string `json:"requiredInputs"`
	EstimatedDuration string   `json:"estimatedDuration,omitempty"`
}

// Asset is one produced artifact, almost always a generated image.
type Asset struct {
	Type     string         `json:"type"`
	URL      string         `json:"url"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WorkflowResult is the uniform result shape every workflow returns.
// Workflow-level failures are carried here as data; only an unknown
// workflow id or a saturated pool surfaces as an error.
type WorkflowResult struct {
	Success      bool           `json:"success"`
	OutputAssets []Asset        `json:"outputAssets"`
	Error        string         `json:"error,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Failure builds a structured failure result.
func Failure(msg string) *WorkflowResult {
	return &WorkflowResult{Success: false, Error: msg, OutputAssets: []Asset{}}
}

// MatchResult is the outcome of matching a free-text prompt against the
// workflow registry. Confidence is always in [0,1].
type MatchResult struct {
	Matched        bool          `json:"matched"`
	Workflow       *WorkflowInfo `json:"workflow,omitempty"`
	Confidence     float64       `json:"confidence"`
	MatchedSignals []string      `json:"matchedSignals"`
}
