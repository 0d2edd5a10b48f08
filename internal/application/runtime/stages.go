package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/atelabs/atelier/pkg/domain"
	"go.uber.org/zap"
)

// Bounds on the dependent fan-out of a stage plan.
const (
	MinDependentStages = 1
	MaxDependentStages = 15
)

// ClampVariations bounds a requested variation count to the supported range.
func ClampVariations(n int) int {
	if n < MinDependentStages {
		return MinDependentStages
	}
	if n > MaxDependentStages {
		return MaxDependentStages
	}
	return n
}

// Stage is the primary unit of a stage plan. Its artifact feeds every
// dependent stage.
type Stage struct {
	Label string
	Run   func(ctx context.Context) (*domain.Asset, error)
}

// DependentStage runs after the primary stage, receiving its artifact.
type DependentStage struct {
	Label string
	Run   func(ctx context.Context, primary domain.Asset) (*domain.Asset, error)
}

// StagePlan is a dependency-ordered execution plan: one primary stage, then
// its dependents fanned out concurrently.
type StagePlan struct {
	Workflow      string
	PrimaryStepID string
	FanoutStepID  string
	Primary       Stage
	Dependents    []DependentStage
}

// StageFailure records one failed stage for diagnostics.
type StageFailure struct {
	Label string `json:"label"`
	Error string `json:"error"`
}

// Outcome aggregates a stage plan's results. Assets are ordered primary
// first, then dependents in declaration order regardless of completion order.
type Outcome struct {
	Assets   []domain.Asset
	Failures []StageFailure
}

// Result converts the outcome to the uniform workflow result. The run
// succeeds when at least one artifact was produced; partial failures travel
// as metadata.
func (o *Outcome) Result() *domain.WorkflowResult {
	res := &domain.WorkflowResult{
		Success:      len(o.Assets) > 0,
		OutputAssets: o.Assets,
	}
	if res.OutputAssets == nil {
		res.OutputAssets = []domain.Asset{}
	}
	if len(o.Failures) > 0 {
		res.Metadata = map[string]any{"stage_failures": o.Failures}
		if !res.Success {
			res.Error = o.Failures[0].Error
		}
	}
	return res
}

// RunStages executes a stage plan against the request's execution context.
// The primary stage runs first; its failure aborts the plan, since every
// dependent needs its artifact. Dependents then run concurrently and tolerate
// partial failure. Progress is recorded at stage boundaries; image events are
// emitted at fan-in so asset order is deterministic.
func RunStages(ctx context.Context, ec *ExecContext, plan *StagePlan) *Outcome {
	out := &Outcome{}

	ec.Progress.Progress(plan.PrimaryStepID, domain.StatusStarted, 30, plan.Primary.Label)

	primary, err := runStage(ctx, ec, plan.Workflow, plan.Primary.Label, func(c context.Context) (*domain.Asset, error) {
		return plan.Primary.Run(c)
	})
	if err != nil {
		ec.Progress.Progress(plan.PrimaryStepID, domain.StatusFailed, 0, err.Error())
		out.Failures = append(out.Failures, StageFailure{Label: plan.Primary.Label, Error: err.Error()})
		// Skipped dependents are recorded too, so the diagnostics account
		// for every planned stage.
		for _, dep := range plan.Dependents {
			out.Failures = append(out.Failures, StageFailure{Label: dep.Label, Error: "primary artifact unavailable"})
		}
		ec.Metrics.RecordStageFanout(plan.Workflow, 0, 1+len(plan.Dependents))
		return out
	}

	ec.Progress.Progress(plan.PrimaryStepID, domain.StatusCompleted, 0, plan.Primary.Label)
	out.Assets = append(out.Assets, *primary)
	ec.Progress.Image(primary.URL, plan.Primary.Label)

	if len(plan.Dependents) == 0 {
		ec.Metrics.RecordStageFanout(plan.Workflow, 1, 0)
		return out
	}

	ec.Progress.Progress(plan.FanoutStepID, domain.StatusStarted, 30,
		fmt.Sprintf("Generating %d variations", len(plan.Dependents)))

	assets := make([]*domain.Asset, len(plan.Dependents))
	errs := make([]error, len(plan.Dependents))

	var wg sync.WaitGroup
	for i, dep := range plan.Dependents {
		wg.Add(1)
		go func(i int, dep DependentStage) {
			defer wg.Done()
			assets[i], errs[i] = runStage(ctx, ec, plan.Workflow, dep.Label, func(c context.Context) (*domain.Asset, error) {
				return dep.Run(c, *primary)
			})
		}(i, dep)
	}
	wg.Wait()

	for i := range plan.Dependents {
		if errs[i] != nil {
			out.Failures = append(out.Failures, StageFailure{
				Label: plan.Dependents[i].Label,
				Error: errs[i].Error(),
			})
			continue
		}
		out.Assets = append(out.Assets, *assets[i])
		ec.Progress.Image(assets[i].URL, plan.Dependents[i].Label)
	}

	produced := len(out.Assets) - 1
	status := domain.StatusCompleted
	if produced == 0 {
		status = domain.StatusFailed
	}
	ec.Progress.Progress(plan.FanoutStepID, status, 0,
		fmt.Sprintf("%d of %d variations produced", produced, len(plan.Dependents)))

	ec.Metrics.RecordStageFanout(plan.Workflow, len(out.Assets), len(out.Failures))
	return out
}

// runStage runs one stage function with panic containment, so a single
// misbehaving stage never takes down its siblings.
func runStage(ctx context.Context, ec *ExecContext, workflow, label string, fn func(context.Context) (*domain.Asset, error)) (asset *domain.Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			ec.Logger.Error("stage panicked",
				zap.String("request_id", ec.RequestID),
				zap.String("workflow_id", workflow),
				zap.String("stage", label),
				zap.Any("panic", r))
			asset, err = nil, fmt.Errorf("stage %s: %v", label, r)
		}
	}()

	asset, err = fn(ctx)
	if err == nil && asset == nil {
		err = fmt.Errorf("stage %s produced no artifact", label)
	}
	return asset, err
}
