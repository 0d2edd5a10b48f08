package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/atelabs/atelier/internal/application/workers"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// Executor dispatches workflow executions against the registry. Workflow
// failures come back as structured results; only an unknown id or a saturated
// pool surfaces as an error.
type Executor struct {
	registry *Registry
	pool     *workers.Pool
	metrics  ports.MetricsCollector
	logger   *zap.Logger
}

// NewExecutor creates an executor over the given registry and pool.
func NewExecutor(registry *Registry, pool *workers.Pool, metrics ports.MetricsCollector, logger *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		pool:     pool,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute resolves workflowID and runs its entry point with the given body.
// Blocking workflows run on the worker pool; the call still awaits the result
// so callers see one synchronous shape either way.
func (e *Executor) Execute(ctx context.Context, ec *ExecContext, workflowID string, body map[string]any) (*domain.WorkflowResult, error) {
	desc, ok := e.registry.Get(workflowID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownWorkflow, workflowID)
	}

	if missing := missingInputs(desc, body); len(missing) > 0 {
		res := domain.Failure(fmt.Sprintf("missing required inputs: %v", missing))
		res.Metadata = map[string]any{"missing_inputs": missing}
		return res, nil
	}

	start := time.Now()

	var res *domain.WorkflowResult
	var err error
	if desc.Blocking {
		res, err = e.runOnPool(ctx, ec, desc, body)
	} else {
		res = e.runInline(ctx, ec, desc, body)
	}
	if err != nil {
		e.metrics.RecordWorkflowExecuted(workflowID, "rejected", time.Since(start))
		return nil, err
	}

	status := "failed"
	if res.Success {
		status = "success"
	}
	e.metrics.RecordWorkflowExecuted(workflowID, status, time.Since(start))

	e.logger.Info("workflow executed",
		zap.String("request_id", ec.RequestID),
		zap.String("workflow_id", workflowID),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)))

	return res, nil
}

// runInline executes the entry point on the caller's goroutine.
func (e *Executor) runInline(ctx context.Context, ec *ExecContext, desc *Descriptor, body map[string]any) *domain.WorkflowResult {
	return e.invoke(ctx, ec, desc, body)
}

// runOnPool hands the entry point to the worker pool and awaits its result.
// The ExecContext travels inside the closure.
func (e *Executor) runOnPool(ctx context.Context, ec *ExecContext, desc *Descriptor, body map[string]any) (*domain.WorkflowResult, error) {
	resultCh, err := e.pool.Submit(ctx, desc.Info.ID, func(jobCtx context.Context) *domain.WorkflowResult {
		return e.invoke(jobCtx, ec, desc, body)
	})
	if err != nil {
		return nil, err
	}

	select {
	case res := <-resultCh:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// invoke runs one entry point, converting panics and returned errors into
// structured failures.
func (e *Executor) invoke(ctx context.Context, ec *ExecContext, desc *Descriptor, body map[string]any) (res *domain.WorkflowResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("workflow panicked",
				zap.String("request_id", ec.RequestID),
				zap.String("workflow_id", desc.Info.ID),
				zap.Any("panic", r))
			res = domain.Failure(fmt.Sprintf("internal error in %s: %v", desc.Info.ID, r))
		}
	}()

	out, err := desc.Entry(ctx, ec, body)
	if err != nil {
		e.logger.Warn("workflow returned error",
			zap.String("request_id", ec.RequestID),
			zap.String("workflow_id", desc.Info.ID),
			zap.Error(err))
		return domain.Failure(err.Error())
	}
	if out == nil {
		return domain.Failure(fmt.Sprintf("workflow %s returned no result", desc.Info.ID))
	}
	return out
}
