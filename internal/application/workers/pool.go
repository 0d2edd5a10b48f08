package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// JobFunc is one unit of blocking workflow logic. The execution context the
// workflow needs must be captured in the closure; nothing is propagated
// ambiently across the pool boundary.
type JobFunc func(ctx context.Context) *domain.WorkflowResult

// task pairs a job with its result channel.
type task struct {
	id     string
	ctx    context.Context
	fn     JobFunc
	result chan *domain.WorkflowResult
}

// Pool manages a fixed set of worker goroutines fed by a bounded queue.
// Submit rejects with domain.ErrPoolSaturated when the queue stays full past
// the enqueue timeout, so a saturated pool backs up to the caller instead of
// growing without bound.
type Pool struct {
	size           int
	enqueueTimeout time.Duration
	queue          chan *task
	metrics        ports.MetricsCollector
	logger         *zap.Logger
	health         *HealthMonitor

	workers []*worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// worker represents a single worker goroutine
type worker struct {
	id      string
	pool    *Pool
	status  WorkerStatus
	mu      sync.RWMutex
	lastJob time.Time
}

// WorkerStatus represents worker status
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusBusy    WorkerStatus = "busy"
	WorkerStatusStopped WorkerStatus = "stopped"
)

// NewPool creates a new worker pool
func NewPool(
	size, queueSize int,
	enqueueTimeout time.Duration,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	healthCheckInterval time.Duration,
) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		size:           size,
		enqueueTimeout: enqueueTimeout,
		queue:          make(chan *task, queueSize),
		metrics:        metrics,
		logger:         logger,
		workers:        make([]*worker, size),
		ctx:            ctx,
		cancel:         cancel,
	}

	pool.health = NewHealthMonitor(pool, healthCheckInterval, logger)

	return pool
}

// Start starts the worker pool
func (p *Pool) Start() error {
	p.logger.Info("starting worker pool",
		zap.Int("size", p.size),
		zap.Int("queue", cap(p.queue)))

	for i := 0; i < p.size; i++ {
		w := &worker{
			id:      fmt.Sprintf("worker-%d", i),
			pool:    p,
			status:  WorkerStatusIdle,
			lastJob: time.Now(),
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(p.ctx)
	}

	p.health.Start()

	p.logger.Info("worker pool started", zap.Int("workers", p.size))
	return nil
}

// Submit enqueues a blocking job and returns a channel that delivers its
// single result. The job runs with the caller's ctx; the channel is buffered
// so an abandoned caller never wedges a worker.
func (p *Pool) Submit(ctx context.Context, id string, fn JobFunc) (<-chan *domain.WorkflowResult, error) {
	t := &task{
		id:     id,
		ctx:    ctx,
		fn:     fn,
		result: make(chan *domain.WorkflowResult, 1),
	}

	timer := time.NewTimer(p.enqueueTimeout)
	defer timer.Stop()

	select {
	case p.queue <- t:
		return t.result, nil
	case <-timer.C:
		return nil, fmt.Errorf("enqueue %s: %w", id, domain.ErrPoolSaturated)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, fmt.Errorf("enqueue %s: pool shut down", id)
	}
}

// QueueDepth returns the number of queued, not yet running jobs.
func (p *Pool) QueueDepth() int {
	return len(p.queue)
}

// Shutdown gracefully shuts down the worker pool
func (p *Pool) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down worker pool")

	p.health.Stop()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout")
	}
}

// GetStatus returns the status of all workers
func (p *Pool) GetStatus() map[string]WorkerStatus {
	status := make(map[string]WorkerStatus)
	for _, w := range p.workers {
		w.mu.RLock()
		status[w.id] = w.status
		w.mu.RUnlock()
	}
	return status
}

// run is the main worker loop
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()

	w.pool.logger.Info("worker started", zap.String("worker_id", w.id))

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.status = WorkerStatusStopped
			w.mu.Unlock()
			w.pool.logger.Info("worker stopped", zap.String("worker_id", w.id))
			return

		case t := <-w.pool.queue:
			w.execute(t)
		}
	}
}

// execute runs one job and delivers its result.
func (w *worker) execute(t *task) {
	w.mu.Lock()
	w.status = WorkerStatusBusy
	w.lastJob = time.Now()
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.status = WorkerStatusIdle
		w.mu.Unlock()
	}()

	w.pool.logger.Debug("executing job",
		zap.String("worker_id", w.id),
		zap.String("job_id", t.id))

	start := time.Now()
	res := t.fn(t.ctx)
	t.result <- res

	w.pool.logger.Debug("job finished",
		zap.String("worker_id", w.id),
		zap.String("job_id", t.id),
		zap.Bool("success", res != nil && res.Success),
		zap.Duration("duration", time.Since(start)))
}
