package workers

import (
	"context"
	"testing"
	"time"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopMetrics struct{}

func (nopMetrics) RecordWorkflowExecuted(string, string, time.Duration) {}
func (nopMetrics) RecordMatch(string, bool)                             {}
func (nopMetrics) RecordSemanticFailure(string)                         {}
func (nopMetrics) RecordStageFanout(string, int, int)                   {}
func (nopMetrics) RecordWorkerPoolStatus(int, int, int)                 {}
func (nopMetrics) RecordQueueDepth(int)                                 {}

func newTestPool(t *testing.T, size, queue int, enqueueTimeout time.Duration) *Pool {
	p := NewPool(size, queue, enqueueTimeout, nopMetrics{}, zap.NewNop(), time.Hour)
	require.NoError(t, p.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p
}

func TestPoolSubmitDeliversResult(t *testing.T) {
	p := newTestPool(t, 2, 4, time.Second)

	ch, err := p.Submit(context.Background(), "job-1", func(ctx context.Context) *domain.WorkflowResult {
		return &domain.WorkflowResult{Success: true}
	})
	require.NoError(t, err)

	select {
	case res := <-ch:
		assert.True(t, res.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
}

func TestPoolSaturationRejects(t *testing.T) {
	p := newTestPool(t, 1, 1, 50*time.Millisecond)

	block := make(chan struct{})
	defer close(block)
	job := func(ctx context.Context) *domain.WorkflowResult {
		<-block
		return &domain.WorkflowResult{Success: true}
	}

	// Fill the worker and the queue.
	_, err := p.Submit(context.Background(), "busy", job)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = p.Submit(context.Background(), "queued", job)
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), "rejected", job)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPoolSaturated)
}

func TestPoolSubmitHonorsCallerContext(t *testing.T) {
	p := newTestPool(t, 1, 1, time.Minute)

	block := make(chan struct{})
	defer close(block)
	job := func(ctx context.Context) *domain.WorkflowResult {
		<-block
		return &domain.WorkflowResult{Success: true}
	}

	_, err := p.Submit(context.Background(), "busy", job)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = p.Submit(context.Background(), "queued", job)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Submit(ctx, "cancelled", job)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolQueueDepth(t *testing.T) {
	p := newTestPool(t, 1, 4, time.Second)

	block := make(chan struct{})
	defer close(block)
	job := func(ctx context.Context) *domain.WorkflowResult {
		<-block
		return &domain.WorkflowResult{Success: true}
	}

	_, err := p.Submit(context.Background(), "busy", job)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := p.Submit(context.Background(), "queued", job)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, p.QueueDepth())
}

func TestPoolShutdownStopsWorkers(t *testing.T) {
	p := NewPool(2, 2, time.Second, nopMetrics{}, zap.NewNop(), time.Hour)
	require.NoError(t, p.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	for _, status := range p.GetStatus() {
		assert.Equal(t, WorkerStatusStopped, status)
	}
}
