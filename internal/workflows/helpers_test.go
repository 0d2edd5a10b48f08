package workflows

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atelabs/atelier/internal/application/progress"
	"github.com/atelabs/atelier/internal/application/runtime"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

type recordingImages struct {
	mu       sync.Mutex
	requests []*ports.GenerateRequest
	failTags map[string]bool
	next     int
}

func (f *recordingImages) Generate(ctx context.Context, req *ports.GenerateRequest) *ports.GenerateResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	f.next++

	if f.failTags[req.Tag] {
		return &ports.GenerateResult{Tag: req.Tag, Source: "fake", Err: "generation failed"}
	}
	return &ports.GenerateResult{
		URL:    fmt.Sprintf("http://assets.test/u%d", f.next),
		ID:     fmt.Sprintf("id-%d", f.next),
		Tag:    req.Tag,
		Source: "fake",
	}
}

func (f *recordingImages) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *recordingImages) all() []*ports.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*ports.GenerateRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

type nopMetrics struct{}

func (nopMetrics) RecordWorkflowExecuted(string, string, time.Duration) {}
func (nopMetrics) RecordMatch(string, bool)                             {}
func (nopMetrics) RecordSemanticFailure(string)                         {}
func (nopMetrics) RecordStageFanout(string, int, int)                   {}
func (nopMetrics) RecordWorkerPoolStatus(int, int, int)                 {}
func (nopMetrics) RecordQueueDepth(int)                                 {}

func newTestExecContext(images *recordingImages) *runtime.ExecContext {
	logger := zap.NewNop()
	return &runtime.ExecContext{
		RequestID: "req-test",
		Progress:  progress.New("req-test", logger, nil),
		Images:    images,
		Metrics:   nopMetrics{},
		Logger:    logger,
	}
}
