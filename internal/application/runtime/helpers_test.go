package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atelabs/atelier/internal/application/progress"
	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

type fakeChat struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	lastReq *ports.ChatRequest
}

func (f *fakeChat) Chat(ctx context.Context, req *ports.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeImages struct {
	mu    sync.Mutex
	next  int
	fail  map[int]bool // 0-based call index -> fail
	delay time.Duration
}

func (f *fakeImages) Generate(ctx context.Context, req *ports.GenerateRequest) *ports.GenerateResult {
	f.mu.Lock()
	n := f.next
	f.next++
	shouldFail := f.fail[n]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if shouldFail {
		return &ports.GenerateResult{Tag: req.Tag, Source: "fake", Err: "generation failed"}
	}
	return &ports.GenerateResult{
		URL:    fmt.Sprintf("http://assets.test/u%d", n+1),
		ID:     fmt.Sprintf("id-%d", n+1),
		Tag:    req.Tag,
		Source: "fake",
	}
}

type fakeMetrics struct {
	workflows int64
	matches   int64
	semFails  int64
}

func (f *fakeMetrics) RecordWorkflowExecuted(string, string, time.Duration) {
	atomic.AddInt64(&f.workflows, 1)
}
func (f *fakeMetrics) RecordMatch(string, bool)          { atomic.AddInt64(&f.matches, 1) }
func (f *fakeMetrics) RecordSemanticFailure(string)      { atomic.AddInt64(&f.semFails, 1) }
func (f *fakeMetrics) RecordStageFanout(string, int, int) {}
func (f *fakeMetrics) RecordWorkerPoolStatus(int, int, int) {}
func (f *fakeMetrics) RecordQueueDepth(int)              {}

func testContext() *ExecContext {
	logger := zap.NewNop()
	return &ExecContext{
		RequestID: "req-test",
		Progress:  progress.New("req-test", logger, nil),
		Images:    &fakeImages{},
		Metrics:   &fakeMetrics{},
		Logger:    logger,
	}
}

func testDefinitions() []Definition {
	echo := func(ctx context.Context, ec *ExecContext, body map[string]any) (*domain.WorkflowResult, error) {
		return &domain.WorkflowResult{
			Success:      true,
			OutputAssets: []domain.Asset{{Type: "image", URL: "http://assets.test/echo"}},
			Metadata:     map[string]any{"body": body},
		}, nil
	}

	return []Definition{
		{
			Info: domain.WorkflowInfo{
				ID:             "background-remover",
				Name:           "Background Remover",
				Description:    "Cut the subject out of an image.",
				Keywords:       []string{"background", "remove", "transparent"},
				RequiredInputs: []string{"image"},
			},
			Patterns:   []string{`remove.*background`},
			Convention: domain.ConventionSingleBodyArg,
			Entry:      echo,
		},
		{
			Info: domain.WorkflowInfo{
				ID:          "product-swap",
				Name:        "Product Swap",
				Description: "Swap a product into a scene.",
				Keywords:    []string{"swap", "product"},
			},
			Patterns:   []string{`swap.*product`},
			Convention: domain.ConventionExpandedArgs,
			Entry:      echo,
		},
		{
			Info: domain.WorkflowInfo{
				ID:          "sketch-to-product",
				Name:        "Sketch to Product",
				Description: "Render a sketch into a product photo.",
				Keywords:    []string{"sketch", "render"},
			},
			Convention: domain.ConventionSingleBodyArg,
			Entry:      echo,
		},
	}
}

func testRegistry(t interface{ Fatalf(string, ...any) }) *Registry {
	r, err := NewRegistry(testDefinitions())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return r
}
