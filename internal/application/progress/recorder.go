package progress

import (
	"context"
	"sync"

	"github.com/atelabs/atelier/pkg/domain"
	"github.com/atelabs/atelier/pkg/ports"
	"go.uber.org/zap"
)

// Topic is the event-sink topic lifecycle events are mirrored to.
const Topic = "workflow.events"

// Recorder is the request-scoped progress/event bus. It keeps two ordered,
// append-only lists (progress and image events) and optionally mirrors every
// recorded event to a live subscriber channel, the logger, and a process-wide
// event sink.
//
// Recording is safe from any goroutine: dependent stages and worker-pool jobs
// record concurrently. The subscriber drains on its own goroutine; the
// recorder never touches subscriber state directly.
type Recorder struct {
	mu       sync.Mutex
	progress []domain.Event
	images   []domain.Event
	sub      chan domain.Event
	closed   bool

	requestID string
	logger    *zap.Logger
	sink      ports.EventSink
}

// New creates a recorder for one request. sink may be nil.
func New(requestID string, logger *zap.Logger, sink ports.EventSink) *Recorder {
	return &Recorder{
		requestID: requestID,
		logger:    logger,
		sink:      sink,
	}
}

// Subscribe attaches a live subscriber channel with the given buffer. Events
// recorded while the buffer is full are dropped from the live stream (they
// stay on the append-only lists). Subscribe must be called before execution
// starts; there is at most one subscriber per request.
func (r *Recorder) Subscribe(buffer int) <-chan domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sub = make(chan domain.Event, buffer)
	return r.sub
}

// Progress records a progress event. waitFor is an estimated wait in seconds,
// 0 means unset.
func (r *Recorder) Progress(stepID string, status domain.ProgressStatus, waitFor int, message string) {
	ev := domain.NewProgressEvent(stepID, status, waitFor, message)

	r.mu.Lock()
	r.progress = append(r.progress, ev)
	r.mirrorLocked(ev)
	r.mu.Unlock()

	r.logger.Info("progress",
		zap.String("request_id", r.requestID),
		zap.String("step", stepID),
		zap.String("status", string(status)))
	r.forward(ev)
}

// Image records an image output event.
func (r *Recorder) Image(url, label string) {
	ev := domain.NewImageEvent(url, label)

	r.mu.Lock()
	r.images = append(r.images, ev)
	r.mirrorLocked(ev)
	r.mu.Unlock()

	r.logger.Info("image",
		zap.String("request_id", r.requestID),
		zap.String("label", label),
		zap.String("url", url))
	r.forward(ev)
}

// DrainProgress returns all recorded progress events in insertion order.
func (r *Recorder) DrainProgress() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.progress))
	copy(out, r.progress)
	return out
}

// DrainImages returns all recorded image events in insertion order.
func (r *Recorder) DrainImages() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.images))
	copy(out, r.images)
	return out
}

// Reset clears both lists. Called at the start of every request so no events
// leak across requests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = nil
	r.images = nil
}

// Close closes the live subscriber channel, if any. Events recorded after
// Close are kept on the lists but no longer mirrored.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.sub != nil {
		close(r.sub)
	}
}

// mirrorLocked sends the event to the live subscriber without blocking.
// Caller holds r.mu, which also serializes sends against Close.
func (r *Recorder) mirrorLocked(ev domain.Event) {
	if r.sub == nil || r.closed {
		return
	}
	select {
	case r.sub <- ev:
	default:
		r.logger.Warn("subscriber channel full, dropping event",
			zap.String("request_id", r.requestID),
			zap.String("type", string(ev.Kind)))
	}
}

// forward mirrors the event to the process-wide sink, fire-and-forget.
func (r *Recorder) forward(ev domain.Event) {
	if r.sink == nil {
		return
	}
	go func() {
		if err := r.sink.Publish(context.Background(), Topic, r.requestID, ev); err != nil {
			r.logger.Debug("event sink publish failed",
				zap.String("request_id", r.requestID),
				zap.Error(err))
		}
	}()
}
