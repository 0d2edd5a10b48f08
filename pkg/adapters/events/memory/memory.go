package memory

import (
	"context"
	"sync"

	"github.com/atelabs/atelier/pkg/domain"
)

// Record is one published event with its routing fields.
type Record struct {
	Topic     string
	RequestID string
	Event     domain.Event
}

// Sink is an in-memory EventSink for tests and single-node setups.
type Sink struct {
	mu      sync.Mutex
	records []Record
}

// NewSink creates a new in-memory event sink
func NewSink() *Sink {
	return &Sink{}
}

// Publish records the event in memory
func (s *Sink) Publish(ctx context.Context, topic, requestID string, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{Topic: topic, RequestID: requestID, Event: event})
	return nil
}

// Records returns a copy of everything published so far.
func (s *Sink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Close closes the sink
func (s *Sink) Close() error {
	return nil
}
