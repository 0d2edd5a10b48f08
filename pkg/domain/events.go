package domain

import "time"

// EventKind discriminates lifecycle events on the progress bus.
type EventKind string

const (
	EventKindProgress EventKind = "progress"
	EventKindImage    EventKind = "image"
)

// ProgressStatus is the lifecycle state of one progress step.
type ProgressStatus string

const (
	StatusStarted   ProgressStatus = "started"
	StatusCompleted ProgressStatus = "completed"
	StatusFailed    ProgressStatus = "failed"
)

// Event is one entry on the request-scoped progress bus. Progress events
// use StepID/Status/WaitFor/Message; image events use URL/Label. The flat
// shape matches the wire format streamed to clients.
type Event struct {
	Kind      EventKind      `json:"type"`
	StepID    string         `json:"id,omitempty"`
	Status    ProgressStatus `json:"status,omitempty"`
	WaitFor   int            `json:"wait_for,omitempty"`
	Message   string         `json:"message,omitempty"`
	URL       string         `json:"url,omitempty"`
	Label     string         `json:"label,omitempty"`
	Timestamp float64        `json:"timestamp"`
}

// NewProgressEvent builds a progress event stamped with the current time.
func NewProgressEvent(stepID string, status ProgressStatus, waitFor int, message string) Event {
	return Event{
		Kind:      EventKindProgress,
		StepID:    stepID,
		Status:    status,
		WaitFor:   waitFor,
		Message:   message,
		Timestamp: nowSeconds(),
	}
}

// NewImageEvent builds an image event stamped with the current time.
func NewImageEvent(url, label string) Event {
	return Event{
		Kind:      EventKindImage,
		URL:       url,
		Label:     label,
		Timestamp: nowSeconds(),
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
