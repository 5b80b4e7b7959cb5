// Package history exports session lifecycle events to external systems.
// Only lifecycle transitions are recorded, never individual displacements.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventStarted EventType = "started"
	EventStopped EventType = "stopped"
	EventFailed  EventType = "failed"
)

// Event describes one session lifecycle transition.
type Event struct {
	Type       EventType     `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	PID        int           `json:"pid"`
	Interval   time.Duration `json:"interval"`
	Amplitude  int           `json:"amplitude"`
	Pattern    string        `json:"pattern"`
	Reason     string        `json:"reason,omitempty"` // stop-flag, deadline, interrupt, failure
}

// Sink is a destination for history events (analytics/statistics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
