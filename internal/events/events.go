// Package events publishes aggregation run lifecycle events.
package events

import "time"

// Type enumerates run lifecycle events.
type Type string

const (
	TypeRunStarted   Type = "run_started"
	TypeRunCompleted Type = "run_completed"
	TypeRunFailed    Type = "run_failed"
)

// RunEvent is the JSON payload published for each lifecycle transition.
type RunEvent struct {
	Type         Type      `json:"type"`
	RunID        string    `json:"run_id"`
	Timestamp    time.Time `json:"timestamp"`
	Repositories int       `json:"repositories,omitempty"`
	Documents    int       `json:"documents,omitempty"`
	Conflicts    int       `json:"conflicts,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Publisher emits run events. Implementations must tolerate being called
// concurrently with pipeline shutdown.
type Publisher interface {
	Publish(event RunEvent) error
	Close()
}

// NoopPublisher discards all events; the default when events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(RunEvent) error { return nil }
func (NoopPublisher) Close()                 {}
