package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DATASET_READY").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete implementation every publisher uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the pipeline.
const (
	TypeSessionConcluded = "SESSION_CONCLUDED"
	TypeDatasetReady     = "DATASET_READY"
	TypePipelineFailed   = "PIPELINE_FAILED"
)

// NewSessionConcluded is emitted when a qualification dialogue ends and a
// summary handoff has been persisted.
func NewSessionConcluded(sessionID, summary string) BaseEvent {
	return BaseEvent{
		Type: TypeSessionConcluded,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"summary":    summary,
		},
		OccurredAt: time.Now(),
	}
}

// NewDatasetReady is emitted when a normalized dataset has been persisted
// and the session switched to grounded mode.
func NewDatasetReady(sessionID string, records int, tokenCount int) BaseEvent {
	return BaseEvent{
		Type: TypeDatasetReady,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"records":     records,
			"token_count": tokenCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewPipelineFailed is emitted when a run ends without a dataset.
func NewPipelineFailed(sessionID, status string) BaseEvent {
	return BaseEvent{
		Type: TypePipelineFailed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"status":     status,
		},
		OccurredAt: time.Now(),
	}
}
