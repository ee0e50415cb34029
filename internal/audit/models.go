package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names a lifecycle transition recorded in the audit trail.
type Action string

const (
	ActionRecordCreated Action = "record_created"
	ActionRecordUpdated Action = "record_updated"
	ActionRecordDeleted Action = "record_deleted"
)

// Event is emitted by the lifecycle manager after a successful write. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Kind      string    `json:"kind"`
	RecordID  int64     `json:"record_id"`
	Version   int64     `json:"version"`
	Actor     string    `json:"actor"`
	RequestID string    `json:"request_id,omitempty"`
}

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}
