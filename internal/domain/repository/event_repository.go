package repository

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model"
)

// Event is one audit record of a lifecycle operation.
type Event struct {
	Timestamp string                 `json:"timestamp"` // UTC RFC3339Nano
	PostID    model.PostID           `json:"post_id"`
	Action    string                 `json:"action"`
	Status    model.Status           `json:"status"`
	Attempt   int                    `json:"attempt,omitempty"`
	ElapsedMs int64                  `json:"elapsed_ms,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// EventRepository is the process-wide append-only audit journal.
type EventRepository interface {
	// Append adds a record to the journal.
	Append(ctx context.Context, event *Event) error

	// Load retrieves all records, oldest first. Corrupt lines are skipped.
	Load(ctx context.Context) ([]*Event, error)
}
