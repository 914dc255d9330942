package repository

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
)

// ExecutionRepository is the append-only attempt log of a post.
// The open/close conflict rule is the concurrency control primitive:
// at most one execution per post may be in flight at any instant.
type ExecutionRepository interface {
	// Open mints and durably persists a new in-flight record before the
	// external attempt starts. Fails with model.ErrExecutionConflict when
	// another execution for the post is still open.
	Open(ctx context.Context, postID model.PostID, source execution.Source) (*execution.Execution, error)

	// Close finalizes an opened record. A record that is already closed
	// fails with model.ErrExecutionAlreadyClosed; the stored outcome is
	// never silently overwritten.
	Close(ctx context.Context, exec *execution.Execution) error

	// FindOpen returns the in-flight record for a post, or nil when none
	// exists. A non-nil result on a freshly loaded post signals an
	// interrupted attempt (crash before close).
	FindOpen(ctx context.Context, postID model.PostID) (*execution.Execution, error)

	// List returns all executions oldest first, for retry counting and
	// history inspection.
	List(ctx context.Context, postID model.PostID) ([]*execution.Execution, error)

	// EvidenceDir returns the evidence bundle location for an execution,
	// creating it if needed.
	EvidenceDir(postID model.PostID, execID model.ExecutionID) (string, error)
}
