package repository

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
)

// RevisionRepository is the append-only revision log of a post.
type RevisionRepository interface {
	// Append stores a new immutable revision record. The revision file must
	// be durable before the caller updates the post's current_revision_id,
	// so the pointer can never reference a missing record.
	Append(ctx context.Context, rev *revision.Revision) error

	// List returns the post's revisions oldest first, for audit.
	List(ctx context.Context, postID model.PostID) ([]*revision.Revision, error)
}
