package revision

import (
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
)

// Source records which collaborator produced a revision.
type Source string

const (
	SourceLLM             Source = "llm"
	SourceFallbackOffline Source = "fallback-offline"
	SourceFakeNewsTmpl    Source = "fake-news-template"
	SourceHumanEdit       Source = "human_edit"
)

// IsValid validates the source
func (s Source) IsValid() bool {
	switch s {
	case SourceLLM, SourceFallbackOffline, SourceFakeNewsTmpl, SourceHumanEdit:
		return true
	default:
		return false
	}
}

// Revision is one immutable generated-content snapshot for a post.
// Revisions are strictly append-only: never mutated, never deleted.
type Revision struct {
	ID         model.RevisionID `json:"id"`
	PostID     model.PostID     `json:"post_id"`
	Source     Source           `json:"source"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Topics     []string         `json:"topics,omitempty"`
	AssetsPlan []string         `json:"assets_plan,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// New creates a revision snapshot for a post.
func New(id model.RevisionID, postID model.PostID, source Source, now time.Time) *Revision {
	return &Revision{
		ID:        id,
		PostID:    postID,
		Source:    source,
		CreatedAt: now,
	}
}
