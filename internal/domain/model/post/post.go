package post

import (
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
)

// SchemaVersion is written into every persisted post projection.
const SchemaVersion = "1.0"

// Classification tags select which extra validation and content rules apply.
const (
	ClassificationNone      = ""
	ClassificationDailyNews = "daily_news"
	ClassificationFakeNews  = "fake_news"
)

// Asset is one local file reference attached to a post.
type Asset struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
	Validated bool   `json:"validated"`
}

// Post is the unit of content tracked through the lifecycle.
// Field names are the stable persisted contract.
type Post struct {
	SchemaVersion     string            `json:"schema_version"`
	ID                model.PostID      `json:"id"`
	Type              model.PostType    `json:"type"`
	Classification    string            `json:"classification,omitempty"`
	Status            model.Status      `json:"status"`
	Title             string            `json:"title"`
	Body              string            `json:"body"`
	Topics            []string          `json:"topics,omitempty"`
	Assets            []Asset           `json:"assets,omitempty"`
	Platform          MetadataBag       `json:"platform,omitempty"`
	CurrentRevisionID model.RevisionID  `json:"current_revision_id,omitempty"`
	LatestExecutionID model.ExecutionID `json:"latest_execution_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// New creates a post in state draft.
func New(id model.PostID, postType model.PostType, now time.Time) *Post {
	return &Post{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Type:          postType,
		Status:        model.StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Transition moves the post along a legal lifecycle edge.
// Illegal edges fail with ErrInvalidTransition and leave the state unchanged.
func (p *Post) Transition(next model.Status, now time.Time) error {
	if !next.IsValid() {
		return model.ErrInvalidTransition.WithMessage("unknown status %q", next)
	}
	if !p.Status.CanTransitionTo(next) {
		return model.ErrInvalidTransition.WithMessage("%s -> %s", p.Status, next)
	}
	p.Status = next
	p.UpdatedAt = now
	return nil
}

// ForceApprove is the explicit override edge: any state -> approved.
// It bypasses the transition table; callers must record the override on the
// resulting execution (source "forced") so the bypass stays auditable.
func (p *Post) ForceApprove(now time.Time) {
	p.Status = model.StatusApproved
	p.UpdatedAt = now
}

// ApplyOutcome maps a closed execution outcome onto the lifecycle.
// A dry run leaves the state untouched.
func (p *Post) ApplyOutcome(outcome model.Outcome, now time.Time) error {
	switch outcome {
	case model.OutcomeSavedDraft:
		return p.Transition(model.StatusSavedDraft, now)
	case model.OutcomeFailed:
		return p.Transition(model.StatusFailed, now)
	case model.OutcomeDryRun:
		return nil
	default:
		return model.ErrInvalidTransition.WithMessage("outcome %q cannot close the lifecycle", outcome)
	}
}

// PointRevision records a newly appended revision as current.
func (p *Post) PointRevision(id model.RevisionID, title, body string, topics []string, now time.Time) {
	p.CurrentRevisionID = id
	p.Title = title
	p.Body = body
	p.Topics = topics
	p.UpdatedAt = now
}

// AddTopic appends a topic if not already present.
func (p *Post) AddTopic(topic string) {
	if topic == "" {
		return
	}
	for _, t := range p.Topics {
		if t == topic {
			return
		}
	}
	p.Topics = append(p.Topics, topic)
}
