package model

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// PostID identifies a post. Immutable once minted; used as the storage key
// for the post projection, its revisions, executions and evidence.
type PostID string

// NewPostID mints a fresh ULID-based post ID.
func NewPostID(now time.Time, entropy io.Reader) PostID {
	return PostID("POST-" + ulid.MustNew(ulid.Timestamp(now), entropy).String())
}

// ParsePostID validates an externally supplied post ID.
func ParsePostID(s string) (PostID, error) {
	if !strings.HasPrefix(s, "POST-") || len(s) != len("POST-")+26 {
		return "", errors.New("malformed post ID: " + s)
	}
	if _, err := ulid.ParseStrict(strings.TrimPrefix(s, "POST-")); err != nil {
		return "", errors.New("malformed post ID: " + s)
	}
	return PostID(s), nil
}

func (id PostID) String() string { return string(id) }

// RevisionID identifies one immutable content snapshot of a post.
// ULIDs sort lexicographically by creation time, which keeps the revision
// log ordered without a separate sequence number.
type RevisionID string

// NewRevisionID mints a fresh ULID-based revision ID.
func NewRevisionID(now time.Time, entropy io.Reader) RevisionID {
	return RevisionID("REV-" + ulid.MustNew(ulid.Timestamp(now), entropy).String())
}

func (id RevisionID) String() string { return string(id) }

// ExecutionID identifies one attempt to realize a post on the external site.
type ExecutionID string

// NewExecutionID mints a fresh ULID-based execution ID.
func NewExecutionID(now time.Time, entropy io.Reader) ExecutionID {
	return ExecutionID("EXEC-" + ulid.MustNew(ulid.Timestamp(now), entropy).String())
}

func (id ExecutionID) String() string { return string(id) }

// Status represents the lifecycle state of a post.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusValidated  Status = "validated"
	StatusApproved   Status = "approved"
	StatusSavedDraft Status = "saved_draft" // terminal success
	StatusFailed     Status = "failed"      // terminal failure, retriable
)

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusValidated, StatusApproved, StatusSavedDraft, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states with no outgoing regular transitions.
// failed still allows the explicit retry edge back to approved.
func (s Status) IsTerminal() bool {
	return s == StatusSavedDraft
}

// CanTransitionTo checks if a status transition is valid.
// Generation appends a revision without changing state, so draft→draft is
// not listed here. The force-execute override bypasses this table and is
// handled separately by the lifecycle controller.
func (s Status) CanTransitionTo(next Status) bool {
	validTransitions := map[Status][]Status{
		StatusDraft:      {StatusValidated},
		StatusValidated:  {StatusApproved, StatusDraft},
		StatusApproved:   {StatusSavedDraft, StatusFailed},
		StatusFailed:     {StatusApproved},
		StatusSavedDraft: {},
	}

	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == next {
			return true
		}
	}
	return false
}

// PostType represents the content type of a post.
type PostType string

const (
	PostTypeImage   PostType = "image"
	PostTypeVideo   PostType = "video"
	PostTypeArticle PostType = "article"
)

// String returns the string representation
func (t PostType) String() string {
	return string(t)
}

// IsValid validates the post type
func (t PostType) IsValid() bool {
	switch t {
	case PostTypeImage, PostTypeVideo, PostTypeArticle:
		return true
	default:
		return false
	}
}

// RequiresAssets returns true if posts of this type must carry at least
// one visual asset before approval.
func (t PostType) RequiresAssets() bool {
	return t == PostTypeImage || t == PostTypeVideo
}

// Outcome is the result of one execution attempt.
type Outcome string

const (
	OutcomePending    Outcome = "pending" // opened, not yet closed
	OutcomeSavedDraft Outcome = "saved_draft"
	OutcomeFailed     Outcome = "failed"
	OutcomeDryRun     Outcome = "dry_run"
)

// String returns the string representation
func (o Outcome) String() string {
	return string(o)
}

// IsClosed returns true once the outcome is final.
func (o Outcome) IsClosed() bool {
	return o == OutcomeSavedDraft || o == OutcomeFailed || o == OutcomeDryRun
}

// ErrorKind classifies an execution failure.
type ErrorKind string

const (
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindCancelled   ErrorKind = "cancelled"
	ErrorKindAutomation  ErrorKind = "automation"
	ErrorKindInterrupted ErrorKind = "interrupted" // crash-recovery close
)
