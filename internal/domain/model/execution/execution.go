package execution

import (
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
)

// Source records how an execution attempt was initiated.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
	SourceForced Source = "forced" // validation/approval bypass, audited
)

// ExecError is the structured error recorded on a failed execution.
type ExecError struct {
	Kind    model.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// StepResult captures one automation step of an attempt, for forensics.
type StepResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Execution is one immutable record of an attempt to realize a post on the
// external system. Records are append-only; at most one may be open
// (started but not ended) per post at any instant.
type Execution struct {
	ID          model.ExecutionID `json:"id"`
	PostID      model.PostID      `json:"post_id"`
	Attempt     int               `json:"attempt"`
	Source      Source            `json:"source"`
	Outcome     model.Outcome     `json:"outcome"`
	Error       *ExecError        `json:"error,omitempty"`
	EvidenceRef string            `json:"evidence_ref,omitempty"`
	Steps       []StepResult      `json:"steps,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	EndedAt     *time.Time        `json:"ended_at,omitempty"`
}

// Open creates a new in-flight execution record.
func Open(id model.ExecutionID, postID model.PostID, attempt int, source Source, now time.Time) *Execution {
	return &Execution{
		ID:        id,
		PostID:    postID,
		Attempt:   attempt,
		Source:    source,
		Outcome:   model.OutcomePending,
		StartedAt: now,
	}
}

// IsOpen reports whether the attempt has started but not ended.
func (e *Execution) IsOpen() bool {
	return e.EndedAt == nil
}

// Close finalizes the record. A second close fails loudly with
// ErrExecutionAlreadyClosed; the recorded outcome is never overwritten.
func (e *Execution) Close(outcome model.Outcome, execErr *ExecError, evidenceRef string, now time.Time) error {
	if !e.IsOpen() {
		return model.ErrExecutionAlreadyClosed.WithMessage("execution %s", e.ID)
	}
	if !outcome.IsClosed() {
		return model.ErrExecutionFailed.WithMessage("cannot close with outcome %q", outcome)
	}
	if outcome == model.OutcomeFailed && execErr == nil {
		execErr = &ExecError{Kind: model.ErrorKindAutomation, Message: "unconfirmed save"}
	}
	if outcome != model.OutcomeFailed {
		execErr = nil
	}
	e.Outcome = outcome
	e.Error = execErr
	e.EvidenceRef = evidenceRef
	e.EndedAt = &now
	return nil
}

// AddStep appends an automation step result.
func (e *Execution) AddStep(name, status, detail string) {
	e.Steps = append(e.Steps, StepResult{Name: name, Status: status, Detail: detail})
}

// Duration returns the elapsed attempt time, zero while still open.
func (e *Execution) Duration() time.Duration {
	if e.EndedAt == nil {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}
