package post

import (
	"context"
	"strings"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/repository"
	"github.com/kokoromi/redraft/internal/domain/validation"
)

// ExecuteInput controls one save-as-draft attempt.
type ExecuteInput struct {
	PostID model.PostID

	// Force approves the post from any non-terminal status before
	// executing. The bypass is audited: the execution record carries
	// the forced source. Content-safety rules still apply unless
	// ForceUnsafe is also set.
	Force       bool
	ForceUnsafe bool

	DryRun    bool
	LoginHold time.Duration
	Source    execution.Source
}

// ExecuteOutput pairs the updated post with its attempt record.
type ExecuteOutput struct {
	Post      *post.Post
	Execution *execution.Execution
}

// ExecuteUseCase drives one browser-automation attempt for an approved
// post, bracketed by a durable open/close execution record.
type ExecuteUseCase struct {
	Posts      repository.PostRepository
	Executions repository.ExecutionRepository
	Events     repository.EventRepository
	Validator  *validation.Validator
	Driver     Driver
	Timeout    time.Duration
	Now        func() time.Time
}

// Execute runs one attempt. The execution record is persisted before the
// driver starts and closed no matter how the driver ends, including
// timeout and cancellation; the post's status follows the outcome.
// Executions.Open is the sole concurrency gate: any open record, whether
// a live concurrent attempt or one orphaned by a crash, surfaces as
// ErrExecutionConflict for this call only. Orphans show up on load and
// are cleared by recover.
func (uc *ExecuteUseCase) Execute(ctx context.Context, in ExecuteInput) (*ExecuteOutput, error) {
	start := uc.Now()

	p, err := uc.Posts.Load(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	source := in.Source
	if source == "" {
		source = execution.SourceManual
	}

	if in.Force {
		if p.Status == model.StatusSavedDraft {
			return nil, model.ErrInvalidTransition.WithMessage("post %s is already saved_draft", p.ID)
		}
		if !in.ForceUnsafe {
			if res := uc.Validator.Validate(p); len(res.SafetyViolations) > 0 {
				return nil, model.ErrValidationFailed.WithMessage(
					"post %s: safety rules hold under force: %s", p.ID, strings.Join(res.SafetyViolations, "; "))
			}
		}
		if p.Status != model.StatusApproved {
			p.ForceApprove(uc.Now().UTC())
			source = execution.SourceForced
			if err := uc.Posts.Save(ctx, p); err != nil {
				return nil, err
			}
		}
	}

	if p.Status != model.StatusApproved {
		return nil, model.ErrInvalidTransition.WithMessage(
			"post %s is %s, only approved posts execute", p.ID, p.Status)
	}

	exec, err := uc.Executions.Open(ctx, p.ID, source)
	if err != nil {
		return nil, err
	}

	evidenceDir, err := uc.Executions.EvidenceDir(p.ID, exec.ID)
	if err != nil {
		return nil, err
	}

	result := uc.runDriver(ctx, p, in, evidenceDir)

	now := uc.Now().UTC()
	exec.Steps = result.Steps
	if err := exec.Close(result.Outcome, result.Err, result.EvidenceRef, now); err != nil {
		return nil, err
	}
	if err := uc.Executions.Close(ctx, exec); err != nil {
		return nil, err
	}

	p.LatestExecutionID = exec.ID
	if err := p.ApplyOutcome(result.Outcome, now); err != nil {
		return nil, err
	}
	if err := uc.Posts.Save(ctx, p); err != nil {
		return nil, err
	}

	ev := &repository.Event{
		PostID:    p.ID,
		Action:    "execute",
		Status:    p.Status,
		Attempt:   exec.Attempt,
		ElapsedMs: uc.Now().Sub(start).Milliseconds(),
		Details:   map[string]interface{}{"outcome": exec.Outcome.String(), "source": string(exec.Source)},
	}
	if exec.Error != nil {
		ev.Error = exec.Error.Message
	}
	_ = uc.Events.Append(ctx, ev)

	out := &ExecuteOutput{Post: p, Execution: exec}
	if result.Outcome == model.OutcomeFailed {
		derr := model.ErrExecutionFailed
		if result.Err != nil {
			switch result.Err.Kind {
			case model.ErrorKindTimeout:
				derr = model.ErrExecutionTimeout
			}
			return out, derr.WithMessage("post %s attempt %d: %s", p.ID, exec.Attempt, result.Err.Message)
		}
		return out, derr.WithMessage("post %s attempt %d", p.ID, exec.Attempt)
	}
	return out, nil
}

// runDriver invokes the driver under the configured timeout. The driver
// runs in its own goroutine with buffered channels so a hung driver can
// never block the close path.
func (uc *ExecuteUseCase) runDriver(ctx context.Context, p *post.Post, in ExecuteInput, evidenceDir string) *DriverResult {
	req := DriverRequest{
		PostID:      p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Topics:      p.Topics,
		DryRun:      in.DryRun,
		LoginHold:   in.LoginHold,
		EvidenceDir: evidenceDir,
	}
	for _, a := range p.Assets {
		req.Assets = append(req.Assets, a.Path)
	}

	dctx := ctx
	cancel := func() {}
	if uc.Timeout > 0 {
		dctx, cancel = context.WithTimeout(ctx, uc.Timeout)
	}
	defer cancel()

	resCh := make(chan *DriverResult, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := uc.Driver.SaveDraft(dctx, req)
		if err != nil {
			errCh <- err
			return
		}
		resCh <- res
	}()

	select {
	case res := <-resCh:
		if res.Outcome == "" {
			res.Outcome = model.OutcomeFailed
		}
		return res
	case err := <-errCh:
		return &DriverResult{
			Outcome: model.OutcomeFailed,
			Err:     &execution.ExecError{Kind: classifyDriverErr(dctx), Message: err.Error()},
		}
	case <-dctx.Done():
		kind := model.ErrorKindTimeout
		if ctx.Err() != nil {
			kind = model.ErrorKindCancelled
		}
		return &DriverResult{
			Outcome: model.OutcomeFailed,
			Err:     &execution.ExecError{Kind: kind, Message: dctx.Err().Error()},
		}
	}
}

func classifyDriverErr(ctx context.Context) model.ErrorKind {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return model.ErrorKindTimeout
	case context.Canceled:
		return model.ErrorKindCancelled
	}
	return model.ErrorKindAutomation
}
