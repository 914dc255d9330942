package post

import (
	"context"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

// RecoverUseCase closes execution records orphaned by a crash. An open
// record on load means the process died between open and close; the
// attempt's real outcome is unknown, so it is closed as failed with the
// interrupted kind and the post moves to failed for an explicit retry.
type RecoverUseCase struct {
	Posts      repository.PostRepository
	Executions repository.ExecutionRepository
	Events     repository.EventRepository
	Now        func() time.Time
}

// Execute recovers one post. Returns the closed record, or nil when
// there was nothing to recover.
func (uc *RecoverUseCase) Execute(ctx context.Context, id model.PostID) (*execution.Execution, error) {
	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	orphan, err := uc.Executions.FindOpen(ctx, id)
	if err != nil {
		return nil, err
	}
	if orphan == nil {
		return nil, nil
	}

	now := uc.Now().UTC()
	execErr := &execution.ExecError{
		Kind:    model.ErrorKindInterrupted,
		Message: "process exited before the attempt finished",
	}
	if err := orphan.Close(model.OutcomeFailed, execErr, "", now); err != nil {
		return nil, err
	}
	if err := uc.Executions.Close(ctx, orphan); err != nil {
		return nil, err
	}

	p.LatestExecutionID = orphan.ID
	if p.Status == model.StatusApproved {
		if err := p.ApplyOutcome(model.OutcomeFailed, now); err != nil {
			return nil, err
		}
	}
	if err := uc.Posts.Save(ctx, p); err != nil {
		return nil, err
	}

	_ = uc.Events.Append(ctx, &repository.Event{
		PostID:  p.ID,
		Action:  "recover",
		Status:  p.Status,
		Attempt: orphan.Attempt,
		Error:   execErr.Message,
	})
	return orphan, nil
}

// ExecuteAll sweeps every post and recovers any with an open record.
func (uc *RecoverUseCase) ExecuteAll(ctx context.Context) ([]*execution.Execution, error) {
	posts, err := uc.Posts.List(ctx)
	if err != nil {
		return nil, err
	}
	var closed []*execution.Execution
	for _, p := range posts {
		rec, err := uc.Execute(ctx, p.ID)
		if err != nil {
			return closed, err
		}
		if rec != nil {
			closed = append(closed, rec)
		}
	}
	return closed, nil
}
