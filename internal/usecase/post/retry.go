package post

import (
	"context"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

// RetryUseCase re-approves a failed post and runs another attempt.
// Each retry is a fresh execution record; history is never rewritten.
type RetryUseCase struct {
	Posts  repository.PostRepository
	Events repository.EventRepository
	Runner *ExecuteUseCase
	Now    func() time.Time
}

// Execute retries one failed post. Posts in any other status are
// rejected; use run for approved posts.
func (uc *RetryUseCase) Execute(ctx context.Context, id model.PostID, dryRun bool) (*ExecuteOutput, error) {
	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusFailed {
		return nil, model.ErrInvalidTransition.WithMessage(
			"post %s is %s, only failed posts retry", p.ID, p.Status)
	}

	if err := p.Transition(model.StatusApproved, uc.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.Posts.Save(ctx, p); err != nil {
		return nil, err
	}
	_ = uc.Events.Append(ctx, &repository.Event{
		PostID: p.ID,
		Action: "retry",
		Status: p.Status,
	})

	return uc.Runner.Execute(ctx, ExecuteInput{
		PostID: id,
		DryRun: dryRun,
		Source: execution.SourceManual,
	})
}
