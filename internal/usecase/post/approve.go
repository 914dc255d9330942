package post

import (
	"context"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

// ApproveUseCase moves a validated post to approved, marking it ready
// for execution.
type ApproveUseCase struct {
	Posts  repository.PostRepository
	Events repository.EventRepository
	Now    func() time.Time
}

// Execute approves one post. Only validated posts qualify; anything
// else is an invalid transition.
func (uc *ApproveUseCase) Execute(ctx context.Context, id model.PostID) (*post.Post, error) {
	start := uc.Now()

	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.Transition(model.StatusApproved, uc.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.Posts.Save(ctx, p); err != nil {
		return nil, err
	}

	_ = uc.Events.Append(ctx, &repository.Event{
		PostID:    p.ID,
		Action:    "approve",
		Status:    p.Status,
		ElapsedMs: uc.Now().Sub(start).Milliseconds(),
	})
	return p, nil
}
