package post

import (
	"context"
	"strings"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/repository"
	"github.com/kokoromi/redraft/internal/domain/validation"
)

// ValidateUseCase runs the publishability rules and moves the post
// between draft and validated accordingly.
type ValidateUseCase struct {
	Posts     repository.PostRepository
	Events    repository.EventRepository
	Validator *validation.Validator
	Now       func() time.Time
}

// ValidateOutput reports the rule outcome alongside the updated post.
type ValidateOutput struct {
	Post   *post.Post
	Result validation.Result
}

// Execute validates one post. A passing draft becomes validated; a
// failing validated post drops back to draft. The full violation set is
// always reported.
func (uc *ValidateUseCase) Execute(ctx context.Context, id model.PostID) (*ValidateOutput, error) {
	start := uc.Now()

	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	result := uc.Validator.Validate(p)
	now := uc.Now().UTC()

	var transitionErr error
	switch {
	case result.OK():
		if p.Status == model.StatusDraft {
			transitionErr = p.Transition(model.StatusValidated, now)
		}
	default:
		if p.Status == model.StatusValidated {
			transitionErr = p.Transition(model.StatusDraft, now)
		}
	}
	if transitionErr != nil {
		return nil, transitionErr
	}

	if err := uc.Posts.Save(ctx, p); err != nil {
		return nil, err
	}

	ev := &repository.Event{
		PostID:    p.ID,
		Action:    "validate",
		Status:    p.Status,
		ElapsedMs: uc.Now().Sub(start).Milliseconds(),
	}
	if !result.OK() {
		ev.Error = strings.Join(result.Violations, "; ")
	}
	_ = uc.Events.Append(ctx, ev)

	out := &ValidateOutput{Post: p, Result: result}
	if !result.OK() {
		return out, model.ErrValidationFailed.WithMessage("post %s: %s", p.ID, strings.Join(result.Violations, "; "))
	}
	return out, nil
}
