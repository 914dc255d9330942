package post

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

// QueryUseCase answers read-only questions about posts and their logs.
type QueryUseCase struct {
	Posts      repository.PostRepository
	Revisions  repository.RevisionRepository
	Executions repository.ExecutionRepository
	Events     repository.EventRepository
}

// PostDetail is the full read model for one post.
type PostDetail struct {
	Post       *post.Post
	Revisions  []*revision.Revision
	Executions []*execution.Execution

	// Interrupted is set when an execution record is still open, meaning
	// a previous process died mid-attempt.
	Interrupted *execution.Execution
}

// Get loads one post with its append-only logs.
func (uc *QueryUseCase) Get(ctx context.Context, id model.PostID) (*PostDetail, error) {
	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	revs, err := uc.Revisions.List(ctx, id)
	if err != nil {
		return nil, err
	}
	execs, err := uc.Executions.List(ctx, id)
	if err != nil {
		return nil, err
	}
	open, err := uc.Executions.FindOpen(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: p, Revisions: revs, Executions: execs, Interrupted: open}, nil
}

// List returns all posts, optionally filtered by status.
func (uc *QueryUseCase) List(ctx context.Context, status model.Status) ([]*post.Post, error) {
	posts, err := uc.Posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return posts, nil
	}
	var out []*post.Post
	for _, p := range posts {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// EventLog returns the audit journal, optionally filtered by post.
func (uc *QueryUseCase) EventLog(ctx context.Context, id model.PostID) ([]*repository.Event, error) {
	events, err := uc.Events.Load(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return events, nil
	}
	var out []*repository.Event
	for _, ev := range events {
		if ev.PostID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}
