package repository

import (
	"context"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
)

// PostRepository owns the post projection (state + pointers).
// All writes under a given post id are serialized by the implementation;
// different post ids never block each other.
type PostRepository interface {
	// Allocate mints a collision-free id and creates the backing record
	// in state draft.
	Allocate(ctx context.Context, postType model.PostType) (*post.Post, error)

	// Load fails with model.ErrNotFound for unknown ids.
	Load(ctx context.Context, id model.PostID) (*post.Post, error)

	// Save persists the current projection atomically (temp + rename).
	Save(ctx context.Context, p *post.Post) error

	// List returns all known posts, oldest first. Corrupt records are skipped.
	List(ctx context.Context) ([]*post.Post, error)
}
