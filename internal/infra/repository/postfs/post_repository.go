package postfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	infrafs "github.com/kokoromi/redraft/internal/infra/fs"
)

type postRepository struct {
	s *Store
}

// postMeta is the human-browsable sidecar written next to post.json.
type postMeta struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	UpdatedAt string `yaml:"updated_at"`
}

func (r *postRepository) Allocate(ctx context.Context, postType model.PostType) (*post.Post, error) {
	if !postType.IsValid() {
		return nil, fmt.Errorf("allocate post: invalid type %q", postType)
	}
	now := r.s.now().UTC()
	p := post.New(model.NewPostID(now, r.s.entropy), postType, now)

	lock := r.s.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := r.write(p); err != nil {
		return nil, fmt.Errorf("allocate post %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *postRepository) Load(ctx context.Context, id model.PostID) (*post.Post, error) {
	data, err := afero.ReadFile(r.s.fs, r.s.postPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrNotFound.WithMessage("%s", id)
		}
		return nil, fmt.Errorf("load post %s: %w", id, err)
	}
	var p post.Post
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("load post %s: corrupt projection: %w", id, err)
	}
	return &p, nil
}

func (r *postRepository) Save(ctx context.Context, p *post.Post) error {
	lock := r.s.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()

	if exists, err := afero.Exists(r.s.fs, r.s.postPath(p.ID)); err != nil {
		return fmt.Errorf("save post %s: %w", p.ID, err)
	} else if !exists {
		return model.ErrNotFound.WithMessage("%s", p.ID)
	}
	p.UpdatedAt = r.s.now().UTC()
	if err := r.write(p); err != nil {
		return fmt.Errorf("save post %s: %w", p.ID, err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context) ([]*post.Post, error) {
	root := filepath.Join(r.s.root, "posts")
	infos, err := afero.ReadDir(r.s.fs, root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}

	var posts []*post.Post
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		p, err := r.Load(ctx, model.PostID(info.Name()))
		if err != nil {
			continue // skip corrupt or partial entries
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

// write persists projection plus sidecar; projection goes first so the
// sidecar can never describe a post that does not exist.
func (r *postRepository) write(p *post.Post) error {
	if err := infrafs.WriteJSONAtomic(r.s.fs, r.s.postPath(p.ID), p); err != nil {
		return err
	}
	meta := postMeta{
		ID:        p.ID.String(),
		Title:     p.Title,
		Status:    p.Status.String(),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshal meta.yml: %w", err)
	}
	return infrafs.WriteFileAtomic(r.s.fs, r.s.metaPath(p.ID), data)
}
