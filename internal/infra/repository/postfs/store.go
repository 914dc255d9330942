// Package postfs persists the post lifecycle records on a filesystem.
//
// Layout under the store root:
//
//	posts/<post-id>/post.json            current projection (atomic writes)
//	posts/<post-id>/meta.yml             human-browsable sidecar
//	posts/<post-id>/revisions/<id>.json  append-only revision log
//	posts/<post-id>/executions/<id>.json append-only attempt log
//	posts/<post-id>/evidence/<exec-id>/  forensic captures
//	posts/<post-id>/assets/              copied asset files
//	events.ndjson                        process-wide audit journal
package postfs

import (
	"crypto/rand"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

// Store owns the on-disk layout. Writes under a given post id are serialized
// through a per-post mutex; different post ids do not block each other.
type Store struct {
	fs      afero.Fs
	root    string
	now     func() time.Time
	entropy io.Reader

	mu    sync.Mutex
	locks map[model.PostID]*sync.Mutex
}

// Option tunes a Store, mainly for tests.
type Option func(*Store)

// WithClock injects a time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithEntropy injects the random source used for id minting.
func WithEntropy(r io.Reader) Option {
	return func(s *Store) { s.entropy = r }
}

// NewStore creates a store rooted at dir.
func NewStore(fs afero.Fs, dir string, opts ...Option) *Store {
	s := &Store{
		fs:      fs,
		root:    dir,
		now:     time.Now,
		entropy: rand.Reader,
		locks:   map[model.PostID]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs exposes the underlying filesystem for collaborators that write into
// the post directory (asset copies, evidence captures).
func (s *Store) Fs() afero.Fs { return s.fs }

// Posts returns the post projection repository.
func (s *Store) Posts() repository.PostRepository { return &postRepository{s: s} }

// Revisions returns the append-only revision log.
func (s *Store) Revisions() repository.RevisionRepository { return &revisionRepository{s: s} }

// Executions returns the append-only attempt log.
func (s *Store) Executions() repository.ExecutionRepository { return &executionRepository{s: s} }

// Events returns the audit journal.
func (s *Store) Events() repository.EventRepository { return &eventRepository{s: s} }

// lockFor returns the mutex serializing writes for one post id.
func (s *Store) lockFor(id model.PostID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}

func (s *Store) postDir(id model.PostID) string {
	return filepath.Join(s.root, "posts", id.String())
}

func (s *Store) postPath(id model.PostID) string {
	return filepath.Join(s.postDir(id), "post.json")
}

func (s *Store) metaPath(id model.PostID) string {
	return filepath.Join(s.postDir(id), "meta.yml")
}

func (s *Store) revisionsDir(id model.PostID) string {
	return filepath.Join(s.postDir(id), "revisions")
}

func (s *Store) revisionPath(postID model.PostID, revID model.RevisionID) string {
	return filepath.Join(s.revisionsDir(postID), revID.String()+".json")
}

func (s *Store) executionsDir(id model.PostID) string {
	return filepath.Join(s.postDir(id), "executions")
}

func (s *Store) executionPath(postID model.PostID, execID model.ExecutionID) string {
	return filepath.Join(s.executionsDir(postID), execID.String()+".json")
}

func (s *Store) evidenceDir(postID model.PostID, execID model.ExecutionID) string {
	return filepath.Join(s.postDir(postID), "evidence", execID.String())
}

// AssetsDir is where asset files copied into a post live.
func (s *Store) AssetsDir(id model.PostID) string {
	return filepath.Join(s.postDir(id), "assets")
}

func (s *Store) eventsPath() string {
	return filepath.Join(s.root, "events.ndjson")
}
