package postfs

import (
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
	"github.com/kokoromi/redraft/internal/domain/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(afero.NewMemMapFs(), "data")
}

func TestPostAllocateLoadSave(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	posts := store.Posts()

	p, err := posts.Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, p.Status)

	loaded, err := posts.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Type, loaded.Type)

	loaded.Title = "冬日穿搭"
	require.NoError(t, posts.Save(ctx, loaded))

	again, err := posts.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "冬日穿搭", again.Title)
	assert.False(t, again.UpdatedAt.Before(p.UpdatedAt))
}

func TestPostLoadUnknownID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Posts().Load(context.Background(), model.NewPostID(time.Now(), rand.Reader))
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
}

func TestPostSaveRequiresExistingRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)
	p.ID = model.NewPostID(time.Now(), rand.Reader) // unknown id

	err = store.Posts().Save(ctx, p)
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
}

func TestPostMetaSidecar(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data")

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, filepath.Join("data", "posts", p.ID.String(), "meta.yml"))
	require.NoError(t, err)
	assert.True(t, exists, "meta.yml sidecar should be written with the projection")
}

func TestPostAllocateInvalidType(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Posts().Allocate(context.Background(), model.PostType("carousel"))
	assert.Error(t, err)
}

func TestPostListSkipsCorruptRecords(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data")

	first, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)
	second, err := store.Posts().Allocate(ctx, model.PostTypeArticle)
	require.NoError(t, err)

	// A corrupt projection must not take the whole listing down.
	require.NoError(t, afero.WriteFile(fs,
		filepath.Join("data", "posts", "POST-BROKEN", "post.json"),
		[]byte("{nope"), 0o644))

	listed, err := store.Posts().List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	ids := []model.PostID{listed[0].ID, listed[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestRevisionAppendAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	base := time.Now().UTC()
	var want []model.RevisionID
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		rev := revision.New(model.NewRevisionID(at, rand.Reader), p.ID, revision.SourceLLM, at)
		rev.Title = "title"
		rev.Body = "body"
		require.NoError(t, store.Revisions().Append(ctx, rev))
		want = append(want, rev.ID)
	}

	revs, err := store.Revisions().List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	for i, rev := range revs {
		assert.Equal(t, want[i], rev.ID, "revision log must keep creation order")
	}
}

func TestRevisionAppendRefusesExistingID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	now := time.Now().UTC()
	rev := revision.New(model.NewRevisionID(now, rand.Reader), p.ID, revision.SourceLLM, now)
	require.NoError(t, store.Revisions().Append(ctx, rev))

	err = store.Revisions().Append(ctx, rev)
	assert.Error(t, err, "revisions are append-only, never rewritten")
}

func TestExecutionOpenConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	first, err := store.Executions().Open(ctx, p.ID, execution.SourceManual)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Attempt)

	_, err = store.Executions().Open(ctx, p.ID, execution.SourceManual)
	assert.True(t, errors.Is(err, model.ErrExecutionConflict), "got %v", err)
}

func TestExecutionAttemptNumbering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		exec, err := store.Executions().Open(ctx, p.ID, execution.SourceManual)
		require.NoError(t, err)
		assert.Equal(t, want, exec.Attempt)

		require.NoError(t, exec.Close(model.OutcomeFailed, nil, "", time.Now().UTC()))
		require.NoError(t, store.Executions().Close(ctx, exec))
	}

	execs, err := store.Executions().List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, execs, 3)
	for i, exec := range execs {
		assert.Equal(t, i+1, exec.Attempt)
	}
}

func TestExecutionCloseAlreadyClosed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	exec, err := store.Executions().Open(ctx, p.ID, execution.SourceManual)
	require.NoError(t, err)
	require.NoError(t, exec.Close(model.OutcomeSavedDraft, nil, "", time.Now().UTC()))
	require.NoError(t, store.Executions().Close(ctx, exec))

	err = store.Executions().Close(ctx, exec)
	assert.True(t, errors.Is(err, model.ErrExecutionAlreadyClosed), "got %v", err)
}

func TestExecutionFindOpenSurvivesReload(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data")

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	opened, err := store.Executions().Open(ctx, p.ID, execution.SourceAuto)
	require.NoError(t, err)

	// A fresh store over the same filesystem stands in for a process
	// restart after a crash mid-attempt.
	restarted := NewStore(fs, "data")
	orphan, err := restarted.Executions().FindOpen(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan, "in-flight record must be durable before the attempt starts")
	assert.Equal(t, opened.ID, orphan.ID)

	require.NoError(t, orphan.Close(model.OutcomeFailed,
		&execution.ExecError{Kind: model.ErrorKindInterrupted, Message: "crash"}, "", time.Now().UTC()))
	require.NoError(t, restarted.Executions().Close(ctx, orphan))

	none, err := restarted.Executions().FindOpen(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestExecutionEvidenceDir(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data")

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)
	exec, err := store.Executions().Open(ctx, p.ID, execution.SourceManual)
	require.NoError(t, err)

	dir, err := store.Executions().EvidenceDir(p.ID, exec.ID)
	require.NoError(t, err)

	isDir, err := afero.IsDir(fs, dir)
	require.NoError(t, err)
	assert.True(t, isDir)
}

func TestEventJournal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	for _, action := range []string{"generate", "validate", "approve"} {
		require.NoError(t, store.Events().Append(ctx, &repository.Event{
			PostID: p.ID,
			Action: action,
			Status: model.StatusDraft,
		}))
	}

	events, err := store.Events().Load(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "generate", events[0].Action)
	assert.Equal(t, "approve", events[2].Action)
	for _, ev := range events {
		assert.NotEmpty(t, ev.Timestamp, "append fills the timestamp")
	}
}

func TestEventJournalSkipsCorruptLines(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data")

	require.NoError(t, store.Events().Append(ctx, &repository.Event{Action: "generate"}))

	// Simulate a torn write at the end of the journal.
	f, err := fs.OpenFile(filepath.Join("data", "events.ndjson"), os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"action": "val`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := store.Events().Load(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestConcurrentSavesSerialize(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loaded, err := store.Posts().Load(ctx, p.ID)
			if err != nil {
				t.Error(err)
				return
			}
			loaded.Title = "并发标题"
			if err := store.Posts().Save(ctx, loaded); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	final, err := store.Posts().Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "并发标题", final.Title)
}
