package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/validation"
	"github.com/kokoromi/redraft/internal/infra/repository/postfs"
)

type lifecycleFixture struct {
	store    *postfs.Store
	fs       afero.Fs
	validate *ValidateUseCase
	approve  *ApproveUseCase
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := postfs.NewStore(fs, "data")
	v := validation.New(fs, validation.DefaultLimits())
	return &lifecycleFixture{
		store: store,
		fs:    fs,
		validate: &ValidateUseCase{
			Posts:     store.Posts(),
			Events:    store.Events(),
			Validator: v,
			Now:       time.Now,
		},
		approve: &ApproveUseCase{
			Posts:  store.Posts(),
			Events: store.Events(),
			Now:    time.Now,
		},
	}
}

func (f *lifecycleFixture) draftPost(t *testing.T, valid bool) *post.Post {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.Posts().Allocate(ctx, model.PostTypeImage)
	require.NoError(t, err)

	p.Title = "冬日穿搭"
	p.Body = "三套冬季通勤穿搭分享。"
	if valid {
		require.NoError(t, afero.WriteFile(f.fs, "/assets/cover.jpg", []byte("jpeg"), 0o644))
		p.Assets = []post.Asset{{Path: "/assets/cover.jpg", Kind: "image"}}
	}
	require.NoError(t, f.store.Posts().Save(ctx, p))
	return p
}

func TestValidateMovesDraftToValidated(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	p := f.draftPost(t, true)

	out, err := f.validate.Execute(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidated, out.Post.Status)
	assert.True(t, out.Result.OK())
}

func TestValidateFailureReportsAllViolations(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	p := f.draftPost(t, false) // image post without assets

	out, err := f.validate.Execute(ctx, p.ID)
	require.True(t, errors.Is(err, model.ErrValidationFailed), "got %v", err)
	assert.Equal(t, model.StatusDraft, out.Post.Status, "a failing draft stays draft")
	assert.NotEmpty(t, out.Result.Violations)
}

func TestValidateDemotesStaleValidated(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	p := f.draftPost(t, true)

	_, err := f.validate.Execute(ctx, p.ID)
	require.NoError(t, err)

	// The asset disappears after validation; re-validation demotes.
	require.NoError(t, f.fs.Remove("/assets/cover.jpg"))

	out, err := f.validate.Execute(ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, model.StatusDraft, out.Post.Status)
}

func TestValidateUnknownPost(t *testing.T) {
	f := newLifecycleFixture(t)
	_, err := f.validate.Execute(context.Background(), model.PostID("POST-00000000000000000000000000"))
	assert.True(t, errors.Is(err, model.ErrNotFound), "got %v", err)
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	p := f.draftPost(t, true)

	_, err := f.validate.Execute(ctx, p.ID)
	require.NoError(t, err)

	approved, err := f.approve.Execute(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
}

func TestApproveRejectsDraft(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	p := f.draftPost(t, true)

	_, err := f.approve.Execute(ctx, p.ID)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition),
		"approval requires prior validation, got %v", err)
}
