package post

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
	"github.com/kokoromi/redraft/internal/domain/repository"
	"github.com/kokoromi/redraft/internal/domain/validation"
)

// CreateDraftInput seeds one draft creation.
type CreateDraftInput struct {
	Title      string
	Prompt     string
	AssetPaths []string
	CopyAssets bool
	AutoImage  bool

	// NoFallback turns generation failures into errors instead of offline
	// fallback content; the post then stays in draft with the failure
	// recorded and no revision.
	NoFallback bool
}

// CreateDraftUseCase allocates a post, runs the content collaborators and
// records the first revision. Generation failures never open an execution
// record; they are a distinguished error class.
type CreateDraftUseCase struct {
	Posts     repository.PostRepository
	Revisions repository.RevisionRepository
	Events    repository.EventRepository

	Generator Generator
	News      NewsSource
	Images    ImageSource

	FS           afero.Fs
	AssetsDirFor func(model.PostID) string

	NewsQuery string
	Now       func() time.Time
	Rand      io.Reader
}

// Execute creates one post with its first revision.
func (uc *CreateDraftUseCase) Execute(ctx context.Context, in CreateDraftInput) (*post.Post, error) {
	posts, err := uc.ExecuteBatch(ctx, in, 1)
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// ExecuteBatch creates count posts. In daily-news mode without a prompt
// hint the picks are distinct candidates from one feed fetch; otherwise
// the creations are independent traversals.
func (uc *CreateDraftUseCase) ExecuteBatch(ctx context.Context, in CreateDraftInput, count int) ([]*post.Post, error) {
	if count < 1 {
		return nil, fmt.Errorf("create draft: count must be >= 1")
	}

	classification := classifyTitle(in.Title)
	if classification == post.ClassificationDailyNews {
		return uc.createDailyNews(ctx, in, count)
	}

	var out []*post.Post
	for i := 0; i < count; i++ {
		p, err := uc.createOne(ctx, in, classification, nil, newsMeta{})
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// newsMeta carries the platform bag payload for daily-news posts.
type newsMeta struct {
	mode      string
	fetchErr  string
	pickIndex int
	pickTotal int
}

func (uc *CreateDraftUseCase) createDailyNews(ctx context.Context, in CreateDraftInput, count int) ([]*post.Post, error) {
	hint := strings.TrimSpace(in.Prompt)
	query := uc.NewsQuery
	if hint != "" {
		query = hint
	}

	mode := "daily_news"
	if count > 1 {
		mode = "daily_news_multi"
	}

	candidates, err := uc.News.FetchCandidates(ctx, query)
	if err != nil || len(candidates) == 0 {
		// Degrade to normal generation, recording the fetch failure.
		reason := "no candidates"
		if err != nil {
			reason = err.Error()
		}
		p, cerr := uc.createOne(ctx, in, post.ClassificationDailyNews, nil, newsMeta{mode: mode, fetchErr: reason})
		if cerr != nil {
			return nil, cerr
		}
		return []*post.Post{p}, nil
	}

	picks := pickNewsItems(candidates, hint, count)
	var out []*post.Post
	for idx, picked := range picks {
		item := picked
		p, err := uc.createOne(ctx, in, post.ClassificationDailyNews, &item, newsMeta{
			mode:      mode,
			pickIndex: idx + 1,
			pickTotal: len(picks),
		})
		if err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (uc *CreateDraftUseCase) createOne(ctx context.Context, in CreateDraftInput, classification string, picked *NewsItem, meta newsMeta) (*post.Post, error) {
	start := uc.Now()

	p, err := uc.Posts.Allocate(ctx, model.PostTypeImage)
	if err != nil {
		return nil, err
	}
	p.Classification = classification

	genInput := uc.buildGenerateInput(in, classification, picked, meta)
	if err := uc.recordClassificationMeta(p, in, classification, picked, meta); err != nil {
		return nil, err
	}

	draft, genErr := uc.Generator.Generate(ctx, genInput)
	if genErr != nil {
		if in.NoFallback {
			// No content was ever produced: the post stays in draft with
			// the failure reason recorded and no revision appended.
			_ = p.Platform.Set("generation.error", genErr.Error())
			if err := uc.Posts.Save(ctx, p); err != nil {
				return nil, err
			}
			uc.appendEvent(ctx, p, "generate", start, genErr)
			return nil, model.ErrGenerationUnavailable.WithMessage("post %s: %v", p.ID, genErr)
		}
		draft = uc.fallbackDraft(in, classification, picked)
		_ = p.Platform.Set("generation.fallback_error", genErr.Error())
	}

	if classification == post.ClassificationFakeNews {
		draft.Body = validation.EnsureDisclaimer(draft.Body)
	}

	if err := uc.attachAssets(ctx, p, in, picked); err != nil {
		return nil, err
	}

	if err := uc.commitDraft(ctx, p, draft, start); err != nil {
		return nil, err
	}
	return p, nil
}

// Regenerate appends a fresh revision to an existing draft and repoints
// it; the lifecycle state does not move. Posts past draft are rejected,
// so validated content cannot drift without re-validation.
func (uc *CreateDraftUseCase) Regenerate(ctx context.Context, id model.PostID, in CreateDraftInput) (*post.Post, error) {
	start := uc.Now()

	p, err := uc.Posts.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.StatusDraft {
		return nil, model.ErrInvalidTransition.WithMessage(
			"post %s is %s, only draft posts regenerate", p.ID, p.Status)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = p.Title
	}
	genInput := GenerateInput{TitleHint: title, PromptHint: in.Prompt}
	if p.Classification == post.ClassificationFakeNews {
		genInput = GenerateInput{TitleHint: TitleFakeNews, PromptHint: fakeNewsPrompt(in.Prompt)}
	}

	draft, genErr := uc.Generator.Generate(ctx, genInput)
	if genErr != nil {
		if in.NoFallback {
			_ = p.Platform.SetDefault("generation.error", genErr.Error())
			if err := uc.Posts.Save(ctx, p); err != nil {
				return nil, err
			}
			uc.appendEvent(ctx, p, "generate", start, genErr)
			return nil, model.ErrGenerationUnavailable.WithMessage("post %s: %v", p.ID, genErr)
		}
		draft = uc.fallbackDraft(CreateDraftInput{Title: title, Prompt: in.Prompt}, p.Classification, nil)
		_ = p.Platform.SetDefault("generation.fallback_error", genErr.Error())
	}

	if p.Classification == post.ClassificationFakeNews {
		draft.Body = validation.EnsureDisclaimer(draft.Body)
	}

	if err := uc.commitDraft(ctx, p, draft, start); err != nil {
		return nil, err
	}
	return p, nil
}

// commitDraft turns generated content into a durable revision and moves
// the post's pointer to it.
func (uc *CreateDraftUseCase) commitDraft(ctx context.Context, p *post.Post, draft *Draft, start time.Time) error {
	now := uc.Now().UTC()
	rev := revision.New(model.NewRevisionID(now, uc.Rand), p.ID, draft.Source, now)
	rev.Title = draft.Title
	rev.Body = draft.Body
	rev.Topics = draft.Topics
	for _, a := range p.Assets {
		rev.AssetsPlan = append(rev.AssetsPlan, a.Path)
	}

	// Revision first, pointer second: both become visible or neither does.
	if err := uc.Revisions.Append(ctx, rev); err != nil {
		return err
	}
	p.PointRevision(rev.ID, draft.Title, draft.Body, draft.Topics, now)
	if p.Classification == post.ClassificationFakeNews {
		p.AddTopic(TitleFakeNews)
	}
	if err := uc.Posts.Save(ctx, p); err != nil {
		return err
	}

	uc.appendEvent(ctx, p, "generate", start, nil)
	return nil
}

func (uc *CreateDraftUseCase) buildGenerateInput(in CreateDraftInput, classification string, picked *NewsItem, meta newsMeta) GenerateInput {
	switch classification {
	case post.ClassificationDailyNews:
		if picked != nil {
			prompt := dailyNewsPrompt(*picked, in.Prompt)
			if meta.pickTotal > 1 {
				prompt = fmt.Sprintf("（第 %d/%d 条）\n%s", meta.pickIndex, meta.pickTotal, prompt)
			}
			return GenerateInput{TitleHint: TitleDailyNews, PromptHint: prompt, AssetPaths: in.AssetPaths}
		}
		return GenerateInput{
			TitleHint:  in.Title,
			PromptHint: fmt.Sprintf("%s\n(news_fetch_failed: %s)", in.Prompt, meta.fetchErr),
			AssetPaths: in.AssetPaths,
		}
	case post.ClassificationFakeNews:
		return GenerateInput{TitleHint: TitleFakeNews, PromptHint: fakeNewsPrompt(in.Prompt), AssetPaths: in.AssetPaths}
	default:
		return GenerateInput{TitleHint: in.Title, PromptHint: in.Prompt, AssetPaths: in.AssetPaths}
	}
}

func (uc *CreateDraftUseCase) recordClassificationMeta(p *post.Post, in CreateDraftInput, classification string, picked *NewsItem, meta newsMeta) error {
	switch classification {
	case post.ClassificationDailyNews:
		payload := map[string]interface{}{
			"mode":        meta.mode,
			"prompt_hint": strings.TrimSpace(in.Prompt),
		}
		if meta.fetchErr != "" {
			payload["error"] = meta.fetchErr
		}
		if picked != nil {
			payload["picked"] = picked
			if meta.pickTotal > 1 {
				payload["pick_index"] = meta.pickIndex
				payload["pick_total"] = meta.pickTotal
			}
		}
		return p.Platform.Set("news", payload)
	case post.ClassificationFakeNews:
		return p.Platform.Set("fake_news", map[string]interface{}{
			"is_fiction":  true,
			"tone":        "humor",
			"prompt_hint": strings.TrimSpace(in.Prompt),
		})
	default:
		return nil
	}
}

func (uc *CreateDraftUseCase) fallbackDraft(in CreateDraftInput, classification string, picked *NewsItem) *Draft {
	switch classification {
	case post.ClassificationDailyNews:
		if picked != nil {
			return &Draft{
				Title:  shortenDailyNewsTitle(picked.Title, 20),
				Body:   dailyNewsOfflineBody(*picked, in.Prompt),
				Topics: nonEmpty(TitleDailyNews, strings.TrimSpace(in.Prompt)),
				Source: revision.SourceFallbackOffline,
			}
		}
	case post.ClassificationFakeNews:
		return &Draft{
			Title:  TitleFakeNews,
			Body:   fakeNewsOfflineBody(in.Prompt),
			Topics: nonEmpty(TitleFakeNews, strings.TrimSpace(in.Prompt)),
			Source: revision.SourceFakeNewsTmpl,
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "未命名草稿"
	}
	return &Draft{
		Title:  title,
		Body:   strings.TrimSpace(in.Prompt) + "\n(offline fallback)",
		Source: revision.SourceFallbackOffline,
	}
}

func (uc *CreateDraftUseCase) attachAssets(ctx context.Context, p *post.Post, in CreateDraftInput, picked *NewsItem) error {
	paths := existingFiles(uc.FS, in.AssetPaths)

	if len(paths) == 0 && in.AutoImage && uc.Images != nil {
		query := p.Title
		if picked != nil && strings.TrimSpace(picked.Title) != "" {
			query = picked.Title
		}
		destDir := uc.AssetsDirFor(p.ID)
		path, meta, err := uc.Images.Acquire(ctx, query, destDir)
		if err == nil {
			if err := p.Platform.SetDefault("image", meta); err != nil {
				return err
			}
			p.Assets = buildAssetInfos(uc.FS, []string{path})
			return nil
		}
		_ = p.Platform.SetDefault("image", map[string]interface{}{"error": err.Error()})
	}

	if in.CopyAssets && len(paths) > 0 {
		copied, err := copyAssetsInto(uc.FS, uc.AssetsDirFor(p.ID), paths)
		if err != nil {
			return err
		}
		paths = copied
	}
	p.Assets = buildAssetInfos(uc.FS, paths)
	return nil
}

func (uc *CreateDraftUseCase) appendEvent(ctx context.Context, p *post.Post, action string, start time.Time, opErr error) {
	ev := &repository.Event{
		PostID:    p.ID,
		Action:    action,
		Status:    p.Status,
		ElapsedMs: uc.Now().Sub(start).Milliseconds(),
	}
	if opErr != nil {
		ev.Error = opErr.Error()
	}
	// Journal append failures never fail the operation itself.
	_ = uc.Events.Append(ctx, ev)
}

func existingFiles(fs afero.Fs, paths []string) []string {
	var out []string
	for _, p := range paths {
		if info, err := fs.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
