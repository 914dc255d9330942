package cli

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/validation"
	"github.com/kokoromi/redraft/internal/infra/config"
	"github.com/kokoromi/redraft/internal/infra/repository/postfs"
	"github.com/kokoromi/redraft/internal/interface/external/browser"
	"github.com/kokoromi/redraft/internal/interface/external/image"
	"github.com/kokoromi/redraft/internal/interface/external/llm"
	"github.com/kokoromi/redraft/internal/interface/external/news"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

// container wires the store, validator and use cases from settings.
// Construction never touches the network; collaborators that need
// credentials are resolved lazily per command.
type container struct {
	settings  *config.Settings
	fs        afero.Fs
	store     *postfs.Store
	validator *validation.Validator

	create   *usecase.CreateDraftUseCase
	validate *usecase.ValidateUseCase
	approve  *usecase.ApproveUseCase
	run      *usecase.ExecuteUseCase
	retry    *usecase.RetryUseCase
	recover  *usecase.RecoverUseCase
	auto     *usecase.AutoUseCase
	query    *usecase.QueryUseCase
}

func newContainer(settings *config.Settings, appFs afero.Fs, dryRun bool) *container {
	store := postfs.NewStore(appFs, settings.DataDir)

	limits := validation.DefaultLimits()
	if settings.BodyMinChars > 0 {
		limits.BodyMin = settings.BodyMinChars
	}
	validator := validation.New(appFs, limits)

	c := &container{
		settings:  settings,
		fs:        appFs,
		store:     store,
		validator: validator,
	}

	c.create = &usecase.CreateDraftUseCase{
		Posts:        store.Posts(),
		Revisions:    store.Revisions(),
		Events:       store.Events(),
		Generator:    c.generator(),
		News:         news.New(settings.NewsBaseURL),
		Images:       c.imageSource(),
		FS:           appFs,
		AssetsDirFor: func(id model.PostID) string { return store.AssetsDir(id) },
		NewsQuery:    settings.NewsQuery,
		Now:          time.Now,
		Rand:         rand.Reader,
	}
	c.validate = &usecase.ValidateUseCase{
		Posts:     store.Posts(),
		Events:    store.Events(),
		Validator: validator,
		Now:       time.Now,
	}
	c.approve = &usecase.ApproveUseCase{
		Posts:  store.Posts(),
		Events: store.Events(),
		Now:    time.Now,
	}
	c.run = &usecase.ExecuteUseCase{
		Posts:      store.Posts(),
		Executions: store.Executions(),
		Events:     store.Events(),
		Validator:  validator,
		Driver:     c.driver(dryRun),
		Timeout:    settings.ExecTimeout,
		Now:        time.Now,
	}
	c.retry = &usecase.RetryUseCase{
		Posts:  store.Posts(),
		Events: store.Events(),
		Runner: c.run,
		Now:    time.Now,
	}
	c.recover = &usecase.RecoverUseCase{
		Posts:      store.Posts(),
		Executions: store.Executions(),
		Events:     store.Events(),
		Now:        time.Now,
	}
	c.auto = &usecase.AutoUseCase{
		Create:   c.create,
		Validate: c.validate,
		Approve:  c.approve,
		Run:      c.run,
	}
	c.query = &usecase.QueryUseCase{
		Posts:      store.Posts(),
		Revisions:  store.Revisions(),
		Executions: store.Executions(),
		Events:     store.Events(),
	}
	return c
}

// generator returns the LLM collaborator, or nil when no key is
// configured; the create use case then goes straight to fallback.
func (c *container) generator() usecase.Generator {
	gen, err := llm.New(llm.Config{
		Model:   c.settings.LLM.Model,
		APIKey:  c.settings.LLM.APIKey,
		BaseURL: c.settings.LLM.BaseURL,
	})
	if err != nil {
		GetLogger().Debug("llm unavailable: %v", err)
		return unavailableGenerator{}
	}
	return gen
}

func (c *container) imageSource() usecase.ImageSource {
	if !c.settings.AutoImage || c.settings.ImageAPIKey == "" {
		return nil
	}
	return image.New(c.settings.ImageBaseURL, c.settings.ImageAPIKey, c.fs)
}

func (c *container) driver(dryRun bool) usecase.Driver {
	if dryRun {
		return &browser.DryRunDriver{FS: c.fs}
	}
	if c.settings.AutomationBin == "" {
		GetLogger().Warn("automation binary not configured, attempts run in dry-run mode")
		return &browser.DryRunDriver{FS: c.fs}
	}
	return &browser.ExternalDriver{Bin: c.settings.AutomationBin}
}

// unavailableGenerator stands in when no LLM key is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.Draft, error) {
	return nil, model.ErrGenerationUnavailable.WithMessage("llm not configured")
}
