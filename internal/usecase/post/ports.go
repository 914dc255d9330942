// Package post implements the lifecycle use cases: draft creation,
// validation, approval, execution, retry and recovery. Collaborators
// (generation, news, images, browser automation) are narrow interfaces
// injected by the caller; the use cases only depend on their contracts.
package post

import (
	"context"
	"time"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
)

// Draft is candidate content produced by the generation collaborator.
type Draft struct {
	Title  string
	Body   string
	Topics []string
	Source revision.Source
}

// GenerateInput seeds the generation collaborator.
type GenerateInput struct {
	TitleHint  string
	PromptHint string
	AssetPaths []string
}

// Generator produces candidate content. Failures are reported with
// model.ErrGenerationUnavailable; the use case substitutes offline
// fallback content unless told not to.
type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (*Draft, error)
}

// NewsItem is one candidate news article.
type NewsItem struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Domain        string `json:"domain,omitempty"`
	SeenDate      string `json:"seendate,omitempty"`
	Language      string `json:"language,omitempty"`
	SourceCountry string `json:"sourcecountry,omitempty"`
	Description   string `json:"description,omitempty"`
}

// NewsSource fetches daily-news candidates.
type NewsSource interface {
	FetchCandidates(ctx context.Context, query string) ([]NewsItem, error)
}

// ImageSource acquires a related local image for a post without assets.
// It returns the downloaded file path plus provenance metadata destined
// for the platform bag.
type ImageSource interface {
	Acquire(ctx context.Context, query string, destDir string) (string, map[string]interface{}, error)
}

// DriverRequest is the snapshot handed to the browser-automation driver.
type DriverRequest struct {
	PostID      model.PostID
	Title       string
	Body        string
	Topics      []string
	Assets      []string
	DryRun      bool
	LoginHold   time.Duration
	EvidenceDir string
}

// DriverResult is what the driver reports back. Err is set iff the outcome
// is failed.
type DriverResult struct {
	Outcome     model.Outcome
	Steps       []execution.StepResult
	EvidenceRef string
	Err         *execution.ExecError
}

// Driver performs the external save-as-draft step. Implementations must
// honor ctx cancellation and must be safely re-invokable: re-running after
// a failed attempt is a retry of the same action, not a duplicate draft.
type Driver interface {
	SaveDraft(ctx context.Context, req DriverRequest) (*DriverResult, error)
}
