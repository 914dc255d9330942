package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoromi/redraft/internal/domain/model"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

func dryRunRequest() usecase.DriverRequest {
	return usecase.DriverRequest{
		PostID:      model.PostID("POST-01JF8YB8T0YYNB5QZK3M9W7CNT"),
		Title:       "冬日穿搭",
		Body:        "## 第一套\n\n大衣加围巾。",
		Topics:      []string{"穿搭", "冬季"},
		Assets:      []string{"/assets/cover.jpg"},
		DryRun:      true,
		EvidenceDir: "data/evidence/EXEC-01JF8YB8T0YYNB5QZK3M9W7CNT",
	}
}

func TestDryRunDriverWritesEvidence(t *testing.T) {
	mem := afero.NewMemMapFs()
	d := &DryRunDriver{FS: mem}
	req := dryRunRequest()

	res, err := d.SaveDraft(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeDryRun, res.Outcome)
	assert.Equal(t, req.EvidenceDir, res.EvidenceRef)
	assert.Nil(t, res.Err)

	raw, err := afero.ReadFile(mem, req.EvidenceDir+"/snapshot.json")
	require.NoError(t, err)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, string(req.PostID), snap["post_id"])
	assert.Equal(t, req.Title, snap["title"])

	preview, err := afero.ReadFile(mem, req.EvidenceDir+"/preview.html")
	require.NoError(t, err)
	page := string(preview)
	assert.Contains(t, page, "<h1>冬日穿搭</h1>")
	assert.Contains(t, page, "<h2>第一套</h2>", "markdown body is rendered")
	assert.Contains(t, page, "#穿搭")
}

func TestDryRunDriverSteps(t *testing.T) {
	d := &DryRunDriver{FS: afero.NewMemMapFs()}
	res, err := d.SaveDraft(context.Background(), dryRunRequest())
	require.NoError(t, err)

	require.Len(t, res.Steps, 3)
	assert.Equal(t, "write_snapshot", res.Steps[0].Name)
	assert.Equal(t, "success", res.Steps[0].Status)
	assert.Equal(t, "render_preview", res.Steps[1].Name)
	assert.Equal(t, "save_draft", res.Steps[2].Name)
	assert.Equal(t, "skipped", res.Steps[2].Status)
}

func TestDryRunDriverEscapesTitle(t *testing.T) {
	mem := afero.NewMemMapFs()
	d := &DryRunDriver{FS: mem}
	req := dryRunRequest()
	req.Title = `<script>alert("x")</script>`

	_, err := d.SaveDraft(context.Background(), req)
	require.NoError(t, err)

	preview, err := afero.ReadFile(mem, req.EvidenceDir+"/preview.html")
	require.NoError(t, err)
	assert.NotContains(t, string(preview), "<script>")
	assert.Contains(t, string(preview), "&lt;script&gt;")
}

func TestDryRunDriverRendererFailure(t *testing.T) {
	d := &DryRunDriver{
		FS: afero.NewMemMapFs(),
		Renderer: func([]byte) ([]byte, error) {
			return nil, errors.New("renderer broke")
		},
	}

	res, err := d.SaveDraft(context.Background(), dryRunRequest())
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeDryRun, res.Outcome)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "render_preview", res.Steps[1].Name)
	assert.Equal(t, "failed", res.Steps[1].Status)
	assert.Contains(t, res.Steps[1].Detail, "renderer broke")
}

func TestDryRunDriverHonorsLoginHold(t *testing.T) {
	mem := afero.NewMemMapFs()
	d := &DryRunDriver{FS: mem}
	req := dryRunRequest()
	req.LoginHold = 15 * time.Millisecond

	start := time.Now()
	res, err := d.SaveDraft(context.Background(), req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), req.LoginHold)

	require.Len(t, res.Steps, 4)
	assert.Equal(t, "login_hold", res.Steps[2].Name)
	assert.Equal(t, "save_draft", res.Steps[3].Name)

	raw, err := afero.ReadFile(mem, req.EvidenceDir+"/snapshot.json")
	require.NoError(t, err)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.EqualValues(t, 15, snap["login_hold_ms"])
}

func TestDryRunDriverCancelledDuringLoginHold(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &DryRunDriver{FS: afero.NewMemMapFs()}
	req := dryRunRequest()
	req.LoginHold = time.Minute

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := d.SaveDraft(ctx, req)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDryRunDriverCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &DryRunDriver{FS: afero.NewMemMapFs()}
	_, err := d.SaveDraft(ctx, dryRunRequest())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown([]byte("**加粗** 和 *斜体*"))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<strong>加粗</strong>")
	assert.Contains(t, html, "<em>斜体</em>")
}

func TestExternalDriverRequiresBinary(t *testing.T) {
	d := &ExternalDriver{}
	_, err := d.SaveDraft(context.Background(), dryRunRequest())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not configured"))
}
