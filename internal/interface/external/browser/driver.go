// Package browser drives the external save-as-draft automation. The real
// driver shells out to a separate automation binary; the dry-run driver
// renders the would-be draft into the evidence bundle instead.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/execution"
	"github.com/kokoromi/redraft/internal/infra/fs"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

// snapshot is the wire form handed to the automation binary on stdin.
type snapshot struct {
	PostID      string   `json:"post_id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Topics      []string `json:"topics,omitempty"`
	Assets      []string `json:"assets,omitempty"`
	LoginHoldMs int64    `json:"login_hold_ms,omitempty"`
	EvidenceDir string   `json:"evidence_dir"`
}

// report is what the binary writes to stdout when it exits zero.
type report struct {
	Saved bool `json:"saved"`
	Steps []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Detail string `json:"detail,omitempty"`
	} `json:"steps,omitempty"`
	EvidenceRef string `json:"evidence_ref,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ExternalDriver runs a separate automation binary per attempt. The
// subprocess inherits ctx, so timeout and cancellation kill it.
type ExternalDriver struct {
	Bin string
}

// SaveDraft implements the driver port.
func (d *ExternalDriver) SaveDraft(ctx context.Context, req usecase.DriverRequest) (*usecase.DriverResult, error) {
	if d.Bin == "" {
		return nil, fmt.Errorf("browser: automation binary not configured")
	}

	payload, err := json.Marshal(snapshot{
		PostID:      string(req.PostID),
		Title:       req.Title,
		Body:        req.Body,
		Topics:      req.Topics,
		Assets:      req.Assets,
		LoginHoldMs: req.LoginHold.Milliseconds(),
		EvidenceDir: req.EvidenceDir,
	})
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, d.Bin)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	var rep report
	parseErr := json.Unmarshal(stdout.Bytes(), &rep)

	res := &usecase.DriverResult{EvidenceRef: rep.EvidenceRef}
	for _, s := range rep.Steps {
		res.Steps = append(res.Steps, execution.StepResult{Name: s.Name, Status: s.Status, Detail: s.Detail})
	}

	switch {
	case runErr != nil:
		detail := stderr.String()
		if detail == "" {
			detail = runErr.Error()
		}
		res.Outcome = model.OutcomeFailed
		res.Err = &execution.ExecError{Kind: model.ErrorKindAutomation, Message: detail}
	case parseErr != nil:
		res.Outcome = model.OutcomeFailed
		res.Err = &execution.ExecError{Kind: model.ErrorKindAutomation, Message: fmt.Sprintf("unreadable automation report: %v", parseErr)}
	case !rep.Saved:
		msg := rep.Error
		if msg == "" {
			msg = "automation reported no save"
		}
		res.Outcome = model.OutcomeFailed
		res.Err = &execution.ExecError{Kind: model.ErrorKindAutomation, Message: msg}
	default:
		res.Outcome = model.OutcomeSavedDraft
	}
	return res, nil
}

// DryRunDriver renders the draft into the evidence bundle without
// touching the external platform: snapshot.json with the exact payload,
// preview.html with the body rendered from markdown.
type DryRunDriver struct {
	FS       afero.Fs
	Renderer func(body []byte) ([]byte, error)
}

// SaveDraft implements the driver port.
func (d *DryRunDriver) SaveDraft(ctx context.Context, req usecase.DriverRequest) (*usecase.DriverResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &usecase.DriverResult{Outcome: model.OutcomeDryRun, EvidenceRef: req.EvidenceDir}
	step := func(name, status, detail string) {
		res.Steps = append(res.Steps, execution.StepResult{Name: name, Status: status, Detail: detail})
	}

	payload, err := json.MarshalIndent(snapshot{
		PostID:      string(req.PostID),
		Title:       req.Title,
		Body:        req.Body,
		Topics:      req.Topics,
		Assets:      req.Assets,
		LoginHoldMs: req.LoginHold.Milliseconds(),
		EvidenceDir: req.EvidenceDir,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	snapPath := filepath.Join(req.EvidenceDir, "snapshot.json")
	if err := fs.WriteFileAtomic(d.FS, snapPath, append(payload, '\n')); err != nil {
		return nil, err
	}
	step("write_snapshot", "success", snapPath)

	html, err := d.render(req)
	if err != nil {
		step("render_preview", "failed", err.Error())
		return res, nil
	}
	previewPath := filepath.Join(req.EvidenceDir, "preview.html")
	if err := fs.WriteFileAtomic(d.FS, previewPath, html); err != nil {
		return nil, err
	}
	step("render_preview", "success", previewPath)

	// The login hold elapses in dry runs too.
	if req.LoginHold > 0 {
		timer := time.NewTimer(req.LoginHold)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		step("login_hold", "success", req.LoginHold.String())
	}

	step("save_draft", "skipped", "dry run")
	return res, nil
}

func (d *DryRunDriver) render(req usecase.DriverRequest) ([]byte, error) {
	renderer := d.Renderer
	if renderer == nil {
		renderer = RenderMarkdown
	}
	body, err := renderer([]byte(req.Body))
	if err != nil {
		return nil, err
	}
	title := html.EscapeString(req.Title)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html lang=\"zh\">\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n", title)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", title)
	buf.Write(body)
	if len(req.Topics) > 0 {
		buf.WriteString("<p>")
		for _, t := range req.Topics {
			fmt.Fprintf(&buf, "#%s ", html.EscapeString(t))
		}
		buf.WriteString("</p>\n")
	}
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// RenderMarkdown converts commonmark body text to HTML.
func RenderMarkdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
