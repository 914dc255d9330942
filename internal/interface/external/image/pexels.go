// Package image acquires a cover photo from a Pexels-compatible search
// API for posts created without assets.
package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

const userAgent = "Mozilla/5.0 (redraft)"

// candidate is one search hit.
type candidate struct {
	ID              string
	PageURL         string
	DownloadURL     string
	Photographer    string
	PhotographerURL string
	Alt             string
	Width           int64
	Height          int64
}

// Client searches and downloads one relevant photo. The downloaded file
// lands in the caller-supplied directory; provenance (photographer,
// license, source page) is returned for the platform bag.
type Client struct {
	BaseURL    string
	APIKey     string
	FS         afero.Fs
	HTTPClient *http.Client
	PerPage    int
}

// New builds a client over the given filesystem.
func New(baseURL, apiKey string, fs afero.Fs) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		FS:         fs,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		PerPage:    10,
	}
}

// Acquire implements the image port.
func (c *Client) Acquire(ctx context.Context, query, destDir string) (string, map[string]interface{}, error) {
	if c.APIKey == "" {
		return "", nil, fmt.Errorf("image: api key missing")
	}

	hint := queryHint(query)
	if hint == "" {
		hint = "news"
	}
	items, err := c.search(ctx, hint)
	if err != nil {
		return "", nil, err
	}
	if len(items) == 0 {
		return "", nil, fmt.Errorf("image: no candidates for %q", hint)
	}

	best := pickBest(items, hint)
	dest := filepath.Join(destDir, "auto_cover"+guessExt(best.DownloadURL))
	if err := c.download(ctx, best.DownloadURL, dest); err != nil {
		return "", nil, err
	}

	meta := map[string]interface{}{
		"provider":     "pexels",
		"id":           best.ID,
		"query":        hint,
		"page_url":     best.PageURL,
		"photographer": best.Photographer,
		"license":      "Pexels License",
	}
	if best.PhotographerURL != "" {
		meta["photographer_url"] = best.PhotographerURL
	}
	return dest, meta, nil
}

func (c *Client) search(ctx context.Context, query string) ([]candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", c.PerPage))
	params.Set("page", "1")
	params.Set("orientation", "portrait")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	return parsePhotos(body), nil
}

func parsePhotos(body []byte) []candidate {
	var items []candidate
	for _, p := range gjson.GetBytes(body, "photos").Array() {
		src := p.Get("src")
		download := firstNonEmpty(
			src.Get("portrait").String(),
			src.Get("large2x").String(),
			src.Get("large").String(),
			src.Get("original").String(),
		)
		item := candidate{
			ID:              p.Get("id").String(),
			PageURL:         strings.TrimSpace(p.Get("url").String()),
			DownloadURL:     strings.TrimSpace(download),
			Photographer:    strings.TrimSpace(p.Get("photographer").String()),
			PhotographerURL: strings.TrimSpace(p.Get("photographer_url").String()),
			Alt:             strings.TrimSpace(p.Get("alt").String()),
			Width:           p.Get("width").Int(),
			Height:          p.Get("height").Int(),
		}
		if item.ID == "" || item.PageURL == "" || item.DownloadURL == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (c *Client) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("image download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image download: status %d", resp.StatusCode)
	}

	if err := c.FS.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := c.FS.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("image download: %w", err)
	}
	return nil
}

func pickBest(items []candidate, query string) candidate {
	qTokens := englishTokens(query)
	best := items[0]
	bestScore := -1.0
	for _, item := range items {
		text := strings.ToLower(item.Alt + " " + item.Photographer + " " + item.PageURL)
		hits := 0
		for tok := range qTokens {
			if strings.Contains(text, tok) {
				hits++
			}
		}
		score := float64(hits) / float64(max(1, len(qTokens)))
		if area := item.Width * item.Height; area > 0 {
			score += min(1, float64(area)/(2000*2000)) * 0.15
		}
		if score > bestScore {
			best = item
			bestScore = score
		}
	}
	return best
}

// queryHint maps common Chinese news topics to English keywords, since
// the photo search works far better with English.
func queryHint(query string) string {
	q := strings.TrimSpace(query)
	if q == "" {
		return ""
	}
	if regexp.MustCompile(`[a-zA-Z]`).MatchString(q) {
		return q
	}
	mapping := []struct{ zh, en string }{
		{"美国", "USA"},
		{"政治", "politics"},
		{"时政", "politics"},
		{"大选", "election"},
		{"选举", "election"},
		{"国会", "congress"},
		{"外交", "diplomacy"},
		{"经济", "economy"},
		{"财经", "economy"},
		{"科技", "technology"},
		{"人工智能", "technology"},
		{"国际", "international"},
		{"新闻", "news"},
		{"金融", "finance"},
	}
	seen := map[string]struct{}{}
	var tokens []string
	for _, m := range mapping {
		if !strings.Contains(q, m.zh) {
			continue
		}
		if _, ok := seen[m.en]; ok {
			continue
		}
		seen[m.en] = struct{}{}
		tokens = append(tokens, m.en)
	}
	return strings.Join(tokens, " ")
}

func englishTokens(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range regexp.MustCompile(`[a-z0-9]+`).FindAllString(strings.ToLower(s), -1) {
		if len(tok) > 1 {
			out[tok] = struct{}{}
		}
	}
	return out
}

func guessExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".jpg", ".png", ".webp":
		return ext
	case ".jpeg":
		return ".jpg"
	default:
		return ".jpg"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
