// Package news fetches candidate articles from a GDELT-compatible
// document API.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

const (
	userAgent      = "Mozilla/5.0 (redraft)"
	defaultRecords = 30
	lookback       = 24 * time.Hour
)

// Client queries the article list endpoint over a recent time window.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRecords int
	Now        func() time.Time
}

// New builds a client with a 20s request timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		MaxRecords: defaultRecords,
		Now:        time.Now,
	}
}

// FetchCandidates implements the news port. Articles without both a
// title and a URL are dropped.
func (c *Client) FetchCandidates(ctx context.Context, query string) ([]usecase.NewsItem, error) {
	end := c.Now().UTC()
	start := end.Add(-lookback)

	params := url.Values{}
	params.Set("query", query)
	params.Set("mode", "ArtList")
	params.Set("format", "json")
	params.Set("maxrecords", fmt.Sprintf("%d", c.MaxRecords))
	params.Set("startdatetime", start.Format("20060102150405"))
	params.Set("enddatetime", end.Format("20060102150405"))
	params.Set("sort", "HybridRel")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	return ParseArticles(body), nil
}

// ParseArticles extracts items from an article-list response body.
// Malformed entries are skipped, not fatal.
func ParseArticles(body []byte) []usecase.NewsItem {
	var items []usecase.NewsItem
	for _, a := range gjson.GetBytes(body, "articles").Array() {
		item := usecase.NewsItem{
			Title:         strings.TrimSpace(a.Get("title").String()),
			URL:           strings.TrimSpace(a.Get("url").String()),
			Domain:        strings.TrimSpace(a.Get("domain").String()),
			SeenDate:      strings.TrimSpace(a.Get("seendate").String()),
			Language:      strings.TrimSpace(a.Get("language").String()),
			SourceCountry: strings.TrimSpace(a.Get("sourcecountry").String()),
		}
		if item.Title == "" || item.URL == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
