// Package llm adapts an OpenAI-compatible chat completion endpoint to
// the content generation port.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/revision"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

const systemPrompt = `你是一个小红书图文笔记写手。根据用户给出的主题写一篇适合小红书的笔记。
输出必须是一个 JSON 对象，不要输出其他内容，格式：
{"title": "标题（不超过20个字）", "body": "正文（不超过1000个字）", "topics": ["话题1", "话题2"]}`

// Generator calls a chat-completion API and parses the reply into a
// draft. Any API failure maps to model.ErrGenerationUnavailable so the
// caller can fall back to offline content.
type Generator struct {
	Model string
	Opts  []option.RequestOption

	// Limits applied to the parsed reply before it leaves the adapter.
	TitleMax int
	BodyMax  int
}

// Config carries the endpoint settings.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// New builds a generator, failing when the key is missing.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key missing")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{Model: cfg.Model, Opts: opts, TitleMax: 20, BodyMax: 1000}, nil
}

// Generate implements the generation port.
func (g *Generator) Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.Draft, error) {
	client := openai.NewClient(g.Opts...)

	user := in.PromptHint
	if strings.TrimSpace(user) == "" {
		user = in.TitleHint
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return nil, model.ErrGenerationUnavailable.WithMessage("chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return nil, model.ErrGenerationUnavailable.WithMessage("chat completion: empty choices")
	}

	draft, err := ParseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, model.ErrGenerationUnavailable.WithMessage("parse reply: %v", err)
	}
	g.clip(draft, in)
	return draft, nil
}

func (g *Generator) clip(d *usecase.Draft, in usecase.GenerateInput) {
	if d.Title == "" {
		d.Title = in.TitleHint
	}
	d.Title = truncateRunes(d.Title, g.TitleMax)
	d.Body = truncateRunes(d.Body, g.BodyMax)
}

// ParseDraft extracts {title, body, topics} from a model reply. Replies
// wrapped in markdown code fences or embedded in prose are tolerated;
// a reply with no JSON object at all is treated as plain body text.
func ParseDraft(raw string) (*usecase.Draft, error) {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("empty reply")
	}

	obj := firstJSONObject(text)
	if obj == "" || !gjson.Valid(obj) {
		return &usecase.Draft{Body: text, Source: revision.SourceLLM}, nil
	}

	parsed := gjson.Parse(obj)
	d := &usecase.Draft{
		Title:  strings.TrimSpace(parsed.Get("title").String()),
		Body:   strings.TrimSpace(parsed.Get("body").String()),
		Source: revision.SourceLLM,
	}
	for _, t := range parsed.Get("topics").Array() {
		if topic := strings.TrimSpace(t.String()); topic != "" {
			d.Topics = append(d.Topics, topic)
		}
	}
	if d.Title == "" && d.Body == "" {
		return nil, fmt.Errorf("reply has neither title nor body")
	}
	return d, nil
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced {...} span, respecting
// string literals and escapes.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
