package post

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kokoromi/redraft/internal/domain/model/post"
	"github.com/kokoromi/redraft/internal/domain/validation"
)

// Special titles selecting a classification.
const (
	TitleDailyNews = "每日新闻"
	TitleFakeNews  = "每日假新闻"
)

// classifyTitle maps the caller-supplied title to a classification tag.
func classifyTitle(title string) string {
	switch strings.TrimSpace(title) {
	case TitleDailyNews:
		return post.ClassificationDailyNews
	case TitleFakeNews:
		return post.ClassificationFakeNews
	default:
		return post.ClassificationNone
	}
}

func clipText(value string, limit int) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return "无"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// dailyNewsPrompt asks for a publishable body built only from the picked
// item, with no metadata echoed back.
func dailyNewsPrompt(picked NewsItem, hint string) string {
	var b strings.Builder
	b.WriteString("你正在为小红书图文笔记写《每日新闻》栏目。\n")
	b.WriteString("请依据下面提供的新闻信息写一篇可直接发布的正文（通俗中文）。\n")
	b.WriteString("注意：正文里不要包含“来源/时间/链接/提示词/要求”等元信息，也不要复述下面的提示文本。\n")
	b.WriteString("只允许使用下列已提供的新闻信息，不得新增事实或编造细节；信息不足时保持保守表述。\n\n")
	b.WriteString("可用新闻信息（仅限以下字段，链接仅供参考不要输出）：\n")
	fmt.Fprintf(&b, "- 标题：%s\n", picked.Title)
	fmt.Fprintf(&b, "- 来源域名：%s\n", orUnknown(picked.Domain))
	fmt.Fprintf(&b, "- 发布时间：%s\n", orUnknown(picked.SeenDate))
	fmt.Fprintf(&b, "- 摘要：%s\n", clipText(picked.Description, 300))
	fmt.Fprintf(&b, "- 链接：%s\n", picked.URL)
	fmt.Fprintf(&b, "- 用户关注点（可选）：%s\n\n", orNone(hint))
	b.WriteString("正文结构与字数要求：\n")
	b.WriteString("1) 新闻内容（>=200字）：基于上面的信息，说明发生了什么、为何值得关注。\n")
	b.WriteString("2) 我的点评（>=100字）：给出影响解读/建议/风险提示，可结合用户关注点，但不得新增事实。\n")
	b.WriteString("3) topics 输出 3-8 个话题词，包含“每日新闻”。\n")
	return b.String()
}

// fakeNewsPrompt asks for an absurd, clearly fictional story in a humorous
// tone; the disclaimer is enforced separately after generation.
func fakeNewsPrompt(hint string) string {
	var b strings.Builder
	b.WriteString("你正在为小红书图文笔记写《每日假新闻》栏目：一条明显虚构、离谱但无害的趣味假新闻。\n")
	b.WriteString("要求：幽默轻松，不涉及真实在世人物的负面内容，不传播可信的错误信息。\n")
	fmt.Fprintf(&b, "题材提示：%s\n", orNone(hint))
	b.WriteString("topics 输出 3-8 个话题词，包含“每日假新闻”。\n")
	return b.String()
}

// dailyNewsOfflineBody keeps the fallback publishable without echoing the
// prompt or requirements.
func dailyNewsOfflineBody(picked NewsItem, hint string) string {
	focusLine := "从大众关心的角度"
	if h := strings.TrimSpace(hint); h != "" {
		focusLine = fmt.Sprintf("从「%s」角度", h)
	}
	return fmt.Sprintf(
		"今日要闻：%s\n\n%s，这条新闻值得关注的原因是：\n"+
			"1）它释放了一个重要信号，后续可能还会有更多细节披露；\n"+
			"2）对相关人群/行业的影响，需要结合权威信息持续观察；\n"+
			"3）如果你也在关注这个话题，建议留意官方/主流媒体的进一步更新。\n\n"+
			"你觉得这条新闻接下来会怎么发展？",
		picked.Title, focusLine)
}

// fakeNewsOfflineBody is the template used when generation is unavailable.
func fakeNewsOfflineBody(hint string) string {
	topic := strings.TrimSpace(hint)
	if topic == "" {
		topic = "一条离谱的小道消息"
	}
	body := fmt.Sprintf(
		"据不可靠消息：%s。\n\n"+
			"记者（并不）深入调查后发现，事情比想象中还要离谱，细节多到一篇笔记根本写不完。\n"+
			"目击群众纷纷表示：信了，但没完全信。\n\n"+
			"你觉得这事儿能有几分真？",
		topic)
	return validation.EnsureDisclaimer(body)
}

// shortenDailyNewsTitle builds a `每日新闻｜…` title within maxLen runes,
// preferring the headline segment before long detail separators.
func shortenDailyNewsTitle(newsTitle string, maxLen int) string {
	title := strings.TrimSpace(newsTitle)
	if title == "" {
		return TitleDailyNews
	}
	for _, sep := range []string{"：", ":", " - ", "—", "（", "("} {
		if head, _, found := strings.Cut(title, sep); found {
			if h := strings.TrimSpace(head); h != "" {
				title = h
				break
			}
		}
	}
	prefix := TitleDailyNews + "｜"
	if utf8.RuneCountInString(prefix)+utf8.RuneCountInString(title) <= maxLen {
		return prefix + title
	}
	room := maxLen - utf8.RuneCountInString(prefix)
	if room < 0 {
		room = 0
	}
	runes := []rune(title)
	if len(runes) > room {
		runes = runes[:room]
	}
	return strings.TrimRight(strings.TrimRight(prefix+string(runes), "｜"), " ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "未知"
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "无"
	}
	return s
}
