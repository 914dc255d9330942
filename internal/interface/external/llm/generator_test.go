package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoromi/redraft/internal/domain/model/revision"
)

func TestParseDraftPlainJSON(t *testing.T) {
	d, err := ParseDraft(`{"title":"冬日穿搭","body":"三套通勤穿搭。","topics":["穿搭","冬季"]}`)
	require.NoError(t, err)
	assert.Equal(t, "冬日穿搭", d.Title)
	assert.Equal(t, "三套通勤穿搭。", d.Body)
	assert.Equal(t, []string{"穿搭", "冬季"}, d.Topics)
	assert.Equal(t, revision.SourceLLM, d.Source)
}

func TestParseDraftFencedJSON(t *testing.T) {
	raw := "```json\n{\"title\": \"早餐食谱\", \"body\": \"十分钟搞定。\", \"topics\": [\"美食\"]}\n```"
	d, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "早餐食谱", d.Title)
	assert.Equal(t, "十分钟搞定。", d.Body)
}

func TestParseDraftJSONInProse(t *testing.T) {
	raw := "好的，这是你要的笔记：\n{\"title\": \"咖啡测评\", \"body\": \"试了三家店。\"}\n希望有帮助！"
	d, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "咖啡测评", d.Title)
	assert.Equal(t, "试了三家店。", d.Body)
	assert.Empty(t, d.Topics)
}

func TestParseDraftEscapedBraceInString(t *testing.T) {
	raw := `{"title": "符号", "body": "正文里有 \"{\" 和 } 符号。"}`
	d, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Contains(t, d.Body, "{")
}

func TestParseDraftPlainTextBecomesBody(t *testing.T) {
	d, err := ParseDraft("今天的天气特别好，适合出门散步。")
	require.NoError(t, err)
	assert.Empty(t, d.Title)
	assert.Equal(t, "今天的天气特别好，适合出门散步。", d.Body)
	assert.Equal(t, revision.SourceLLM, d.Source)
}

func TestParseDraftEmptyReply(t *testing.T) {
	_, err := ParseDraft("   \n  ")
	assert.Error(t, err)
}

func TestParseDraftEmptyObject(t *testing.T) {
	_, err := ParseDraft(`{"title": "", "body": ""}`)
	assert.Error(t, err)
}

func TestParseDraftDropsBlankTopics(t *testing.T) {
	d, err := ParseDraft(`{"title":"t","body":"b","topics":["  ", "旅行", ""]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"旅行"}, d.Topics)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "一二三", truncateRunes("一二三四五", 3))
	assert.Equal(t, "短", truncateRunes("短", 3))
	assert.Equal(t, "不限", truncateRunes("不限", 0))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{Model: "gpt-4o-mini"})
	assert.Error(t, err)

	_, err = New(Config{APIKey: "sk-test"})
	assert.Error(t, err)

	g, err := New(Config{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, 20, g.TitleMax)
	assert.Equal(t, 1000, g.BodyMax)
}
