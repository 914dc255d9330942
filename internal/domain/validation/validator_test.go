package validation

import (
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
)

func newImagePost(t *testing.T, fs afero.Fs, withAsset bool) *post.Post {
	t.Helper()
	now := time.Now().UTC()
	p := post.New(model.NewPostID(now, rand.Reader), model.PostTypeImage, now)
	p.Title = "冬日穿搭"
	p.Body = "三套冬季通勤穿搭分享，保暖又显瘦。"
	if withAsset {
		require.NoError(t, afero.WriteFile(fs, "/assets/cover.jpg", []byte("jpeg"), 0o644))
		p.Assets = []post.Asset{{Path: "/assets/cover.jpg", Kind: "image"}}
	}
	return p
}

func TestValidatePassing(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())

	res := v.Validate(newImagePost(t, fs, true))
	assert.True(t, res.OK(), "violations: %v", res.Violations)
	assert.Empty(t, res.SafetyViolations)
}

func TestValidateStructuralRules(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())

	tests := []struct {
		name   string
		mutate func(p *post.Post)
		want   string
	}{
		{
			name:   "empty title",
			mutate: func(p *post.Post) { p.Title = "   " },
			want:   RuleTitleRequired,
		},
		{
			name:   "title over image limit",
			mutate: func(p *post.Post) { p.Title = strings.Repeat("冬", 21) },
			want:   RuleTitleTooLong,
		},
		{
			name:   "empty body",
			mutate: func(p *post.Post) { p.Body = "" },
			want:   RuleBodyRequired,
		},
		{
			name:   "body over image limit",
			mutate: func(p *post.Post) { p.Body = strings.Repeat("字", 1001) },
			want:   RuleBodyTooLong,
		},
		{
			name:   "image post without assets",
			mutate: func(p *post.Post) { p.Assets = nil },
			want:   RuleAssetsRequired,
		},
		{
			name: "asset file gone",
			mutate: func(p *post.Post) {
				p.Assets = []post.Asset{{Path: "/assets/missing.jpg", Kind: "image"}}
			},
			want: RuleAssetMissing,
		},
		{
			name: "too many assets",
			mutate: func(p *post.Post) {
				for i := 0; i < 19; i++ {
					p.Assets = append(p.Assets, post.Asset{Path: "/assets/cover.jpg", Kind: "image"})
				}
			},
			want: RuleAssetsTooMany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newImagePost(t, fs, true)
			tt.mutate(p)

			res := v.Validate(p)
			assert.False(t, res.OK())
			found := false
			for _, viol := range res.Violations {
				if strings.HasPrefix(viol, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "want %s in %v", tt.want, res.Violations)
		})
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())

	p := newImagePost(t, fs, false)
	p.Title = ""
	p.Body = ""

	res := v.Validate(p)
	require.False(t, res.OK())
	// title, body and assets all report in a single pass.
	assert.GreaterOrEqual(t, len(res.Violations), 3)
}

func TestValidateArticleLimits(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())
	now := time.Now().UTC()

	p := post.New(model.NewPostID(now, rand.Reader), model.PostTypeArticle, now)
	p.Title = strings.Repeat("字", 40) // over image limit, under article limit
	p.Body = strings.Repeat("字", 5000) // articles have no body cap

	res := v.Validate(p)
	assert.True(t, res.OK(), "violations: %v", res.Violations)
}

func TestValidateFakeNewsDisclaimer(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())

	p := newImagePost(t, fs, true)
	p.Classification = post.ClassificationFakeNews
	p.Title = "每日假新闻"
	p.Body = "今天小区的猫召开了业主大会。"

	res := v.Validate(p)
	require.False(t, res.OK())
	assert.Contains(t, res.Violations, RuleDisclaimerMissing)
	assert.Contains(t, res.SafetyViolations, RuleDisclaimerMissing,
		"the disclaimer rule is a safety rule")

	p.Body = EnsureDisclaimer(p.Body)
	res = v.Validate(p)
	assert.True(t, res.OK(), "violations after enforcement: %v", res.Violations)
}

func TestEnsureDisclaimer(t *testing.T) {
	body := "明天起全市改用左侧通行。"
	once := EnsureDisclaimer(body)
	assert.Contains(t, once, Disclaimer)
	// Idempotent: a second pass never duplicates the line.
	assert.Equal(t, once, EnsureDisclaimer(once))
	assert.Equal(t, DisclaimerLine, EnsureDisclaimer(""))
}

func TestValidateDeterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	v := New(fs, DefaultLimits())
	p := newImagePost(t, fs, false)
	p.Title = ""

	first := v.Validate(p)
	second := v.Validate(p)
	assert.Equal(t, first.Violations, second.Violations,
		"same post and environment must produce identical results")
}

func TestRuneLenNormalization(t *testing.T) {
	composed := "é"        // U+00E9
	decomposed := "é" // e + combining acute
	assert.Equal(t, runeLen(composed), runeLen(decomposed))
}
