package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kokoromi/redraft/internal/domain/model"
	"github.com/kokoromi/redraft/internal/domain/model/post"
)

// Violation rule identifiers. These names are the stable contract surfaced
// to callers; messages may change, names may not.
const (
	RuleTitleRequired     = "title_required"
	RuleTitleTooLong      = "title_too_long"
	RuleBodyRequired      = "body_required"
	RuleBodyTooShort      = "body_too_short"
	RuleBodyTooLong       = "body_too_long"
	RuleAssetsRequired    = "assets_required"
	RuleAssetsTooMany     = "assets_too_many"
	RuleAssetMissing      = "asset_missing"
	RuleAssetTooLarge     = "asset_too_large"
	RuleDisclaimerMissing = "disclaimer_missing"
)

// Disclaimer must appear in every fake-news body.
// DisclaimerLine is what enforcement appends when it is absent.
const (
	Disclaimer     = "本文纯属虚构"
	DisclaimerLine = "本文纯属虚构，仅供娱乐。"
)

// Limits bound structural validation. Values mirror the target platform's
// image-note editor.
type Limits struct {
	TitleMaxImage   int
	TitleMaxArticle int
	BodyMin         int
	BodyMaxImage    int
	AssetsMaxImage  int
	AssetMaxBytes   int64
}

// DefaultLimits returns the platform defaults.
func DefaultLimits() Limits {
	return Limits{
		TitleMaxImage:   20,
		TitleMaxArticle: 64,
		BodyMin:         1,
		BodyMaxImage:    1000,
		AssetsMaxImage:  18,
		AssetMaxBytes:   32 * 1024 * 1024,
	}
}

func (l Limits) titleMax(t model.PostType) int {
	if t == model.PostTypeArticle {
		return l.TitleMaxArticle
	}
	return l.TitleMaxImage
}

func (l Limits) bodyMax(t model.PostType) int {
	if t == model.PostTypeImage {
		return l.BodyMaxImage
	}
	return 0 // unbounded
}

// runeLen counts runes after NFC normalization, so composed and decomposed
// forms of the same character measure identically.
func runeLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// Rule is one named check. Safety rules guard content safety (e.g. the
// fiction disclaimer) and survive forced execution unless the caller also
// opts into the unsafe bypass.
type Rule struct {
	Name   string
	Safety bool
	Check  func(c Context, p *post.Post) []string
}

func baseRules() []Rule {
	return []Rule{
		{
			Name: RuleTitleRequired,
			Check: func(c Context, p *post.Post) []string {
				if strings.TrimSpace(p.Title) == "" {
					return []string{RuleTitleRequired}
				}
				return nil
			},
		},
		{
			Name: RuleTitleTooLong,
			Check: func(c Context, p *post.Post) []string {
				max := c.Limits.titleMax(p.Type)
				if n := runeLen(strings.TrimSpace(p.Title)); n > max {
					return []string{fmt.Sprintf("%s:%d>%d", RuleTitleTooLong, n, max)}
				}
				return nil
			},
		},
		{
			Name: RuleBodyRequired,
			Check: func(c Context, p *post.Post) []string {
				if strings.TrimSpace(p.Body) == "" {
					return []string{RuleBodyRequired}
				}
				return nil
			},
		},
		{
			Name: RuleBodyTooShort,
			Check: func(c Context, p *post.Post) []string {
				body := strings.TrimSpace(p.Body)
				if body == "" {
					return nil // already reported as body_required
				}
				if n := runeLen(body); n < c.Limits.BodyMin {
					return []string{fmt.Sprintf("%s:%d<%d", RuleBodyTooShort, n, c.Limits.BodyMin)}
				}
				return nil
			},
		},
		{
			Name: RuleBodyTooLong,
			Check: func(c Context, p *post.Post) []string {
				max := c.Limits.bodyMax(p.Type)
				if max == 0 {
					return nil
				}
				if n := runeLen(strings.TrimSpace(p.Body)); n > max {
					return []string{fmt.Sprintf("%s:%d>%d", RuleBodyTooLong, n, max)}
				}
				return nil
			},
		},
		{
			Name: RuleAssetsRequired,
			Check: func(c Context, p *post.Post) []string {
				if p.Type.RequiresAssets() && len(p.Assets) == 0 {
					return []string{RuleAssetsRequired}
				}
				return nil
			},
		},
		{
			Name: RuleAssetsTooMany,
			Check: func(c Context, p *post.Post) []string {
				if p.Type == model.PostTypeImage && len(p.Assets) > c.Limits.AssetsMaxImage {
					return []string{fmt.Sprintf("%s:%d>%d", RuleAssetsTooMany, len(p.Assets), c.Limits.AssetsMaxImage)}
				}
				return nil
			},
		},
		{
			Name: RuleAssetMissing,
			Check: func(c Context, p *post.Post) []string {
				var out []string
				for _, a := range p.Assets {
					info, err := c.FS.Stat(a.Path)
					if err != nil {
						out = append(out, RuleAssetMissing+":"+a.Path)
						continue
					}
					if p.Type == model.PostTypeImage && info.Size() > c.Limits.AssetMaxBytes {
						out = append(out, RuleAssetTooLarge+":"+a.Path)
					}
				}
				return out
			},
		},
	}
}

// classification bundles; new classifications register new bundles
// without touching the base validator.
var bundles = map[string][]Rule{}

// RegisterBundle attaches extra rules to a classification tag.
func RegisterBundle(tag string, rules ...Rule) {
	bundles[tag] = append(bundles[tag], rules...)
}

func init() {
	RegisterBundle(post.ClassificationFakeNews, Rule{
		Name:   RuleDisclaimerMissing,
		Safety: true,
		Check: func(c Context, p *post.Post) []string {
			if !strings.Contains(p.Body, Disclaimer) {
				return []string{RuleDisclaimerMissing}
			}
			return nil
		},
	})
}

// EnsureDisclaimer appends the fiction disclaimer exactly once.
func EnsureDisclaimer(body string) string {
	if strings.Contains(body, Disclaimer) {
		return body
	}
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return DisclaimerLine
	}
	return body + "\n\n" + DisclaimerLine
}
