package validation

import (
	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model/post"
)

// Result carries the outcome of a validation pass. The full set of violated
// rule names is collected for display; nothing short-circuits.
type Result struct {
	Violations []string
	Warnings   []string

	// SafetyViolations is the subset produced by content-safety rules.
	// Forced execution may bypass structural rules but, unless separately
	// flagged, not these.
	SafetyViolations []string
}

// OK reports whether the post passed every rule.
func (r Result) OK() bool {
	return len(r.Violations) == 0
}

// Context is the read-only environment rules check against.
type Context struct {
	FS     afero.Fs
	Limits Limits
}

// Validator checks a post's current content against structural rules and the
// rule bundle selected by its classification tag. Validation is pure: it
// never mutates the post or its state.
type Validator struct {
	ctx Context
}

// New creates a validator over the given filesystem and limits.
func New(fs afero.Fs, limits Limits) *Validator {
	return &Validator{ctx: Context{FS: fs, Limits: limits}}
}

// Validate runs the base rules in fixed order, then the classification
// bundle, and returns every violation.
func (v *Validator) Validate(p *post.Post) Result {
	var res Result
	run := func(rules []Rule) {
		for _, rule := range rules {
			hits := rule.Check(v.ctx, p)
			res.Violations = append(res.Violations, hits...)
			if rule.Safety {
				res.SafetyViolations = append(res.SafetyViolations, hits...)
			}
		}
	}
	run(baseRules())
	if extra, ok := bundles[p.Classification]; ok {
		run(extra)
	}
	return res
}
