// Package gate decides whether coverage regression analysis runs for a project.
package gate

import "github.com/zjy-dev/covguard/internal/issue"

// RuleSet answers whether any active rule matches a predicate.
type RuleSet interface {
	AnyActive(match func(key string) bool) bool
}

// Gate combines the coverage setting with the active rule set.
type Gate struct {
	enabled bool
	rules   RuleSet
}

// New returns a gate over the given setting and rules. A nil rule set never
// enables the analysis.
func New(enabled bool, rules RuleSet) *Gate {
	return &Gate{enabled: enabled, rules: rules}
}

// ShouldRun reports whether coverage reporting is enabled and at least one
// decreasing-line-coverage rule is active.
func (g *Gate) ShouldRun() bool {
	if !g.enabled || g.rules == nil {
		return false
	}
	return g.rules.AnyActive(issue.IsCoverageRule)
}
