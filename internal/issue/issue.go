// Package issue turns coverage regressions into review annotations.
package issue

import (
	"fmt"
	"strings"

	"github.com/zjy-dev/covguard/internal/coverage"
)

// RuleSuffix is the rule name shared by every language repository.
const RuleSuffix = "DecreasingLineCoverage"

// GenericRepository receives files whose language has no dedicated rule.
const GenericRepository = "covguard-generic"

var repositories = map[string]string{
	"c":      "covguard-c",
	"cpp":    "covguard-cpp",
	"csharp": "covguard-csharp",
	"go":     "covguard-go",
	"java":   "covguard-java",
	"js":     "covguard-js",
	"kotlin": "covguard-kotlin",
	"py":     "covguard-py",
	"rust":   "covguard-rust",
	"ts":     "covguard-ts",
}

// Issue is a single annotation attached to a file.
type Issue struct {
	RuleKey string
	Message string
}

// RuleKey returns the decreasing-line-coverage rule for a language.
// Unknown or empty languages map to the generic repository.
func RuleKey(language string) string {
	repo, ok := repositories[strings.ToLower(language)]
	if !ok {
		repo = GenericRepository
	}
	return repo + ":" + RuleSuffix
}

// RuleKeys returns the rule key of every supported language plus the generic one.
func RuleKeys() []string {
	keys := make([]string, 0, len(repositories)+1)
	for lang := range repositories {
		keys = append(keys, RuleKey(lang))
	}
	return append(keys, GenericRepository+":"+RuleSuffix)
}

// IsCoverageRule reports whether key names a decreasing-line-coverage rule.
func IsCoverageRule(key string) bool {
	return strings.HasSuffix(key, ":"+RuleSuffix)
}

// FormatMessage renders the annotation text for a regressing file.
func FormatMessage(path string, current, previous float64) string {
	return fmt.Sprintf("Line coverage of file %s lowered from %s%% to %s%%.",
		path, coverage.FormatPercent(previous), coverage.FormatPercent(current))
}

// New builds the issue for a file of the given language.
func New(path, language string, current, previous float64) Issue {
	return Issue{
		RuleKey: RuleKey(language),
		Message: FormatMessage(path, current, previous),
	}
}
