// Package sink attaches coverage issues to files and exports them.
package sink

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/zjy-dev/covguard/internal/issue"
	"github.com/zjy-dev/covguard/internal/regression"
)

// ErrNoPerspective is returned when a file cannot receive annotations.
var ErrNoPerspective = errors.New("no issuable perspective")

// Annotation is an issue attached to a file.
type Annotation struct {
	File  regression.File
	Issue issue.Issue
}

// Collector keeps the issues attached during a run. Files matching one of
// the exclusion patterns have no perspective.
type Collector struct {
	exclusions  []string
	annotations []Annotation
}

// NewCollector creates a collector. Patterns use path.Match syntax and are
// matched against the slash separated project path; a pattern ending in
// "/**" excludes a whole directory.
func NewCollector(exclusions ...string) (*Collector, error) {
	for _, p := range exclusions {
		if _, err := path.Match(trimTree(p), ""); err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", p, err)
		}
	}
	return &Collector{exclusions: exclusions}, nil
}

func trimTree(p string) string {
	if len(p) > 3 && p[len(p)-3:] == "/**" {
		return p[:len(p)-3]
	}
	return p
}

func (c *Collector) excluded(p string) bool {
	for _, pattern := range c.exclusions {
		if pattern != trimTree(pattern) {
			dir := trimTree(pattern)
			for d := path.Dir(p); d != "." && d != "/"; d = path.Dir(d) {
				if ok, _ := path.Match(dir, d); ok {
					return true
				}
			}
			continue
		}
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Attach implements regression.IssueSink.
func (c *Collector) Attach(f regression.File, is issue.Issue) error {
	if f.Path == "" || c.excluded(f.Path) {
		return fmt.Errorf("%w for %q", ErrNoPerspective, f.Path)
	}
	c.annotations = append(c.annotations, Annotation{File: f, Issue: is})
	return nil
}

// Annotations returns the attached issues ordered by path then rule.
func (c *Collector) Annotations() []Annotation {
	out := make([]Annotation, len(c.annotations))
	copy(out, c.annotations)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File.Path == out[j].File.Path {
			return out[i].Issue.RuleKey < out[j].Issue.RuleKey
		}
		return out[i].File.Path < out[j].File.Path
	})
	return out
}

// Len returns the number of attached issues.
func (c *Collector) Len() int {
	return len(c.annotations)
}
