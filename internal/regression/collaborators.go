package regression

import (
	"context"
	"iter"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/issue"
)

// File describes one source file of the analysed project.
type File struct {
	// Path is relative to the project root, slash separated.
	Path     string
	Language string
}

// FileSource enumerates the files of a project. The sequence may only be
// consumed once.
type FileSource interface {
	Files() iter.Seq[File]
}

// MeasureLookup returns a raw measurement of a file.
// ok is false when the metric has not been measured.
type MeasureLookup interface {
	Measure(f File, m coverage.Metric) (value int64, ok bool)
}

// BaselineLookup returns the last published line coverage of a resource.
// ok is false when the resource has no history. An error aborts the run.
type BaselineLookup interface {
	LineCoverage(ctx context.Context, resourceKey string) (pct float64, ok bool, err error)
}

// IssueSink attaches issues to files.
type IssueSink interface {
	Attach(f File, is issue.Issue) error
}

// Diagnostics receives the detector's log output.
type Diagnostics interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// ResourceKey returns the stable identifier of a file on the metrics service.
func ResourceKey(projectKey, path string) string {
	return projectKey + ":" + path
}
