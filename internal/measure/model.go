// Package measure holds the per-file line measurements of one analysis run.
package measure

import (
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/regression"
)

// fileData collects the line hits of one source file across reports.
type fileData struct {
	language string
	// line number -> hit count, merged with max across reports
	lines map[int]int64
	// LF/LH summary, used only when a report carries no DA records
	summary  *coverage.Counts
	measured bool
}

// Model is an in-memory measurement model keyed by project-relative path.
// It implements regression.FileSource and regression.MeasureLookup.
type Model struct {
	root  string
	files map[string]*fileData
}

// NewModel creates an empty model. Absolute report paths under root are
// stored relative to it.
func NewModel(root string) *Model {
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Model{
		root:  root,
		files: make(map[string]*fileData),
	}
}

// Normalize converts a report or filesystem path to the model's key form.
func (m *Model) Normalize(path string) string {
	p := strings.TrimSpace(path)
	if m.root != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(m.root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	p = filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(p, "./")
}

func (m *Model) file(path string) *fileData {
	key := m.Normalize(path)
	fd, ok := m.files[key]
	if !ok {
		fd = &fileData{language: Language(key), lines: make(map[int]int64)}
		m.files[key] = fd
	}
	return fd
}

// AddSource registers a file that exists in the project. Files never seen in
// a report stay unmeasured.
func (m *Model) AddSource(path string) {
	m.file(path)
}

// AddRecord marks a path as present in a coverage report, even when the
// record lists no executable lines.
func (m *Model) AddRecord(path string) {
	m.file(path).measured = true
}

// AddLine records the hit count of one executable line.
func (m *Model) AddLine(path string, line int, hits int64) {
	fd := m.file(path)
	fd.measured = true
	if prev, ok := fd.lines[line]; !ok || hits > prev {
		fd.lines[line] = hits
	}
}

// AddSummary records file totals for reports that carry no per-line data.
func (m *Model) AddSummary(path string, c coverage.Counts) {
	fd := m.file(path)
	fd.measured = true
	if fd.summary == nil {
		fd.summary = &c
		return
	}
	// keep the best known coverage of the same file
	if c.LinesToCover > fd.summary.LinesToCover ||
		(c.LinesToCover == fd.summary.LinesToCover && c.UncoveredLines < fd.summary.UncoveredLines) {
		fd.summary = &c
	}
}

// Counts returns the measurements of a path.
func (m *Model) Counts(path string) (coverage.Counts, bool) {
	fd, ok := m.files[m.Normalize(path)]
	if !ok || !fd.measured {
		return coverage.Counts{}, false
	}
	if len(fd.lines) > 0 {
		c := coverage.Counts{LinesToCover: int64(len(fd.lines))}
		for _, hits := range fd.lines {
			if hits == 0 {
				c.UncoveredLines++
			}
		}
		return c, true
	}
	if fd.summary != nil {
		return *fd.summary, true
	}
	// a record with no executable lines
	return coverage.Counts{}, true
}

// Measure implements regression.MeasureLookup.
func (m *Model) Measure(f regression.File, metric coverage.Metric) (int64, bool) {
	c, ok := m.Counts(f.Path)
	if !ok {
		return 0, false
	}
	switch metric {
	case coverage.LinesToCover:
		return c.LinesToCover, true
	case coverage.UncoveredLines:
		return c.UncoveredLines, true
	default:
		return 0, false
	}
}

// Paths returns every known path in lexical order.
func (m *Model) Paths() []string {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of known files.
func (m *Model) Len() int {
	return len(m.files)
}

// Files implements regression.FileSource. Files are yielded in path order.
func (m *Model) Files() iter.Seq[regression.File] {
	paths := m.Paths()
	return func(yield func(regression.File) bool) {
		for _, p := range paths {
			if !yield(regression.File{Path: p, Language: m.files[p].language}) {
				return
			}
		}
	}
}
