package regression

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/issue"
)

type fakeFiles []File

func (f fakeFiles) Files() iter.Seq[File] { return slices.Values(f) }

type fakeMeasures struct {
	counts  map[string]map[coverage.Metric]int64
	lookups int
}

func (m *fakeMeasures) set(path string, l, u int64) {
	if m.counts == nil {
		m.counts = make(map[string]map[coverage.Metric]int64)
	}
	m.counts[path] = map[coverage.Metric]int64{coverage.LinesToCover: l, coverage.UncoveredLines: u}
}

func (m *fakeMeasures) Measure(f File, metric coverage.Metric) (int64, bool) {
	m.lookups++
	v, ok := m.counts[f.Path][metric]
	return v, ok
}

type fakeBaselines struct {
	values map[string]float64
	err    error
	keys   []string
}

func (b *fakeBaselines) LineCoverage(_ context.Context, key string) (float64, bool, error) {
	b.keys = append(b.keys, key)
	if b.err != nil {
		return 0, false, b.err
	}
	v, ok := b.values[key]
	return v, ok, nil
}

type fakeSink struct {
	issues map[string]issue.Issue
	reject map[string]bool
}

func (s *fakeSink) Attach(f File, is issue.Issue) error {
	if s.reject[f.Path] {
		return fmt.Errorf("no perspective for %s", f.Path)
	}
	if s.issues == nil {
		s.issues = make(map[string]issue.Issue)
	}
	s.issues[f.Path] = is
	return nil
}

type recordingDiag struct {
	warnings []string
}

func (d *recordingDiag) Debugf(string, ...interface{}) {}

func (d *recordingDiag) Warnf(format string, args ...interface{}) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func newTestDetector(t *testing.T, m *fakeMeasures, b *fakeBaselines, s *fakeSink, d *recordingDiag) *Detector {
	t.Helper()
	det, err := NewDetector(Config{
		ProjectKey:  "proj",
		Measures:    m,
		Baselines:   b,
		Sink:        s,
		Diagnostics: d,
	})
	require.NoError(t, err)
	return det
}

func TestAnalyse_Regression(t *testing.T) {
	m := &fakeMeasures{}
	m.set("src/a.c", 100, 30)
	b := &fakeBaselines{values: map[string]float64{"proj:src/a.c": 80.0}}
	s := &fakeSink{}
	det := newTestDetector(t, m, b, s, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "src/a.c", Language: "c"}})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Flagged)
	assert.Equal(t, 1, sum.Attached)
	require.Contains(t, s.issues, "src/a.c")
	assert.Equal(t, "Line coverage of file src/a.c lowered from 80.0% to 70.0%.", s.issues["src/a.c"].Message)
	assert.Equal(t, "covguard-c:DecreasingLineCoverage", s.issues["src/a.c"].RuleKey)
	assert.Len(t, s.issues, 1)
}

func TestAnalyse_NoHistory(t *testing.T) {
	m := &fakeMeasures{}
	m.set("src/a.c", 100, 99)
	b := &fakeBaselines{}
	s := &fakeSink{}
	det := newTestDetector(t, m, b, s, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "src/a.c"}})
	require.NoError(t, err)

	assert.Empty(t, s.issues)
	assert.Equal(t, 1, sum.NoHistory)
	assert.Equal(t, coverage.Counts{LinesToCover: 100, UncoveredLines: 99}, det.Store().Totals())
}

func TestAnalyse_RoundingSuppressesNoise(t *testing.T) {
	m := &fakeMeasures{}
	// 75.2%
	m.set("a.go", 500, 124)
	// 89.96% against 89.5 rounds to 90 on both sides
	m.set("b.go", 2500, 251)
	b := &fakeBaselines{values: map[string]float64{"proj:a.go": 75.4, "proj:b.go": 89.5}}
	s := &fakeSink{}
	det := newTestDetector(t, m, b, s, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "a.go"}, {Path: "b.go"}})
	require.NoError(t, err)
	assert.Zero(t, sum.Flagged)
	assert.Empty(t, s.issues)
}

func TestAnalyse_ImprovementIsNotFlagged(t *testing.T) {
	m := &fakeMeasures{}
	m.set("a.go", 10, 0)
	b := &fakeBaselines{values: map[string]float64{"proj:a.go": 50}}
	s := &fakeSink{}
	det := newTestDetector(t, m, b, s, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "a.go"}})
	require.NoError(t, err)
	assert.Zero(t, sum.Flagged)
}

func TestAnalyse_SkipsUnmeasuredFiles(t *testing.T) {
	m := &fakeMeasures{}
	m.set("measured.go", 10, 5)
	m.counts["half.go"] = map[coverage.Metric]int64{coverage.LinesToCover: 10}
	b := &fakeBaselines{values: map[string]float64{"proj:half.go": 100, "proj:none.go": 100}}
	s := &fakeSink{}
	det := newTestDetector(t, m, b, s, &recordingDiag{})

	files := fakeFiles{{Path: "none.go"}, {Path: "half.go"}, {Path: "measured.go"}}
	sum, err := det.Analyse(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, 1, sum.Measured)
	assert.Equal(t, []string{"proj:measured.go"}, b.keys)
	assert.Equal(t, coverage.Counts{LinesToCover: 10, UncoveredLines: 5}, det.Store().Totals())
}

func TestAnalyse_ZeroLinesToCover(t *testing.T) {
	m := &fakeMeasures{}
	m.set("empty.go", 0, 0)
	b := &fakeBaselines{values: map[string]float64{"proj:empty.go": 100}}
	det := newTestDetector(t, m, b, &fakeSink{}, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "empty.go"}})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Measured)
	assert.Zero(t, sum.Flagged)
	assert.Empty(t, b.keys)
	assert.Equal(t, 1, det.Store().Files())
}

func TestAnalyse_InvalidCountsAreIgnored(t *testing.T) {
	m := &fakeMeasures{}
	// LF:-2 LH:-3 as a broken lcov summary would report it
	m.set("bad.c", -2, 1)
	m.set("over.c", 10, 11)
	m.set("good.c", 10, 5)
	b := &fakeBaselines{values: map[string]float64{"proj:bad.c": 90, "proj:over.c": 90, "proj:good.c": 90}}
	s := &fakeSink{}
	d := &recordingDiag{}
	det := newTestDetector(t, m, b, s, d)

	var sum *Summary
	require.NotPanics(t, func() {
		var err error
		sum, err = det.Analyse(context.Background(), fakeFiles{{Path: "bad.c"}, {Path: "over.c"}, {Path: "good.c"}})
		require.NoError(t, err)
	})

	assert.Equal(t, 2, sum.Invalid)
	assert.Equal(t, 1, sum.Measured)
	assert.Equal(t, []string{"proj:good.c"}, b.keys)
	assert.Equal(t, coverage.Counts{LinesToCover: 10, UncoveredLines: 5}, det.Store().Totals())
	assert.Len(t, s.issues, 1)
	require.Len(t, d.warnings, 2)
	assert.Contains(t, d.warnings[0], "bad.c")
}

func TestAnalyse_AttachFailureIsIsolated(t *testing.T) {
	m := &fakeMeasures{}
	m.set("gone.c", 100, 50)
	m.set("kept.c", 100, 50)
	b := &fakeBaselines{values: map[string]float64{"proj:gone.c": 90, "proj:kept.c": 90}}
	s := &fakeSink{reject: map[string]bool{"gone.c": true}}
	d := &recordingDiag{}
	det := newTestDetector(t, m, b, s, d)

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "gone.c"}, {Path: "kept.c"}})
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Flagged)
	assert.Equal(t, 1, sum.Dropped)
	assert.Equal(t, 1, sum.Attached)
	assert.Contains(t, s.issues, "kept.c")
	require.Len(t, d.warnings, 1)
	assert.Contains(t, d.warnings[0], "gone.c")
}

func TestAnalyse_BaselineErrorAborts(t *testing.T) {
	m := &fakeMeasures{}
	m.set("a.go", 10, 1)
	m.set("b.go", 10, 1)
	b := &fakeBaselines{err: errors.New("service down")}
	det := newTestDetector(t, m, b, &fakeSink{}, &recordingDiag{})

	sum, err := det.Analyse(context.Background(), fakeFiles{{Path: "a.go"}, {Path: "b.go"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "service down")
	assert.Equal(t, 1, sum.Files)
}

func TestAnalyse_AggregateSumsMeasuredFiles(t *testing.T) {
	m := &fakeMeasures{}
	var files fakeFiles
	var wantL, wantU int64
	for i := 1; i <= 20; i++ {
		path := fmt.Sprintf("f%d.go", i)
		files = append(files, File{Path: path})
		if i%3 == 0 {
			continue
		}
		l, u := int64(i*7), int64(i)
		m.set(path, l, u)
		wantL += l
		wantU += u
	}
	det := newTestDetector(t, m, &fakeBaselines{}, &fakeSink{}, &recordingDiag{})

	_, err := det.Analyse(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, coverage.Counts{LinesToCover: wantL, UncoveredLines: wantU}, det.Store().Totals())
}

func TestAnalyse_SecondRunIsStable(t *testing.T) {
	m := &fakeMeasures{}
	m.set("a.go", 3, 1)
	m.set("b.go", 7, 2)
	m.set("c.go", 5000, 2677)
	files := fakeFiles{{Path: "a.go"}, {Path: "b.go"}, {Path: "c.go"}}

	b := &fakeBaselines{values: map[string]float64{}}
	det := newTestDetector(t, m, b, &fakeSink{}, &recordingDiag{})
	_, err := det.Analyse(context.Background(), files)
	require.NoError(t, err)

	for _, f := range files {
		c := coverage.Counts{LinesToCover: m.counts[f.Path][coverage.LinesToCover], UncoveredLines: m.counts[f.Path][coverage.UncoveredLines]}
		pct, _ := c.Percent()
		b.values[ResourceKey("proj", f.Path)] = pct
	}

	s := &fakeSink{}
	det = newTestDetector(t, m, b, s, &recordingDiag{})
	sum, err := det.Analyse(context.Background(), files)
	require.NoError(t, err)
	assert.Zero(t, sum.Flagged)
	assert.Empty(t, s.issues)
}

func TestNewDetector_RequiresCollaborators(t *testing.T) {
	_, err := NewDetector(Config{})
	assert.Error(t, err)

	det, err := NewDetector(Config{Measures: &fakeMeasures{}, Baselines: &fakeBaselines{}, Sink: &fakeSink{}})
	require.NoError(t, err)
	assert.NotNil(t, det.Store())
}

func TestResourceKey(t *testing.T) {
	assert.Equal(t, "proj:src/a.c", ResourceKey("proj", "src/a.c"))
}
