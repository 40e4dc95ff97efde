// Package regression detects per-file line coverage regressions against the
// last published baseline.
package regression

import (
	"context"
	"fmt"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/issue"
)

// Event describes a file whose rounded coverage dropped below its baseline.
type Event struct {
	Path     string
	Language string
	Previous float64
	Current  float64
}

// Issue renders the event as an annotation.
func (e Event) Issue() issue.Issue {
	return issue.New(e.Path, e.Language, e.Current, e.Previous)
}

// Summary counts what happened during one Analyse call.
type Summary struct {
	Files     int
	Measured  int
	NoHistory int
	Flagged   int
	Attached  int
	Dropped   int
	Invalid   int
}

// Detector compares the current line coverage of every file with its baseline.
type Detector struct {
	projectKey string
	measures   MeasureLookup
	baselines  BaselineLookup
	sink       IssueSink
	store      *coverage.ProjectStore
	diag       Diagnostics
}

// Config holds the collaborators of a Detector.
type Config struct {
	ProjectKey string
	Measures   MeasureLookup
	Baselines  BaselineLookup
	Sink       IssueSink
	// Store receives the totals of every measured file. A fresh store is
	// created when nil.
	Store       *coverage.ProjectStore
	Diagnostics Diagnostics
}

// NewDetector creates a detector. Measures, Baselines and Sink are required.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Measures == nil || cfg.Baselines == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("detector requires measures, baselines and sink")
	}
	store := cfg.Store
	if store == nil {
		store = coverage.NewProjectStore()
	}
	diag := cfg.Diagnostics
	if diag == nil {
		diag = nopDiagnostics{}
	}
	return &Detector{
		projectKey: cfg.ProjectKey,
		measures:   cfg.Measures,
		baselines:  cfg.Baselines,
		sink:       cfg.Sink,
		store:      store,
		diag:       diag,
	}, nil
}

// Store returns the project aggregate fed by the detector.
func (d *Detector) Store() *coverage.ProjectStore {
	return d.store
}

// Analyse walks every file once, in order. Attachment failures only drop the
// affected file; a baseline lookup error stops the walk and is returned along
// with the summary so far.
func (d *Detector) Analyse(ctx context.Context, src FileSource) (*Summary, error) {
	sum := &Summary{}
	for f := range src.Files() {
		sum.Files++
		if err := d.analyseFile(ctx, f, sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (d *Detector) analyseFile(ctx context.Context, f File, sum *Summary) error {
	linesToCover, ok := d.measures.Measure(f, coverage.LinesToCover)
	if !ok {
		return nil
	}
	uncovered, ok := d.measures.Measure(f, coverage.UncoveredLines)
	if !ok {
		return nil
	}

	counts := coverage.Counts{LinesToCover: linesToCover, UncoveredLines: uncovered}
	if !counts.Valid() {
		sum.Invalid++
		d.diag.Warnf("Ignoring %s: %d lines to cover, %d uncovered", f.Path, linesToCover, uncovered)
		return nil
	}

	sum.Measured++
	d.store.UpdateMeasurements(linesToCover, uncovered)

	current, ok := counts.Percent()
	if !ok {
		d.diag.Debugf("%s has no lines to cover", f.Path)
		return nil
	}

	previous, ok, err := d.baselines.LineCoverage(ctx, ResourceKey(d.projectKey, f.Path))
	if err != nil {
		return fmt.Errorf("failed to look up baseline of %s: %w", f.Path, err)
	}
	if !ok {
		sum.NoHistory++
		return nil
	}

	if !coverage.RoundedGreaterThan(previous, current) {
		return nil
	}

	ev := Event{Path: f.Path, Language: f.Language, Previous: previous, Current: current}
	sum.Flagged++

	if err := d.sink.Attach(f, ev.Issue()); err != nil {
		sum.Dropped++
		d.diag.Warnf("Could not attach coverage issue to %s: %v", f.Path, err)
		return nil
	}
	sum.Attached++
	return nil
}

type nopDiagnostics struct{}

func (nopDiagnostics) Debugf(string, ...interface{}) {}
func (nopDiagnostics) Warnf(string, ...interface{})  {}
