// Package sensor wires the run gate and the regression detector into a
// single analysis step run once per project.
package sensor

import (
	"context"
	"fmt"

	"github.com/zjy-dev/covguard/internal/baseline"
	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/regression"
)

// Step is an analysis step a host runs once per project.
type Step interface {
	ShouldRun() bool
	Execute(ctx context.Context) (*regression.Summary, error)
}

// Gate decides whether the step runs.
type Gate interface {
	ShouldRun() bool
}

// Sensor runs the detector over a project when the gate allows it.
type Sensor struct {
	gate     Gate
	detector *regression.Detector
	files    regression.FileSource
}

var _ Step = (*Sensor)(nil)

// New creates a sensor.
func New(g Gate, d *regression.Detector, files regression.FileSource) *Sensor {
	return &Sensor{gate: g, detector: d, files: files}
}

// ShouldRun reports whether Execute will analyse anything.
func (s *Sensor) ShouldRun() bool {
	return s.gate.ShouldRun()
}

// Execute analyses the project. It returns a nil summary without touching
// any collaborator when the gate is closed.
func (s *Sensor) Execute(ctx context.Context) (*regression.Summary, error) {
	if !s.ShouldRun() {
		return nil, nil
	}
	return s.detector.Analyse(ctx, s.files)
}

// Record publishes the current line coverage of every measured file so the
// next run compares against it. Files with no lines to cover are skipped.
func Record(ctx context.Context, projectKey string, files regression.FileSource, measures regression.MeasureLookup, pub baseline.Publisher) (int, error) {
	published := 0
	for f := range files.Files() {
		l, ok := measures.Measure(f, coverage.LinesToCover)
		if !ok {
			continue
		}
		u, ok := measures.Measure(f, coverage.UncoveredLines)
		if !ok {
			continue
		}
		pct, ok := coverage.Counts{LinesToCover: l, UncoveredLines: u}.Percent()
		if !ok {
			continue
		}
		if err := pub.Publish(ctx, regression.ResourceKey(projectKey, f.Path), pct); err != nil {
			return published, fmt.Errorf("failed to publish %s: %w", f.Path, err)
		}
		published++
	}
	return published, nil
}
