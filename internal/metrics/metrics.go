// Package metrics exposes the project coverage aggregate of a run to
// Prometheus through the node exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/regression"
)

// Recorder holds the run metrics in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	linesToCover   *prometheus.GaugeVec
	uncoveredLines *prometheus.GaugeVec
	lineCoverage   *prometheus.GaugeVec
	files          *prometheus.GaugeVec
	regressions    *prometheus.CounterVec
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		linesToCover: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covguard_project_lines_to_cover",
			Help: "Executable lines across all measured files of the project.",
		}, []string{"project"}),
		uncoveredLines: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covguard_project_uncovered_lines",
			Help: "Executable lines no test reached.",
		}, []string{"project"}),
		lineCoverage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covguard_project_line_coverage_percent",
			Help: "Project line coverage in percent.",
		}, []string{"project"}),
		files: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "covguard_files",
			Help: "Files seen by the last analysis, by state.",
		}, []string{"project", "state"}),
		regressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "covguard_regressions_total",
			Help: "Files whose rounded line coverage dropped below the baseline.",
		}, []string{"project", "outcome"}),
	}
	r.registry.MustRegister(r.linesToCover, r.uncoveredLines, r.lineCoverage, r.files, r.regressions)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records the aggregate and the outcome of one run.
func (r *Recorder) Observe(projectKey string, totals coverage.Counts, sum *regression.Summary) {
	r.linesToCover.WithLabelValues(projectKey).Set(float64(totals.LinesToCover))
	r.uncoveredLines.WithLabelValues(projectKey).Set(float64(totals.UncoveredLines))
	if pct, ok := totals.Percent(); ok {
		r.lineCoverage.WithLabelValues(projectKey).Set(pct)
	}

	if sum == nil {
		return
	}
	r.files.WithLabelValues(projectKey, "total").Set(float64(sum.Files))
	r.files.WithLabelValues(projectKey, "measured").Set(float64(sum.Measured))
	r.files.WithLabelValues(projectKey, "no_history").Set(float64(sum.NoHistory))
	r.files.WithLabelValues(projectKey, "invalid").Set(float64(sum.Invalid))
	r.regressions.WithLabelValues(projectKey, "attached").Add(float64(sum.Attached))
	r.regressions.WithLabelValues(projectKey, "dropped").Add(float64(sum.Dropped))
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
