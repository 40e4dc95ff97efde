package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/regression"
)

// MarkdownReportName is the file written by MarkdownReporter.
const MarkdownReportName = "covguard_report.md"

// MarkdownReporter writes a human readable summary of a run.
type MarkdownReporter struct {
	outputDir string
}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter(outputDir string) *MarkdownReporter {
	return &MarkdownReporter{
		outputDir: outputDir,
	}
}

// Render builds the report text.
func (r *MarkdownReporter) Render(projectKey string, sum *regression.Summary, stats *coverage.Stats, annotations []Annotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Coverage Report: %s\n\n", projectKey)

	b.WriteString("## Project\n\n")
	fmt.Fprintf(&b, "**Line Coverage:** %s%%\n\n", coverage.FormatPercent(stats.CoveragePercentage))
	fmt.Fprintf(&b, "- Lines to cover: %d\n", stats.TotalLines)
	fmt.Fprintf(&b, "- Uncovered lines: %d\n", stats.TotalUncovered)
	fmt.Fprintf(&b, "- Files: %d (measured %d, without history %d)\n\n", sum.Files, sum.Measured, sum.NoHistory)

	b.WriteString("## Regressions\n\n")
	if len(annotations) == 0 && sum.Dropped == 0 {
		b.WriteString("No file lowered its line coverage.\n")
		return b.String()
	}

	if len(annotations) > 0 {
		b.WriteString("| File | Rule | Message |\n")
		b.WriteString("|------|------|---------|\n")
		for _, a := range annotations {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", a.File.Path, a.Issue.RuleKey, a.Issue.Message)
		}
		b.WriteString("\n")
	}
	if sum.Dropped > 0 {
		fmt.Fprintf(&b, "**Dropped:** %d regression(s) could not be attached.\n", sum.Dropped)
	}
	return b.String()
}

// Save writes the report and returns its path.
func (r *MarkdownReporter) Save(projectKey string, sum *regression.Summary, stats *coverage.Stats, annotations []Annotation) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	reportPath := filepath.Join(r.outputDir, MarkdownReportName)
	content := r.Render(projectKey, sum, stats, annotations)
	if err := os.WriteFile(reportPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return reportPath, nil
}
