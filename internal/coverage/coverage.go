package coverage

// Metric identifies a raw per-file measurement produced by the analysis.
type Metric int

const (
	// LinesToCover is the number of executable lines in a file.
	LinesToCover Metric = iota
	// UncoveredLines is the number of executable lines no test reached.
	UncoveredLines
)

// String returns the metric key used by measurement sources.
func (m Metric) String() string {
	switch m {
	case LinesToCover:
		return "lines_to_cover"
	case UncoveredLines:
		return "uncovered_lines"
	default:
		return "unknown"
	}
}

// Counts holds the raw line measurements of a single file.
// UncoveredLines never exceeds LinesToCover.
type Counts struct {
	LinesToCover   int64
	UncoveredLines int64
}

// CoveredLines returns the number of lines exercised by tests.
func (c Counts) CoveredLines() int64 {
	return c.LinesToCover - c.UncoveredLines
}

// Valid reports whether c could describe a real file.
func (c Counts) Valid() bool {
	return c.LinesToCover >= 0 && c.UncoveredLines >= 0 && c.UncoveredLines <= c.LinesToCover
}

// Percent returns the line coverage of c.
// ok is false when the file has no executable lines or the counts are invalid.
func (c Counts) Percent() (pct float64, ok bool) {
	if c.LinesToCover <= 0 || !c.Valid() {
		return 0, false
	}
	return Calculate(c.LinesToCover, c.UncoveredLines), true
}

// Stats holds aggregated coverage statistics for display.
type Stats struct {
	// Overall coverage percentage (0-100), zero when there is nothing to cover
	CoveragePercentage float64

	TotalLines        int64
	TotalCoveredLines int64
	TotalUncovered    int64
}
