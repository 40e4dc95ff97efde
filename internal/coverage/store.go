package coverage

// ProjectStore accumulates line totals over every measured file of one
// analysis run. It is owned by a single run and is not safe for concurrent use.
type ProjectStore struct {
	linesToCover   int64
	uncoveredLines int64
	files          int
}

// NewProjectStore returns an empty store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

// UpdateMeasurements adds one file's counts to the running totals.
func (s *ProjectStore) UpdateMeasurements(linesToCover, uncoveredLines int64) {
	s.linesToCover += linesToCover
	s.uncoveredLines += uncoveredLines
	s.files++
}

// Totals returns the accumulated counts.
func (s *ProjectStore) Totals() Counts {
	return Counts{LinesToCover: s.linesToCover, UncoveredLines: s.uncoveredLines}
}

// Files returns how many files contributed to the totals.
func (s *ProjectStore) Files() int {
	return s.files
}

// Stats returns the project aggregate in display form.
func (s *ProjectStore) Stats() *Stats {
	t := s.Totals()
	stats := &Stats{
		TotalLines:        t.LinesToCover,
		TotalCoveredLines: t.CoveredLines(),
		TotalUncovered:    t.UncoveredLines,
	}
	if pct, ok := t.Percent(); ok {
		stats.CoveragePercentage = pct
	}
	return stats
}
