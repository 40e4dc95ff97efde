package coverage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStore(t *testing.T) {
	t.Run("should start empty", func(t *testing.T) {
		s := NewProjectStore()
		assert.Equal(t, Counts{}, s.Totals())
		assert.Equal(t, 0, s.Files())
		assert.Zero(t, s.Stats().CoveragePercentage)
	})

	t.Run("should sum every update", func(t *testing.T) {
		s := NewProjectStore()
		inputs := []Counts{{10, 2}, {0, 0}, {55, 55}, {7, 1}}

		var wantL, wantU int64
		for _, c := range inputs {
			s.UpdateMeasurements(c.LinesToCover, c.UncoveredLines)
			wantL += c.LinesToCover
			wantU += c.UncoveredLines

			// totals never decrease
			assert.Equal(t, wantL, s.Totals().LinesToCover)
			assert.Equal(t, wantU, s.Totals().UncoveredLines)
		}

		assert.Equal(t, 4, s.Files())
		stats := s.Stats()
		assert.Equal(t, int64(72), stats.TotalLines)
		assert.Equal(t, int64(14), stats.TotalCoveredLines)
		assert.Equal(t, int64(58), stats.TotalUncovered)
		assert.InDelta(t, 100*14.0/72.0, stats.CoveragePercentage, 1e-9)
	})

	t.Run("should hold totals beyond 32 bits", func(t *testing.T) {
		s := NewProjectStore()
		s.UpdateMeasurements(math.MaxInt32, 1)
		s.UpdateMeasurements(math.MaxInt32, 1)
		assert.Equal(t, int64(2*math.MaxInt32), s.Totals().LinesToCover)
	})
}
