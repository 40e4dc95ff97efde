package baseline

import (
	"fmt"
	"strconv"
)

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("percentage %q out of range", s)
	}
	return v, nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
