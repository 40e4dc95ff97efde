package measure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/zjy-dev/covguard/internal/coverage"
)

// ReadLCOV loads an lcov tracefile into the model.
//
// Format example:
//
//	SF:/path/to/source.c
//	DA:10,5
//	DA:11,0
//	LF:2
//	LH:1
//	end_of_record
func (m *Model) ReadLCOV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open lcov file: %w", err)
	}
	defer f.Close()

	if err := m.ParseLCOV(f); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ParseLCOV reads lcov records from r.
func (m *Model) ParseLCOV(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		current string
		hasDA   bool
		lf, lh  int64
		hasLF   bool
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "SF:"):
			current = strings.TrimPrefix(line, "SF:")
			hasDA, hasLF = false, false
			lf, lh = 0, 0
			m.AddRecord(current)

		case strings.HasPrefix(line, "DA:"):
			if current == "" {
				return fmt.Errorf("line %d: DA outside of a record", lineNo)
			}
			// DA:line,count[,checksum]
			parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
			if len(parts) < 2 {
				return fmt.Errorf("line %d: malformed DA record %q", lineNo, line)
			}
			n, err := strconv.Atoi(parts[0])
			if err != nil {
				return fmt.Errorf("line %d: bad line number: %w", lineNo, err)
			}
			hits, err := parseHits(parts[1])
			if err != nil {
				return fmt.Errorf("line %d: bad hit count: %w", lineNo, err)
			}
			if hits < 0 {
				return fmt.Errorf("line %d: negative hit count %d", lineNo, hits)
			}
			m.AddLine(current, n, hits)
			hasDA = true

		case strings.HasPrefix(line, "LF:"):
			v, err := strconv.ParseInt(strings.TrimPrefix(line, "LF:"), 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: bad LF: %w", lineNo, err)
			}
			if v < 0 {
				return fmt.Errorf("line %d: negative LF %d", lineNo, v)
			}
			lf, hasLF = v, true

		case strings.HasPrefix(line, "LH:"):
			v, err := strconv.ParseInt(strings.TrimPrefix(line, "LH:"), 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: bad LH: %w", lineNo, err)
			}
			if v < 0 {
				return fmt.Errorf("line %d: negative LH %d", lineNo, v)
			}
			lh = v

		case line == "end_of_record":
			if current != "" && !hasDA && hasLF {
				if lh > lf {
					return fmt.Errorf("line %d: LH %d exceeds LF %d", lineNo, lh, lf)
				}
				m.AddSummary(current, coverage.Counts{LinesToCover: lf, UncoveredLines: lf - lh})
			}
			current = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	if current != "" {
		return fmt.Errorf("record for %s is missing end_of_record", current)
	}
	return nil
}

// parseHits accepts plain counts and the floating point counts some
// generators emit.
func parseHits(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
