// Package baseline looks up and records the last published line coverage of
// project files.
package baseline

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the metrics service cannot answer.
var ErrUnavailable = errors.New("baseline service unavailable")

// Source looks up previously published line coverage.
type Source interface {
	LineCoverage(ctx context.Context, resourceKey string) (pct float64, ok bool, err error)
}

// Publisher records the line coverage computed by a run.
type Publisher interface {
	Publish(ctx context.Context, resourceKey string, pct float64) error
}

// Store is a baseline source that can also record values.
type Store interface {
	Source
	Publisher
	Close() error
}
