package baseline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/zjy-dev/covguard/internal/logger"
)

const keyPrefix = "line_coverage/"

// BadgerConfig holds the settings of a local baseline store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Useful for testing.
	InMemory bool

	// Verbose forwards badger's own log output to the logger.
	Verbose bool
}

// BadgerStore keeps baselines in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts the package logger to badger.Logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(strings.TrimSpace(format), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(strings.TrimSpace(format), args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(format), args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(format), args...)
}

// OpenBadger opens (creating if needed) a local baseline store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create baseline directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Verbose {
		opts = opts.WithLogger(badgerLogger{})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// LineCoverage returns the recorded line coverage of resourceKey.
func (s *BadgerStore) LineCoverage(_ context.Context, resourceKey string) (float64, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + resourceKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read baseline of %s: %w", resourceKey, err)
	}

	pct, err := parsePercent(string(raw))
	if err != nil {
		return 0, false, fmt.Errorf("baseline of %s: %w", resourceKey, err)
	}
	return pct, true, nil
}

// Publish records the line coverage of resourceKey, replacing any previous value.
func (s *BadgerStore) Publish(_ context.Context, resourceKey string, pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("percentage %v out of range", pct)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+resourceKey), []byte(formatPercent(pct)))
	})
	if err != nil {
		return fmt.Errorf("failed to record baseline of %s: %w", resourceKey, err)
	}
	return nil
}

// Keys returns every resource key with a recorded baseline, in key order.
func (s *BadgerStore) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().KeyCopy(nil)), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list baselines: %w", err)
	}
	return keys, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
