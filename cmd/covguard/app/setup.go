package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covguard/internal/baseline"
	"github.com/zjy-dev/covguard/internal/config"
	"github.com/zjy-dev/covguard/internal/exec"
	"github.com/zjy-dev/covguard/internal/logger"
	"github.com/zjy-dev/covguard/internal/measure"
	"github.com/zjy-dev/covguard/internal/rules"
)

// commonFlags are shared by every command that reads coverage reports.
type commonFlags struct {
	projectKey string
	reports    []string
	sourceRoot string
	logLevel   string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectKey, "project-key", "", "Project key used to build resource keys")
	cmd.Flags().StringSliceVar(&f.reports, "report", nil, "Coverage report (lcov tracefile or gcovr JSON), repeatable")
	cmd.Flags().StringVar(&f.sourceRoot, "source-root", "", "Root of the analysed source tree")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, configPath string, f *commonFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("project-key") {
		cfg.ProjectKey = f.projectKey
	}
	if cmd.Flags().Changed("report") {
		cfg.Coverage.Reports = f.reports
	}
	if cmd.Flags().Changed("source-root") {
		cfg.Coverage.SourceRoot = f.sourceRoot
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func initLogging(cfg *config.Config) error {
	if cfg.Log.Dir != "" {
		return logger.InitWithFile(cfg.Log.Level, cfg.Log.Dir)
	}
	logger.Init(cfg.Log.Level)
	logger.SetLevel(cfg.Log.Level)
	return nil
}

// loadModel enumerates the source tree and reads every configured report.
func loadModel(ctx context.Context, cfg *config.Config) (*measure.Model, error) {
	root := cfg.Coverage.SourceRoot
	m := measure.NewModel(root)
	if err := m.WalkSources(root); err != nil {
		return nil, err
	}
	for _, report := range cfg.Coverage.Reports {
		if !filepath.IsAbs(report) {
			report = filepath.Join(root, report)
		}
		if err := m.ReadReport(report); err != nil {
			return nil, err
		}
		logger.Debug("Read coverage report %s", report)
	}
	if cfg.Coverage.GcovrCommand != "" {
		out, err := exec.Shell(ctx, exec.NewCommandExecutor(), root, cfg.Coverage.GcovrCommand)
		if err != nil {
			return nil, err
		}
		if err := m.ParseGcovrJSON(strings.NewReader(out)); err != nil {
			return nil, fmt.Errorf("failed to parse gcovr output: %w", err)
		}
		logger.Debug("Read gcovr output of %q", cfg.Coverage.GcovrCommand)
	}
	logger.Info("Loaded %d files from %d report(s)", m.Len(), len(cfg.Coverage.Reports))
	return m, nil
}

func loadProfile(cfg *config.Config) (*rules.Profile, error) {
	if cfg.Rules.Profile != "" {
		return rules.LoadProfile(cfg.Rules.Profile)
	}
	return rules.NewProfile("inline", cfg.Rules.Active...), nil
}

func openBaseline(cfg *config.Config) (baseline.Store, error) {
	switch cfg.Baseline.Source {
	case config.BaselineHTTP:
		return baseline.NewHTTPClient(cfg.Baseline.URL, cfg.Baseline.Token, cfg.Baseline.TimeoutDuration()), nil
	default:
		store, err := baseline.OpenBadger(baseline.BadgerConfig{
			Path:    cfg.Baseline.BadgerPath,
			Verbose: cfg.Log.Level == "debug",
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
