package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covguard/internal/config"
	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/gate"
	"github.com/zjy-dev/covguard/internal/logger"
	"github.com/zjy-dev/covguard/internal/metrics"
	"github.com/zjy-dev/covguard/internal/regression"
	"github.com/zjy-dev/covguard/internal/sensor"
	"github.com/zjy-dev/covguard/internal/sink"
)

// analyzeOptions are the flags of the analyze command that are not part of
// the config file.
type analyzeOptions struct {
	publish          bool
	failOnRegression bool
}

// NewAnalyzeCommand creates the "analyze" subcommand.
func NewAnalyzeCommand(configPath *string) *cobra.Command {
	var (
		flags commonFlags
		opts  analyzeOptions
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect line coverage regressions for the project.",
		Long: `Detect line coverage regressions for the configured project.

This command:
  1. Checks that coverage reporting is enabled and a DecreasingLineCoverage rule is active
  2. Reads every coverage report into a per-file measurement model
  3. Compares each file's rounded coverage with its last published value
  4. Writes one issue per regressing file to SARIF and Markdown
  5. Optionally publishes the current coverage as the next baseline

Examples:
  # Analyse using configs/config.yaml
  covguard analyze

  # Analyse an lcov report and record the result as the new baseline
  covguard analyze --report coverage/lcov.info --publish

  # Fail the build when any file regressed
  covguard analyze --fail-on-regression`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			defer logger.Close()

			sum, err := runAnalyze(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			if opts.failOnRegression && sum != nil && sum.Flagged > 0 {
				return fmt.Errorf("%d file(s) lowered their line coverage", sum.Flagged)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Record the current coverage as the next baseline")
	cmd.Flags().BoolVar(&opts.failOnRegression, "fail-on-regression", false, "Exit with an error when a regression is found")

	return cmd
}

func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions) (*regression.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("[Analyze] Project: %s", cfg.ProjectKey)

	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}
	g := gate.New(cfg.Coverage.Enabled, profile)
	if !g.ShouldRun() {
		logger.Info("[Analyze] Coverage reporting disabled or no DecreasingLineCoverage rule active, skipping")
		return nil, nil
	}

	model, err := loadModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := openBaseline(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	collector, err := sink.NewCollector(cfg.Coverage.Exclusions...)
	if err != nil {
		return nil, err
	}

	detector, err := regression.NewDetector(regression.Config{
		ProjectKey:  cfg.ProjectKey,
		Measures:    model,
		Baselines:   store,
		Sink:        collector,
		Diagnostics: logger.Diagnostics(),
	})
	if err != nil {
		return nil, err
	}

	sum, err := sensor.New(g, detector, model).Execute(ctx)
	if err != nil {
		return nil, err
	}

	stats := detector.Store().Stats()
	logger.Info("[Analyze] Project line coverage %s%% (%d lines to cover, %d uncovered)",
		coverage.FormatPercent(stats.CoveragePercentage), stats.TotalLines, stats.TotalUncovered)
	logger.Info("[Analyze] %d file(s), %d measured, %d regression(s), %d dropped",
		sum.Files, sum.Measured, sum.Flagged, sum.Dropped)

	if err := writeOutputs(cfg, detector, sum, collector); err != nil {
		return sum, err
	}

	if opts.publish {
		n, err := sensor.Record(ctx, cfg.ProjectKey, model, model, store)
		if err != nil {
			return sum, err
		}
		logger.Info("[Analyze] Published %d baseline(s)", n)
	}
	return sum, nil
}

func writeOutputs(cfg *config.Config, detector *regression.Detector, sum *regression.Summary, collector *sink.Collector) error {
	annotations := collector.Annotations()

	if cfg.Output.SarifDir != "" {
		path, err := sink.ExportSARIF(annotations, cfg.Output.SarifDir, "covguard", "covguard", Version, cfg.ProjectKey)
		if err != nil {
			return err
		}
		logger.Info("[Analyze] SARIF written to %s", path)

		if cfg.Output.Markdown {
			path, err := sink.NewMarkdownReporter(cfg.Output.SarifDir).Save(cfg.ProjectKey, sum, detector.Store().Stats(), annotations)
			if err != nil {
				return err
			}
			logger.Info("[Analyze] Report written to %s", path)
		}
	}

	if cfg.Output.MetricsTextfile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(cfg.ProjectKey, detector.Store().Totals(), sum)
		if err := rec.WriteTextfile(cfg.Output.MetricsTextfile); err != nil {
			return err
		}
	}
	return nil
}
