package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covguard/internal/baseline"
	"github.com/zjy-dev/covguard/internal/coverage"
	"github.com/zjy-dev/covguard/internal/logger"
	"github.com/zjy-dev/covguard/internal/regression"
	"github.com/zjy-dev/covguard/internal/sensor"
)

// NewBaselineCommand creates the "baseline" command group.
func NewBaselineCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect or record published line coverage.",
	}

	cmd.AddCommand(newBaselineRecordCommand(configPath))
	cmd.AddCommand(newBaselineShowCommand(configPath))

	return cmd
}

func newBaselineRecordCommand(configPath *string) *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Publish the current line coverage of every measured file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			defer logger.Close()

			model, err := loadModel(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			store, err := openBaseline(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := sensor.Record(cmd.Context(), cfg.ProjectKey, model, model, store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d baseline(s) for %s\n", n, cfg.ProjectKey)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newBaselineShowCommand(configPath *string) *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "show [path...]",
		Short: "Print the published line coverage of files.",
		Long: `Print the published line coverage of the given project paths.

Without arguments, every baseline of a local store is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			defer logger.Close()

			store, err := openBaseline(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			keys := make([]string, 0, len(args))
			for _, p := range args {
				keys = append(keys, regression.ResourceKey(cfg.ProjectKey, p))
			}
			if len(keys) == 0 {
				local, ok := store.(*baseline.BadgerStore)
				if !ok {
					return fmt.Errorf("listing requires a local store, pass paths instead")
				}
				if keys, err = local.Keys(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, key := range keys {
				pct, ok, err := store.LineCoverage(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "%s\t-\n", key)
					continue
				}
				fmt.Fprintf(out, "%s\t%s%%\n", key, coverage.FormatPercent(pct))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
