package app

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewCovguardCommand creates the root command for the covguard tool.
func NewCovguardCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "covguard",
		Short:        "Report per-file line coverage regressions.",
		Long:         `covguard compares each file's line coverage against its last published value and annotates files whose coverage dropped.`,
		Version:      Version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: configs/config.yaml)")

	cmd.AddCommand(NewAnalyzeCommand(&configPath))
	cmd.AddCommand(NewBaselineCommand(&configPath))

	return cmd
}
