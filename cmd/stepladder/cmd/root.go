package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stepladder-dev/stepladder/internal/config"
	"github.com/stepladder-dev/stepladder/internal/logger"
	"github.com/stepladder-dev/stepladder/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel names the minimum level for log output.
	logLevel string

	// rootCmd represents the base command for checking and applying updates.
	rootCmd = &cobra.Command{
		Use:   "stepladder",
		Short: "Check for and apply application updates",
		Long: `Stepladder keeps an installation current by walking it up through
published releases one version at a time.

It reads a JSON manifest mapping versions to package archives, filters out
everything at or below the installed version, and applies the rest in
ascending order. Applying stepwise means data migrations and upgrade
scripts shipped with intermediate versions are never skipped.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the stepladder CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath,
		"config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel,
		"log-level", "info", "minimum log level (debug, info, warn, error)")
}
