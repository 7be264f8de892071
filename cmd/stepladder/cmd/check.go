package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepladder-dev/stepladder/internal/service/update"
)

var (
	// checkManifestURL overrides the configured manifest location.
	checkManifestURL string

	// checkCmd reports whether newer versions are published.
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check whether newer versions are published",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &update.Options{
				ConfigPath:  configPath,
				ManifestURL: checkManifestURL,
			}

			return update.Check(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	checkCmd.Flags().StringVarP(&checkManifestURL,
		"manifest-url", "m", "", "override the configured manifest URL")

	rootCmd.AddCommand(checkCmd)
}
