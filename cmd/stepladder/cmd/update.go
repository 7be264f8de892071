package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepladder-dev/stepladder/internal/service/update"
)

var (
	// simulate requests a trial run instead of a real installation.
	simulate bool
	// keepDownloads leaves package archives in the temp directory.
	keepDownloads bool
	// runScripts executes installed upgrade scripts with the platform shell.
	runScripts bool

	// updateCmd applies every pending version in order.
	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Download and apply every pending version",
		Long: `Download and apply every version newer than the installed one, oldest
first, so no intermediate release is skipped.

With --simulate the whole pipeline runs, downloads included, but
installations are only probed and the per-entry outcome is reported
instead of written.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &update.Options{
				ConfigPath:    configPath,
				Simulate:      simulate,
				KeepDownloads: keepDownloads,
				ExecScript:    runScripts,
			}

			return update.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	updateCmd.Flags().BoolVarP(&simulate,
		"simulate", "s", false, "probe the installation without writing files")
	updateCmd.Flags().BoolVar(&keepDownloads,
		"keep-downloads", false, "keep package archives after installation")
	updateCmd.Flags().BoolVar(&runScripts,
		"exec-script", false, "run upgrade scripts with the platform shell")

	rootCmd.AddCommand(updateCmd)
}
