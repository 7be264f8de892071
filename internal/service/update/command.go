package update

import (
	"context"
	"sort"
	"strings"

	"github.com/stepladder-dev/stepladder/cache"
	"github.com/stepladder-dev/stepladder/fetch"
	"github.com/stepladder-dev/stepladder/internal/config"
	"github.com/stepladder-dev/stepladder/internal/logger"
	"github.com/stepladder-dev/stepladder/updater"
)

// Options are inputs accepted by the stepladder command entry points.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// ManifestURL overrides the configured manifest location.
	ManifestURL string
	// Simulate requests a trial run instead of a real installation.
	Simulate bool
	// KeepDownloads leaves package archives in the temp directory.
	KeepDownloads bool
	// ExecScript runs installed upgrade scripts with the platform shell.
	ExecScript bool
}

// Check fetches the manifest and reports whether newer versions are published.
func Check(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "stepladder")

	coordinator, err := newCoordinator(opts)
	if err != nil {
		return err
	}

	available, err := coordinator.CheckUpdate(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Update check failed", "error", err)
		return err
	}

	if !available {
		logger.InfoKV(ctx, "Everything is up to date", "current", coordinator.CurrentVersion())
		return nil
	}

	logger.InfoKV(ctx, "Update available",
		"current", coordinator.CurrentVersion(),
		"latest", coordinator.LatestVersion(),
		"pending", strings.Join(coordinator.PendingVersions(), ", "))

	return nil
}

// Run applies every pending version in order and reports the outcome.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "stepladder")

	coordinator, err := newCoordinator(opts)
	if err != nil {
		return err
	}

	coordinator.OnVersionFinished(updater.VersionFinishedFunc(func(ctx context.Context, version string) error {
		logger.InfoKV(ctx, "Version finished", "version", version)
		return nil
	}))

	result, err := coordinator.Update(ctx, &updater.RunOptions{Simulate: opts.Simulate})
	if result != nil {
		logResult(ctx, result)
	}

	if err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	return nil
}

// newCoordinator maps the settings file and command options onto a coordinator.
func newCoordinator(opts *Options) (*updater.Updater, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.ManifestURL != "" {
		settings.ManifestURL = opts.ManifestURL
	}

	fetchOptions := []fetch.HTTPOption{fetch.WithTimeout(settings.Timeout)}
	if settings.IPv4Only {
		fetchOptions = append(fetchOptions, fetch.WithIPv4Only())
	}

	cfg := updater.Config{
		ManifestURL:    settings.ManifestURL,
		CurrentVersion: settings.CurrentVersion,
		TempDir:        settings.TempDir,
		InstallDir:     settings.InstallDir,
		ScriptName:     settings.ScriptName,
		Fetcher:        fetch.Default(fetchOptions...),
		CacheTTL:       settings.CacheTTL,
		StateFile:      settings.StateFile,
		StrictVersions: settings.StrictVersions,
		MaxRunTime:     settings.MaxRunTime,
		KeepDownloads:  settings.KeepDownloads || opts.KeepDownloads,
	}

	// A cache only pays off when it outlives the process.
	if settings.RedisAddr != "" {
		cfg.Cache = cache.NewRedis(settings.RedisAddr)

		if cfg.CacheTTL <= 0 {
			cfg.CacheTTL = config.DefaultCacheTTL
		}
	}

	if opts.ExecScript {
		cfg.ScriptRunner = execScript
	}

	return updater.New(cfg)
}

// logResult reports the run outcome, including the per-entry trace of a
// trial run.
func logResult(ctx context.Context, result *updater.Result) {
	logger.InfoKV(ctx, "Update finished",
		"status", result.Status.String(),
		"applied", strings.Join(result.Applied, ", "))

	if len(result.Reports) == 0 {
		return
	}

	versions := make([]string, 0, len(result.Reports))
	for version := range result.Reports {
		versions = append(versions, version)
	}

	sort.Strings(versions)

	for _, version := range versions {
		report := result.Reports[version]

		for i := range report.Entries {
			entry := &report.Entries[i]

			switch {
			case entry.Err != nil:
				logger.WarnKV(ctx, "Entry would fail",
					"version", version, "entry", entry.Path, "error", entry.Err)
			case entry.Skipped:
				logger.InfoKV(ctx, "Entry would be skipped",
					"version", version, "entry", entry.Path)
			case entry.IsDir:
				logger.InfoKV(ctx, "Directory would be ensured",
					"version", version, "entry", entry.Path)
			default:
				logger.InfoKV(ctx, "Entry would be written",
					"version", version, "entry", entry.Path, "size", entry.Size)
			}
		}
	}
}
