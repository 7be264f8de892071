package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stepladder-dev/stepladder/archive"
	"github.com/stepladder-dev/stepladder/cache"
	"github.com/stepladder-dev/stepladder/fetch"
	"github.com/stepladder-dev/stepladder/install"
	domain "github.com/stepladder-dev/stepladder/internal/domain/update"
	"github.com/stepladder-dev/stepladder/internal/logger"
	"github.com/stepladder-dev/stepladder/internal/repository/state"
	"github.com/stepladder-dev/stepladder/release"
)

const (
	// DefaultScriptName is the package member treated as the upgrade script
	// when Config.ScriptName is empty.
	DefaultScriptName = "_upgrade.sh"

	// fallbackVersion is assumed when neither the configuration nor the
	// persisted state names an installed version. It ranks below every
	// published release, so a fresh install takes everything.
	fallbackVersion = "0"
)

// errManifestURLRequired is returned by New when no manifest URL is configured.
var errManifestURLRequired = errors.New("manifest url must be provided")

// ScriptRunner executes an installed upgrade script. The updater core never
// loads code by itself; callers decide what running a script means.
type ScriptRunner func(ctx context.Context, scriptPath string) error

// Config assembles an Updater. Zero values get sensible defaults; only
// ManifestURL is mandatory.
type Config struct {
	// ManifestURL is where the version manifest is published.
	ManifestURL string
	// CurrentVersion pins the installed version. When empty, the persisted
	// state is consulted, and failing that a version below every release
	// is assumed.
	CurrentVersion string
	// TempDir holds downloaded packages and the run marker.
	// Defaults to a "stepladder" directory under the system temp root.
	TempDir string
	// InstallDir is the root packages are installed into. Defaults to ".".
	InstallDir string
	// ScriptName is the root-level package member run after installation.
	// Defaults to DefaultScriptName.
	ScriptName string
	// Fetcher retrieves manifests and packages. Defaults to fetch.Default().
	Fetcher fetch.Fetcher
	// Cache holds manifest copies between checks. Nil disables caching.
	Cache cache.Cache
	// CacheTTL is how long a cached manifest stays valid. Non-positive
	// disables caching even with a Cache configured.
	CacheTTL time.Duration
	// StateFile persists updater state as JSON. Empty disables persistence.
	StateFile string
	// StrictVersions rejects manifests containing malformed version strings.
	StrictVersions bool
	// MaxRunTime caps one Update call. Zero means no cap.
	MaxRunTime time.Duration
	// KeepDownloads leaves package archives in TempDir after installation.
	KeepDownloads bool
	// ScriptRunner executes upgrade scripts after a successful installation.
	// Nil means scripts are installed, tracked, and removed without running.
	ScriptRunner ScriptRunner
	// DisableGuard switches off the cross-process run marker. Meant for
	// embedders that serialize runs themselves.
	DisableGuard bool
}

// Updater coordinates the update pipeline for one installation.
// Methods are safe for concurrent use; runs are serialized internally and
// across processes via the run marker.
type Updater struct {
	cfg     Config
	fetcher fetch.Fetcher
	engine  *install.Engine
	repo    state.Repository

	// mu serializes checks and runs and guards the fields below.
	mu sync.Mutex
	// plan is the pending work from the last check, nil before any check
	// and after a completed run.
	plan *release.Plan
	// currentVersion is the resolved installed version, advanced as
	// versions are applied.
	currentVersion string

	versionListeners []VersionFinishedListener
	runListeners     []RunFinishedListener
}

// New builds an Updater, creating the temp and install directories when absent.
func New(cfg Config) (*Updater, error) {
	if cfg.ManifestURL == "" {
		return nil, errManifestURLRequired
	}

	if cfg.ScriptName == "" {
		cfg.ScriptName = DefaultScriptName
	}

	if cfg.InstallDir == "" {
		cfg.InstallDir = "."
	}

	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "stepladder")
	}

	if cfg.Fetcher == nil {
		cfg.Fetcher = fetch.Default()
	}

	for _, dir := range []string{cfg.TempDir, cfg.InstallDir} {
		if err := os.MkdirAll(dir, install.DefaultDirMode); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", install.ErrCreateDir, dir, err)
		}
	}

	u := &Updater{
		cfg:     cfg,
		fetcher: cfg.Fetcher,
		engine:  install.NewEngine(cfg.InstallDir, cfg.ScriptName),
	}

	if cfg.StateFile != "" {
		u.repo = state.NewFileRepository(cfg.StateFile)
	}

	u.currentVersion = u.resolveCurrentVersion()

	return u, nil
}

// CheckUpdate refreshes the update plan from the manifest and reports whether
// anything newer than the current version is available.
//
// The previous plan is discarded before the fetch, so a failed check leaves
// the updater reporting no pending versions.
func (u *Updater) CheckUpdate(ctx context.Context) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.checkUpdate(logger.WithName(ctx, "updater"))
}

// NewVersionAvailable reports whether the last check found pending versions.
func (u *Updater) NewVersionAvailable() bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.plan.HasPending()
}

// LatestVersion returns the highest pending version from the last check,
// or "" when nothing is pending.
func (u *Updater) LatestVersion() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.plan == nil {
		return ""
	}

	return u.plan.Latest
}

// PendingVersions returns the pending versions in apply order.
func (u *Updater) PendingVersions() []string {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.plan.Versions()
}

// CurrentVersion returns the version the updater considers installed.
func (u *Updater) CurrentVersion() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.currentVersion
}

// Update applies every pending version in ascending order and returns how
// the run ended. When no check has happened yet, one is performed first.
//
// The first failing version halts the run; versions already applied stay
// applied. Listener errors abort the run and surface unwrapped apart from
// dispatch context, with the result reflecting the work done so far.
// When another run holds the marker, Update returns ErrAlreadyRunning and
// no result.
func (u *Updater) Update(ctx context.Context, opts *RunOptions) (*Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if opts == nil {
		opts = &RunOptions{}
	}

	ctx = logger.WithName(ctx, "updater")

	if u.cfg.MaxRunTime > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, u.cfg.MaxRunTime)
		defer cancel()
	}

	result := &Result{}
	if opts.Simulate {
		result.Reports = make(map[string]*install.Report)
	}

	if !u.cfg.DisableGuard {
		// The run marker lives in the temp directory; validate it first so a
		// broken directory reports as such instead of as a marker error.
		if err := validateDir(u.cfg.TempDir); err != nil {
			result.Status = StatusTempDirInvalid
			u.finishRun(ctx, result, opts)

			return result, fmt.Errorf("temp directory: %w", err)
		}

		runGuard, err := acquireGuard(ctx, u.cfg.TempDir)
		if err != nil {
			return nil, err
		}

		defer runGuard.release(ctx)
	}

	if u.plan == nil {
		if _, err := u.checkUpdate(ctx); err != nil {
			result.Status = StatusCheckFailed
			u.finishRun(ctx, result, opts)

			return result, fmt.Errorf("check update: %w", err)
		}
	}

	if !u.plan.HasPending() {
		logger.Info(ctx, "No update required")

		result.Status = StatusNoUpdate
		u.finishRun(ctx, result, opts)

		return result, nil
	}

	for _, rel := range u.plan.Pending {
		if status, err := u.applyRelease(ctx, rel, opts, result); err != nil {
			result.Status = status
			u.finishRun(ctx, result, opts)

			return result, err
		}

		result.Applied = append(result.Applied, rel.Version)
		result.Status = StatusSuccess

		if !opts.Simulate {
			u.recordApplied(ctx, rel.Version)
		}

		if err := u.dispatchVersionFinished(ctx, rel.Version); err != nil {
			u.finishRun(ctx, result, opts)

			return result, err
		}

		// The version is finished and announced; now the package must go.
		// An archive that cannot be cleaned up stops the pipeline.
		if !u.cfg.KeepDownloads {
			artifact := u.artifactPath(rel.Version)

			if err := os.Remove(artifact); err != nil {
				result.Status = StatusDeleteFailed
				u.finishRun(ctx, result, opts)

				return result, fmt.Errorf("delete package %s: %w", artifact, err)
			}
		}
	}

	if err := u.dispatchRunFinished(ctx, result.Applied); err != nil {
		u.finishRun(ctx, result, opts)

		return result, err
	}

	if !opts.Simulate {
		// The plan is consumed; the next run checks the manifest again.
		u.plan = nil
	}

	u.finishRun(ctx, result, opts)
	logger.InfoKV(ctx, "Update run finished", "status", result.Status.String(), "applied", len(result.Applied))

	return result, nil
}

// checkUpdate rebuilds the plan under the held lock.
func (u *Updater) checkUpdate(ctx context.Context) (bool, error) {
	u.plan = nil

	data, err := u.manifestBytes(ctx)
	if err != nil {
		return false, err
	}

	manifest, err := release.ParseManifest(data)
	if err != nil {
		return false, err
	}

	plan, err := release.BuildPlan(manifest, u.currentVersion, u.cfg.StrictVersions)
	if err != nil {
		return false, err
	}

	u.plan = plan
	logger.InfoKV(ctx, "Update check finished",
		"current", u.currentVersion, "latest", plan.Latest, "pending", len(plan.Pending))

	return plan.HasPending(), nil
}

// manifestBytes returns the manifest document, consulting the cache first.
func (u *Updater) manifestBytes(ctx context.Context) ([]byte, error) {
	cacheEnabled := u.cfg.Cache != nil && u.cfg.CacheTTL > 0
	cacheKey := cache.ManifestKeyPrefix + u.cfg.ManifestURL

	if cacheEnabled {
		if data, ok := u.cfg.Cache.Get(ctx, cacheKey); ok {
			logger.Debug(ctx, "Using cached manifest")
			return data, nil
		}
	}

	data, err := u.fetcher.Fetch(ctx, u.cfg.ManifestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	if cacheEnabled {
		if err = u.cfg.Cache.Set(ctx, cacheKey, data, u.cfg.CacheTTL); err != nil {
			logger.WarnKV(ctx, "Unable to cache manifest", "error", err)
		}
	}

	return data, nil
}

// applyRelease takes one version through download, installation, and the
// upgrade script. On failure it returns the terminal status for the run and
// cleans the package up best-effort; the success-path cleanup happens in
// Update, after the version's listeners have fired.
func (u *Updater) applyRelease(
	ctx context.Context,
	rel release.Release,
	opts *RunOptions,
	result *Result,
) (Status, error) {
	// Directories can rot between runs; re-validate both before any I/O.
	if err := validateDir(u.cfg.TempDir); err != nil {
		return StatusTempDirInvalid, fmt.Errorf("temp directory: %w", err)
	}

	if err := validateDir(u.cfg.InstallDir); err != nil {
		return StatusInstallDirInvalid, fmt.Errorf("install directory: %w", err)
	}

	artifact := u.artifactPath(rel.Version)

	logger.InfoKV(ctx, "Fetching package", "version", rel.Version, "url", rel.URL)

	if err := u.fetcher.FetchToFile(ctx, rel.URL, artifact); err != nil {
		return StatusDownloadFailed, fmt.Errorf("download %s: %w", rel.Version, err)
	}

	var (
		report *install.Report
		err    error
	)

	if opts.Simulate {
		logger.InfoKV(ctx, "Simulating installation", "version", rel.Version)

		report, err = u.engine.Simulate(ctx, artifact)
		if report != nil {
			result.Reports[rel.Version] = report
		}
	} else {
		logger.InfoKV(ctx, "Installing package", "version", rel.Version)

		report, err = u.engine.Apply(ctx, artifact)
		if report != nil {
			logReportSummary(ctx, report)
		}
	}

	if err != nil {
		// The real failure keeps the terminal status; cleanup is best-effort.
		u.removeArtifactQuietly(ctx, artifact)

		switch {
		case errors.Is(err, archive.ErrOpen):
			return StatusInvalidArchive, err
		case errors.Is(err, install.ErrSimulation):
			return StatusSimulateFailed, err
		default:
			return StatusInstallFailed, err
		}
	}

	if !opts.Simulate && report.ScriptPath != "" {
		if err = u.runUpgradeScript(ctx, report.ScriptPath); err != nil {
			u.removeArtifactQuietly(ctx, artifact)

			return StatusInstallFailed, err
		}
	}

	return StatusSuccess, nil
}

// artifactPath is where the version's package archive is staged.
func (u *Updater) artifactPath(version string) string {
	return filepath.Join(u.cfg.TempDir, version+".zip")
}

// runUpgradeScript hands the installed script to the configured runner and
// removes the file afterwards. Without a runner, the script is only removed.
func (u *Updater) runUpgradeScript(ctx context.Context, scriptPath string) error {
	if u.cfg.ScriptRunner != nil {
		logger.InfoKV(ctx, "Running upgrade script", "path", scriptPath)

		if err := u.cfg.ScriptRunner(ctx, scriptPath); err != nil {
			return fmt.Errorf("upgrade script %s: %w", scriptPath, err)
		}
	}

	if err := os.Remove(scriptPath); err != nil {
		logger.WarnKV(ctx, "Unable to remove upgrade script", "path", scriptPath, "error", err)
	}

	return nil
}

// recordApplied advances the in-memory version and persists the installation.
// Persistence failures are logged: the files are already on disk, and a
// missed history entry must not fail the run.
func (u *Updater) recordApplied(ctx context.Context, version string) {
	u.currentVersion = version

	if u.repo == nil {
		return
	}

	st := u.loadOrNewState(ctx)
	st.RecordApplied(version, time.Now().UTC())

	if err := u.repo.Save(ctx, st); err != nil {
		logger.ErrorKV(ctx, "Unable to persist updater state", "error", err)
	}
}

// finishRun stamps the run outcome into the persisted state.
// Simulate runs leave durable state untouched.
func (u *Updater) finishRun(ctx context.Context, result *Result, opts *RunOptions) {
	if opts.Simulate || u.repo == nil {
		return
	}

	st := u.loadOrNewState(ctx)
	st.LastRunAt = time.Now().UTC()
	st.LastStatus = result.Status.String()

	if err := u.repo.Save(ctx, st); err != nil {
		logger.ErrorKV(ctx, "Unable to persist updater state", "error", err)
	}
}

// loadOrNewState returns the persisted state or a fresh one.
func (u *Updater) loadOrNewState(ctx context.Context) *domain.State {
	st, err := u.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			logger.WarnKV(ctx, "Unable to load updater state, starting fresh", "error", err)
		}

		st = &domain.State{CurrentVersion: u.currentVersion}
	}

	return st
}

// resolveCurrentVersion picks the installed version from the configuration,
// then the persisted state, then the fallback.
func (u *Updater) resolveCurrentVersion() string {
	if u.cfg.CurrentVersion != "" {
		return u.cfg.CurrentVersion
	}

	if u.repo != nil {
		if st, err := u.repo.Load(context.Background()); err == nil && st.CurrentVersion != "" {
			return st.CurrentVersion
		}
	}

	return fallbackVersion
}

// removeArtifactQuietly deletes a package archive on the failure path, where
// the delete outcome never overrides the run's terminal status.
func (u *Updater) removeArtifactQuietly(ctx context.Context, artifact string) {
	if u.cfg.KeepDownloads {
		return
	}

	if err := os.Remove(artifact); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove package after failure", "path", artifact, "error", err)
	}
}

// validateDir confirms dir exists, is a directory, and accepts new files.
func validateDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	return install.EnsureDirWritable(dir)
}

// logReportSummary condenses an apply trace into one log line; the engine
// already logged the per-entry detail.
func logReportSummary(ctx context.Context, report *install.Report) {
	logger.InfoKV(ctx, "Installation pass finished",
		"archive", report.ArchivePath,
		"entries", len(report.Entries),
		"failed", len(report.Failed()),
		"script", report.ScriptPath)
}
