package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds the updater settings shared by the stepladder commands.
type Config struct {
	// ManifestURL is where the version manifest is published.
	ManifestURL string `yaml:"manifest_url"`
	// InstallDir is the root directory packages are installed into.
	InstallDir string `yaml:"install_dir"`
	// TempDir is where downloaded packages are kept between runs.
	TempDir string `yaml:"temp_dir"`
	// CurrentVersion pins the installed version. When empty, the updater
	// consults the persisted state and failing that assumes a version below
	// every published release.
	CurrentVersion string `yaml:"current_version"`
	// StateFile is the path to the JSON file storing updater state.
	StateFile string `yaml:"state_file"`
	// ScriptName is the root-level package member run after installation.
	ScriptName string `yaml:"script_name"`
	// Timeout bounds a single artifact fetch.
	Timeout time.Duration `yaml:"timeout"`
	// CacheTTL is how long a fetched manifest stays valid. Zero picks the
	// default once a cache backend is configured.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// RedisAddr switches the manifest cache to a shared Redis instance.
	RedisAddr string `yaml:"redis_addr"`
	// MaxRunTime caps a whole update run. Zero means no cap.
	MaxRunTime time.Duration `yaml:"max_run_time"`
	// IPv4Only forces downloads over IPv4.
	IPv4Only bool `yaml:"ipv4_only"`
	// KeepDownloads disables deleting package archives after installation.
	KeepDownloads bool `yaml:"keep_downloads"`
	// StrictVersions rejects manifests containing malformed version strings
	// instead of ranking them below every well-formed version.
	StrictVersions bool `yaml:"strict_versions"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "stepladder-settings.yaml"

	// DefaultStateFilename is the default filename for updater state JSON.
	DefaultStateFilename = "stepladder-state.json"

	// DefaultScriptName is the package member treated as the upgrade script.
	DefaultScriptName = "_upgrade.sh"

	// DefaultTimeout is the default bound for a single artifact fetch.
	// Generous because package archives can be large.
	DefaultTimeout = 60 * time.Second

	// DefaultCacheTTL is how long a fetched manifest stays valid by default.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errManifestURLRequired is returned when the manifest URL is missing.
	errManifestURLRequired = errors.New("manifest url must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, fills defaults, and expands home-relative paths.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ManifestURL == "" {
		return errManifestURLRequired
	}

	// Plain filesystem paths are valid manifest locations; only URLs with a
	// scheme go through URI validation.
	if strings.Contains(settings.ManifestURL, "://") {
		if _, err := url.ParseRequestURI(settings.ManifestURL); err != nil {
			return fmt.Errorf("invalid manifest url: %w", err)
		}
	}

	if settings.InstallDir == "" {
		settings.InstallDir = "."
	}

	if settings.TempDir == "" {
		settings.TempDir = filepath.Join(os.TempDir(), "stepladder")
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.ScriptName == "" {
		settings.ScriptName = DefaultScriptName
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.CacheTTL < 0 {
		settings.CacheTTL = 0
	}

	if settings.MaxRunTime < 0 {
		settings.MaxRunTime = 0
	}

	for _, path := range []*string{&settings.InstallDir, &settings.TempDir, &settings.StateFile} {
		expanded, err := homedir.Expand(*path)
		if err != nil {
			return fmt.Errorf("expand path %s: %w", *path, err)
		}

		*path = expanded
	}

	return nil
}
