package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validation, and defaulting.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing manifest URL.
	settings := new(Config)

	err := Validate(settings)
	require.Error(t, err)

	// Malformed manifest URL.
	settings = &Config{
		ManifestURL: "://broken",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Okay, with defaults filled in.
	settings = &Config{
		ManifestURL: "https://releases.example.com/manifest.json",
	}

	err = Validate(settings)
	require.NoError(t, err)
	require.Equal(t, ".", settings.InstallDir)
	require.NotEmpty(t, settings.TempDir)
	require.Equal(t, DefaultStateFilename, settings.StateFile)
	require.Equal(t, DefaultScriptName, settings.ScriptName)
	require.Equal(t, DefaultTimeout, settings.Timeout)
}

// TestValidateAcceptsPlainPaths verifies that a filesystem manifest location passes.
func TestValidateAcceptsPlainPaths(t *testing.T) {
	t.Parallel()

	settings := &Config{ManifestURL: "testdata/manifest.json"}
	require.NoError(t, Validate(settings))
}

// TestValidateExpandsHomePaths verifies tilde expansion of directory settings.
func TestValidateExpandsHomePaths(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory in this environment")
	}

	settings := &Config{
		ManifestURL: "https://releases.example.com/manifest.json",
		InstallDir:  "~/app",
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, filepath.Join(home, "app"), settings.InstallDir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ManifestURL:    "https://releases.example.com/manifest.json",
		InstallDir:     filepath.Join(dir, "app"),
		TempDir:        filepath.Join(dir, "tmp"),
		CurrentVersion: "1.2.3",
		CacheTTL:       time.Minute,
		IPv4Only:       true,
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ManifestURL, loaded.ManifestURL)
	require.Equal(t, settings.InstallDir, loaded.InstallDir)
	require.Equal(t, settings.CurrentVersion, loaded.CurrentVersion)
	require.Equal(t, settings.CacheTTL, loaded.CacheTTL)
	require.True(t, loaded.IPv4Only)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
