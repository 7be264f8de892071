package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/stepladder-dev/stepladder/internal/domain/update"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	ts := time.Now().UTC().Truncate(time.Second)
	want := &domain.State{
		CurrentVersion: "2.0.1",
		LastRunAt:      ts,
		LastStatus:     "success",
		History: []domain.AppliedRelease{
			{Version: "2.0.0", AppliedAt: ts.Add(-time.Hour)},
			{Version: "2.0.1", AppliedAt: ts},
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.CurrentVersion, got.CurrentVersion)
	require.Equal(t, want.LastRunAt.Unix(), got.LastRunAt.Unix())
	require.Equal(t, want.LastStatus, got.LastStatus)
	require.Len(t, got.History, 2)
	require.Equal(t, want.History[0].Version, got.History[0].Version)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_RejectsCorruptFile verifies decode failures surface as errors.
func TestFileRepository_RejectsCorruptFile(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
