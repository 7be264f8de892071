package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestArchive builds a zip file whose members appear in the given order.
// A name with a trailing slash becomes a directory entry.
func writeTestArchive(t *testing.T, path string, members [][2]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for _, member := range members {
		entry, err := w.Create(member[0])
		require.NoError(t, err)

		if member[1] != "" {
			_, err = entry.Write([]byte(member[1]))
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// TestReaderEntriesInArchiveOrder verifies order, directory detection, and content access.
func TestReaderEntriesInArchiveOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeTestArchive(t, path, [][2]string{
		{"lib/", ""},
		{"lib/a.txt", "alpha"},
		{"_upgrade.sh", "echo done"},
	})

	reader, err := OpenReader(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, reader.Close())
	}()

	entries := reader.Entries()
	require.Len(t, entries, 3)

	require.Equal(t, "lib", entries[0].Path)
	require.True(t, entries[0].IsDir)

	require.Equal(t, filepath.Join("lib", "a.txt"), entries[1].Path)
	require.False(t, entries[1].IsDir)
	require.EqualValues(t, len("alpha"), entries[1].Size)

	require.Equal(t, "_upgrade.sh", entries[2].Path)

	rc, err := entries[1].Open()
	require.NoError(t, err)

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, []byte("alpha"), content)
}

// TestReaderFlagsUnsafePaths verifies that escaping paths are marked, not extracted.
func TestReaderFlagsUnsafePaths(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "evil.zip")
	writeTestArchive(t, path, [][2]string{
		{"../escape.txt", "evil"},
		{"/abs.txt", "evil"},
		{"ok.txt", "fine"},
	})

	reader, err := OpenReader(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, reader.Close())
	}()

	entries := reader.Entries()
	require.Len(t, entries, 3)
	require.True(t, entries[0].Unsafe)
	require.True(t, entries[1].Unsafe)
	require.False(t, entries[2].Unsafe)
}

// TestOpenReaderRejectsNonArchives verifies ErrOpen for missing and corrupt files.
func TestOpenReaderRejectsNonArchives(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := OpenReader(filepath.Join(dir, "absent.zip"))
	require.ErrorIs(t, err, ErrOpen)

	corrupt := filepath.Join(dir, "corrupt.zip")
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a zip"), 0o600))

	_, err = OpenReader(corrupt)
	require.ErrorIs(t, err, ErrOpen)
}
