package fetch

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/stepladder-dev/stepladder/internal/logger"
)

var (
	// ErrMalformedURL is returned when a URL fails validation before any I/O,
	// including URLs with a scheme no strategy supports.
	ErrMalformedURL = errors.New("malformed url")
	// ErrDownload is returned when retrieving the addressed bytes fails after
	// validation: transport errors, bad statuses, unreadable sources.
	ErrDownload = errors.New("download failed")
)

// Fetcher retrieves the bytes a URL addresses.
//
// A zero-length body is a valid result, not an error.
type Fetcher interface {
	// Fetch returns the complete contents addressed by rawURL.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	// FetchToFile stores the contents addressed by rawURL at destPath.
	// When destPath already exists, the fetch is skipped entirely, which
	// makes repeated runs reuse previously downloaded artifacts.
	FetchToFile(ctx context.Context, rawURL, destPath string) error
}

// destExists reports whether the destination artifact is already on disk.
// Used by every strategy to keep FetchToFile idempotent.
func destExists(ctx context.Context, destPath string) bool {
	if _, err := os.Stat(destPath); err == nil {
		logger.DebugKV(ctx, "Artifact already present, skipping download", "path", destPath)
		return true
	}

	return false
}

// writeStream copies src into a freshly created destPath.
// A partially written file is removed so a later run never reuses it.
func writeStream(destPath string, src io.Reader) error {
	destFile, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err = io.Copy(destFile, src); err != nil {
		_ = destFile.Close()
		_ = os.Remove(destPath)

		return err
	}

	if err = destFile.Close(); err != nil {
		_ = os.Remove(destPath)

		return err
	}

	return nil
}
