package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/stepladder-dev/stepladder/internal/logger"
)

// FileFetcher retrieves artifacts from the local filesystem.
// It accepts file URLs and plain paths, serving as the byte-stream fallback
// for environments where releases are published on a mounted share.
type FileFetcher struct{}

var _ Fetcher = (*FileFetcher)(nil)

// NewFileFetcher returns the filesystem fetching strategy.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Fetch reads the complete contents of the addressed file.
func (f *FileFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	path, err := filePath(rawURL)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDownload, path, err)
	}

	return data, nil
}

// FetchToFile copies the addressed file to destPath,
// skipping the copy when destPath already exists.
func (f *FileFetcher) FetchToFile(ctx context.Context, rawURL, destPath string) error {
	if destExists(ctx, destPath) {
		return nil
	}

	path, err := filePath(rawURL)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrDownload, path, err)
	}

	defer func() {
		_ = src.Close()
	}()

	if err = writeStream(destPath, src); err != nil {
		return fmt.Errorf("%w: store %s: %w", ErrDownload, destPath, err)
	}

	logger.InfoKV(ctx, "Copied artifact", "source", path, "path", destPath)

	return nil
}

// filePath resolves a file URL or plain path to a filesystem path.
func filePath(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrMalformedURL, rawURL, err)
		}

		if u.Path == "" {
			return "", fmt.Errorf("%w: %q has no path", ErrMalformedURL, rawURL)
		}

		return u.Path, nil
	}

	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: empty path", ErrMalformedURL)
	}

	return rawURL, nil
}
