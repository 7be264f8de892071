package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrOpen is returned when a package cannot be opened as a zip archive,
// whether because the file is missing or because its bytes are not a zip.
var ErrOpen = errors.New("cannot open archive")

// Reader iterates the entries of one release package.
type Reader struct {
	// rc is the underlying zip reader; closed by Close.
	rc *zip.ReadCloser
	// path is the archive location, kept for error messages.
	path string
}

// Entry is a single archive member in archive order.
type Entry struct {
	// Path is the cleaned relative path of the member inside the package.
	Path string
	// IsDir reports whether the member is a directory.
	IsDir bool
	// Size is the uncompressed size in bytes. Zero for directories.
	Size uint64
	// Unsafe marks members whose path would escape the extraction root,
	// either absolute or climbing out with "..".
	Unsafe bool

	file *zip.File
}

// OpenReader opens the package at path.
func OpenReader(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	return &Reader{rc: rc, path: path}, nil
}

// Entries returns the archive members in the order they are stored.
func (r *Reader) Entries() []Entry {
	entries := make([]Entry, 0, len(r.rc.File))

	for _, f := range r.rc.File {
		rel := filepath.Clean(f.Name)

		entries = append(entries, Entry{
			Path:   rel,
			IsDir:  f.FileInfo().IsDir(),
			Size:   f.UncompressedSize64,
			Unsafe: strings.HasPrefix(rel, "..") || filepath.IsAbs(rel),
			file:   f,
		})
	}

	return entries
}

// Close releases the underlying archive file.
func (r *Reader) Close() error {
	if err := r.rc.Close(); err != nil {
		return fmt.Errorf("close archive %s: %w", r.path, err)
	}

	return nil
}

// Open returns the member's content stream. The caller closes it.
func (e Entry) Open() (io.ReadCloser, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive member %s: %w", e.Path, err)
	}

	return rc, nil
}
