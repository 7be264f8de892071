package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/stepladder-dev/stepladder/internal/logger"
)

const (
	// MarkerFilename marks that an update run is in progress to avoid
	// parallel execution. The marker lives in the temp directory.
	MarkerFilename = "stepladder-update-marker.bin"

	// markerLifetime is the age after which a marker with an unreadable
	// owner is considered stale.
	markerLifetime = 30 * time.Second
)

// ErrAlreadyRunning is returned when another update run holds the marker.
var ErrAlreadyRunning = errors.New("an update run is already in progress")

// guard is the cross-process single-run lock: a marker file holding the
// owner's PID. A marker whose owner is gone is reclaimed.
type guard struct {
	markerPath string
}

// acquireGuard claims the run marker in dir or reports a conflicting run.
func acquireGuard(ctx context.Context, dir string) (*guard, error) {
	markerPath := filepath.Join(dir, MarkerFilename)

	info, err := os.Stat(markerPath)
	if err == nil {
		if markerOwnerAlive(markerPath) {
			return nil, fmt.Errorf("%w: marker %s", ErrAlreadyRunning, markerPath)
		}

		// Give a marker with an unreadable owner the benefit of the doubt
		// while it is fresh.
		if time.Since(info.ModTime()) <= markerLifetime {
			return nil, fmt.Errorf("%w: marker %s", ErrAlreadyRunning, markerPath)
		}

		logger.InfoKV(ctx, "Removing stale update marker", "path", markerPath)

		if err = os.Remove(markerPath); err != nil {
			return nil, fmt.Errorf("%w: stale marker %s not removable: %v", ErrAlreadyRunning, markerPath, err)
		}
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(markerPath, []byte(pid), 0o600); err != nil {
		return nil, fmt.Errorf("write update marker: %w", err)
	}

	return &guard{markerPath: markerPath}, nil
}

// release removes the marker. Failures are logged, never returned: the
// marker's staleness handling recovers on the next run.
func (g *guard) release(ctx context.Context) {
	if err := os.Remove(g.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove update marker", "path", g.markerPath, "error", err)
	}
}

// markerOwnerAlive reports whether the PID recorded in the marker belongs to
// a live process other than this one.
func markerOwnerAlive(markerPath string) bool {
	contents, err := os.ReadFile(markerPath)
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return false
	}

	if pid == os.Getpid() {
		// Our own leftover from an earlier crash in this PID space.
		return false
	}

	process, err := ps.FindProcess(pid)

	return err == nil && process != nil
}
