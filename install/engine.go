package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/stepladder-dev/stepladder/archive"
	"github.com/stepladder-dev/stepladder/internal/logger"
)

const (
	// DefaultFileMode is applied to every file the engine installs.
	DefaultFileMode os.FileMode = 0o755
	// DefaultDirMode is applied to every directory the engine creates.
	DefaultDirMode os.FileMode = 0o755
)

var (
	// ErrCreateDir is returned when a directory from the package cannot be created.
	ErrCreateDir = errors.New("cannot create directory")
	// ErrWriteFile is returned when a file cannot be written from the package.
	ErrWriteFile = errors.New("cannot write file from archive")
	// ErrSimulation is returned when a simulate pass finds blocking members.
	// The report accompanying the error lists every one of them.
	ErrSimulation = errors.New("simulation found blocking entries")
)

// Engine installs release packages into a fixed installation directory.
// It keeps no state between passes; every pass walks its archive once.
type Engine struct {
	// installDir is the root all member paths are joined onto.
	installDir string
	// scriptName is the root-level member treated as the upgrade script.
	scriptName string
}

// NewEngine returns an engine for the given installation directory.
// scriptName may be empty when packages never carry an upgrade script.
func NewEngine(installDir, scriptName string) *Engine {
	return &Engine{
		installDir: installDir,
		scriptName: scriptName,
	}
}

// Simulate probes whether the package would install cleanly.
//
// Probes never touch file contents. Directories missing from the target tree
// are created for real, matching what a subsequent apply pass needs anyway.
// The walk always covers the whole archive; if any member blocks, the full
// report comes back together with ErrSimulation.
func (e *Engine) Simulate(ctx context.Context, archivePath string) (*Report, error) {
	reader, err := archive.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = reader.Close()
	}()

	report := &Report{ArchivePath: archivePath}
	blocked := 0

	for _, entry := range reader.Entries() {
		entryReport := e.simulateEntry(ctx, entry)

		if entryReport.UpgradeScript {
			report.ScriptPath = filepath.Join(e.installDir, entry.Path)
		}

		if entryReport.Blocking() {
			blocked++

			logger.WarnKV(ctx, "Entry would block installation", "entry", entry.Path, "error", entryReport.Err)
		}

		report.Entries = append(report.Entries, entryReport)
	}

	if blocked > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrSimulation, blocked, len(report.Entries))
	}

	return report, nil
}

// Apply installs the package for real.
//
// Members are written in archive order. The first failing member aborts the
// pass and is the last one in the returned report; files written before it
// stay in place.
func (e *Engine) Apply(ctx context.Context, archivePath string) (*Report, error) {
	reader, err := archive.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = reader.Close()
	}()

	report := &Report{ArchivePath: archivePath}

	for _, entry := range reader.Entries() {
		entryReport := e.applyEntry(ctx, entry)
		report.Entries = append(report.Entries, entryReport)

		if entryReport.Blocking() {
			return report, entryReport.Err
		}

		if entryReport.UpgradeScript && entryReport.Written {
			report.ScriptPath = filepath.Join(e.installDir, entry.Path)
		}
	}

	return report, nil
}

// simulateEntry probes a single member without modifying file contents.
func (e *Engine) simulateEntry(ctx context.Context, entry archive.Entry) EntryReport {
	entryReport := e.newEntryReport(entry)

	if entry.Unsafe {
		logger.WarnKV(ctx, "Skipping entry with unsafe path", "entry", entry.Path)
		return entryReport
	}

	target := filepath.Join(e.installDir, entry.Path)

	if entry.IsDir {
		e.probeDir(target, &entryReport)
		return entryReport
	}

	e.probeFile(target, entry, &entryReport)

	return entryReport
}

// probeDir ensures the directory member exists, creating it when absent.
func (e *Engine) probeDir(target string, entryReport *EntryReport) {
	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			entryReport.Err = fmt.Errorf("%w: %s exists and is not a directory", ErrCreateDir, target)
			return
		}

		entryReport.Existed = true

		return
	}

	if err := os.MkdirAll(target, DefaultDirMode); err != nil {
		entryReport.Err = fmt.Errorf("%w: %s: %w", ErrCreateDir, target, err)
		return
	}

	entryReport.Created = true
}

// probeFile checks that the file member could be written: its parent must
// accept new files, an existing target must be replaceable, and the member's
// content must decompress cleanly.
func (e *Engine) probeFile(target string, entry archive.Entry, entryReport *EntryReport) {
	parent := filepath.Dir(target)

	if _, err := os.Stat(parent); err != nil {
		if mkErr := os.MkdirAll(parent, DefaultDirMode); mkErr != nil {
			entryReport.Err = fmt.Errorf("%w: %s: %w", ErrCreateDir, parent, mkErr)
			return
		}

		entryReport.Created = true
	}

	if err := EnsureDirWritable(parent); err != nil {
		entryReport.Err = fmt.Errorf("parent directory %s is not writable: %w", parent, err)
		return
	}

	if info, err := os.Stat(target); err == nil {
		entryReport.Existed = true

		if info.IsDir() {
			entryReport.Err = fmt.Errorf("target %s is a directory", target)
			return
		}

		file, openErr := os.OpenFile(target, os.O_WRONLY, 0)
		if openErr != nil {
			entryReport.Err = fmt.Errorf("existing file %s is not replaceable: %w", target, openErr)
			return
		}

		_ = file.Close()
	}

	if err := drainEntry(entry); err != nil {
		entryReport.Err = fmt.Errorf("content of %s is unreadable: %w", entry.Path, err)
	}
}

// applyEntry installs a single member.
func (e *Engine) applyEntry(ctx context.Context, entry archive.Entry) EntryReport {
	entryReport := e.newEntryReport(entry)

	if entry.Unsafe {
		logger.WarnKV(ctx, "Skipping entry with unsafe path", "entry", entry.Path)
		return entryReport
	}

	target := filepath.Join(e.installDir, entry.Path)

	if entry.IsDir {
		if info, err := os.Stat(target); err == nil {
			if !info.IsDir() {
				entryReport.Err = fmt.Errorf("%w: %s exists and is not a directory", ErrCreateDir, target)
				return entryReport
			}

			entryReport.Existed = true

			return entryReport
		}

		if err := os.MkdirAll(target, DefaultDirMode); err != nil {
			entryReport.Err = fmt.Errorf("%w: %s: %w", ErrCreateDir, target, err)
			return entryReport
		}

		entryReport.Created = true
		logger.DebugKV(ctx, "Created directory", "path", target)

		return entryReport
	}

	e.writeFile(ctx, target, entry, &entryReport)

	return entryReport
}

// writeFile puts the member's content at target through go-update, creating
// a placeholder first so a fresh install behaves like an upgrade.
func (e *Engine) writeFile(ctx context.Context, target string, entry archive.Entry, entryReport *EntryReport) {
	parent := filepath.Dir(target)
	if _, err := os.Stat(parent); err != nil {
		if mkErr := os.MkdirAll(parent, DefaultDirMode); mkErr != nil {
			entryReport.Err = fmt.Errorf("%w: %s: %w", ErrCreateDir, parent, mkErr)
			return
		}
	}

	data, err := readEntry(entry)
	if err != nil {
		entryReport.Err = fmt.Errorf("%w: %s: %w", ErrWriteFile, entry.Path, err)
		return
	}

	if _, err = os.Stat(target); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		if placeholder, err = os.Create(target); err != nil {
			entryReport.Err = fmt.Errorf("%w: %s: %w", ErrWriteFile, target, err)
			return
		}

		_ = placeholder.Close()
	} else if err == nil {
		entryReport.Existed = true
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		entryReport.Err = fmt.Errorf("%w: %s: %w", ErrWriteFile, target, err)
		return
	}

	oldFileName := target + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	entryReport.Written = true
	logger.DebugKV(ctx, "Installed file", "path", target, "bytes", len(data))
}

// newEntryReport seeds the report fields every mode fills the same way.
func (e *Engine) newEntryReport(entry archive.Entry) EntryReport {
	return EntryReport{
		Path:          entry.Path,
		IsDir:         entry.IsDir,
		Size:          entry.Size,
		Skipped:       entry.Unsafe,
		UpgradeScript: e.scriptName != "" && !entry.IsDir && entry.Path == e.scriptName,
	}
}

// EnsureDirWritable proves dir accepts new files by creating and removing a
// probe file. Callers use it to re-validate directories right before a run.
func EnsureDirWritable(dir string) error {
	probe := filepath.Join(dir, ".stepladder-write-probe")

	file, err := os.OpenFile(probe, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	_ = file.Close()

	return os.Remove(probe)
}

// readEntry decompresses the whole member into memory.
func readEntry(entry archive.Entry) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = rc.Close()
	}()

	return io.ReadAll(rc)
}

// drainEntry decompresses the member and discards it, verifying readability.
func drainEntry(entry archive.Entry) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}

	defer func() {
		_ = rc.Close()
	}()

	_, err = io.Copy(io.Discard, rc)

	return err
}
