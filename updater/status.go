package updater

// Status is the terminal outcome of an update run. The set is closed: every
// run ends in exactly one of these.
type Status int

const (
	// StatusUnknown is the zero value; no finished run carries it.
	StatusUnknown Status = iota
	// StatusSuccess means every pending version was applied.
	StatusSuccess
	// StatusNoUpdate means the manifest offered nothing newer.
	StatusNoUpdate
	// StatusCheckFailed means the implicit manifest check inside the run failed.
	StatusCheckFailed
	// StatusInvalidArchive means a downloaded package was not a readable archive.
	StatusInvalidArchive
	// StatusTempDirInvalid means the temp directory stopped being writable.
	StatusTempDirInvalid
	// StatusInstallDirInvalid means the install directory stopped being writable.
	StatusInstallDirInvalid
	// StatusDownloadFailed means a package could not be fetched.
	StatusDownloadFailed
	// StatusDeleteFailed means a package archive could not be removed after a
	// successful installation.
	StatusDeleteFailed
	// StatusInstallFailed means applying a package aborted partway.
	StatusInstallFailed
	// StatusSimulateFailed means a trial run found blocking entries.
	StatusSimulateFailed
)

// String returns the stable textual form used in logs and persisted state.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoUpdate:
		return "no-update"
	case StatusCheckFailed:
		return "version-check-failed"
	case StatusInvalidArchive:
		return "invalid-archive"
	case StatusTempDirInvalid:
		return "temp-dir-invalid"
	case StatusInstallDirInvalid:
		return "install-dir-invalid"
	case StatusDownloadFailed:
		return "download-failed"
	case StatusDeleteFailed:
		return "delete-failed"
	case StatusInstallFailed:
		return "install-failed"
	case StatusSimulateFailed:
		return "simulate-failed"
	default:
		return "unknown"
	}
}
