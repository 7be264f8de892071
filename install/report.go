package install

// EntryReport records what the engine found out about, or did to, a single
// archive member.
type EntryReport struct {
	// Path is the member's relative path inside the package.
	Path string
	// IsDir reports whether the member is a directory.
	IsDir bool
	// Size is the member's uncompressed size in bytes.
	Size uint64
	// Skipped is set for members with unsafe paths; they never block a run.
	Skipped bool
	// UpgradeScript marks the member matching the engine's script name.
	UpgradeScript bool
	// Existed reports whether the target already existed on disk.
	Existed bool
	// Created reports that the target directory was created by the engine.
	Created bool
	// Written reports that the member's content reached the target file.
	Written bool
	// Err is the blocking failure for this member, nil when the member is fine.
	Err error
}

// Blocking reports whether this member prevents a successful installation.
func (e *EntryReport) Blocking() bool {
	return e.Err != nil
}

// Report is the per-entry trace of one simulate or apply pass.
type Report struct {
	// ArchivePath is the package the pass ran over.
	ArchivePath string
	// Entries lists the members in archive order. An aborted apply pass ends
	// at the failing member.
	Entries []EntryReport
	// ScriptPath is where the upgrade script lives under the installation
	// directory, or "" when the package ships none.
	ScriptPath string
}

// OK reports whether the pass completed without a blocking member.
func (r *Report) OK() bool {
	for i := range r.Entries {
		if r.Entries[i].Blocking() {
			return false
		}
	}

	return true
}

// Failed returns the members that block an installation, in archive order.
func (r *Report) Failed() []EntryReport {
	var failed []EntryReport

	for i := range r.Entries {
		if r.Entries[i].Blocking() {
			failed = append(failed, r.Entries[i])
		}
	}

	return failed
}
