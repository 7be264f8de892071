// Package version carries the build metadata stamped into release binaries.
//
// Version, Commit, and BuildTime are set through ldflags; local builds get
// recognizable placeholders. The helpers render the canonical forms used in
// CLI output and in the HTTP User-Agent header.
package version
