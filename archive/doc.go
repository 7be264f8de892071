// Package archive reads release packages.
//
// Packages are zip files. Reader exposes the entries in archive order and
// flags entries whose paths would escape the extraction root, leaving the
// decision of what to do with them to the caller.
package archive
