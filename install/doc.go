// Package install unpacks release packages into the installation directory.
//
// The engine runs in two modes over the same archive walk. Simulate probes
// every entry without touching file contents (directory creation is the one
// permitted side effect) and returns a full report of what would block a
// real installation. Apply writes entries in archive order and aborts on the
// first failure, leaving already written files in place: there is no
// rollback, the next run continues from the same package.
package install
