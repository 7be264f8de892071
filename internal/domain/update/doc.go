// Package update contains core domain types for the updater's durable state.
//
// It defines AppliedRelease (one installed version) and State (what the
// updater remembers between runs) with Clone helpers to avoid leaking
// internal references.
package update
