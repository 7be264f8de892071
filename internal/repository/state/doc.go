// Package state implements persistence for the updater State.
//
// The FileRepository stores and loads the state as JSON on disk and exposes a
// Repository interface that the update coordinator depends on.
package state
