package update

import "time"

// AppliedRelease records a single version the updater installed.
type AppliedRelease struct {
	// Version is the release version that was installed.
	Version string `json:"version"`
	// AppliedAt is when the installation finished.
	AppliedAt time.Time `json:"applied_at"`
}

// Clone returns a copy of the applied release.
func (a *AppliedRelease) Clone() *AppliedRelease {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// State is what the updater remembers between runs.
type State struct {
	// CurrentVersion is the version considered installed right now.
	CurrentVersion string `json:"current_version"`
	// LastRunAt is when the last update run finished.
	LastRunAt time.Time `json:"last_run_at"`
	// LastStatus is the terminal status of the last run.
	LastStatus string `json:"last_status"`
	// History lists installed versions in the order they were applied.
	History []AppliedRelease `json:"history,omitempty"`
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	cloned := &State{
		CurrentVersion: s.CurrentVersion,
		LastRunAt:      s.LastRunAt,
		LastStatus:     s.LastStatus,
	}

	if s.History != nil {
		cloned.History = make([]AppliedRelease, len(s.History))
		copy(cloned.History, s.History)
	}

	return cloned
}

// RecordApplied appends a freshly installed version and makes it current.
func (s *State) RecordApplied(version string, at time.Time) {
	s.CurrentVersion = version
	s.History = append(s.History, AppliedRelease{
		Version:   version,
		AppliedAt: at,
	})
}
