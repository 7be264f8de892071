package update

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestAppliedReleaseClone verifies that Clone returns a copy and handles nil safely.
func TestAppliedReleaseClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*AppliedRelease)(nil).Clone())

	a := &AppliedRelease{
		Version:   "2.0.1",
		AppliedAt: time.Now().UTC().Truncate(time.Second),
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
}

// TestStateClone verifies that State.Clone copies fields and detaches the history slice.
func TestStateClone(t *testing.T) {
	t.Parallel()

	ts := time.Now().UTC().Truncate(time.Second)
	s := State{
		CurrentVersion: "2.0.1",
		LastRunAt:      ts,
		LastStatus:     "success",
		History: []AppliedRelease{
			{Version: "2.0.0", AppliedAt: ts.Add(-time.Hour)},
			{Version: "2.0.1", AppliedAt: ts},
		},
	}

	c := s.Clone()
	require.Equal(t, s.CurrentVersion, c.CurrentVersion)
	require.Equal(t, s.LastRunAt, c.LastRunAt)
	require.Equal(t, s.History, c.History)

	// Mutating the clone's history must not leak into the original.
	c.History[0].Version = "mutated"
	require.Equal(t, "2.0.0", s.History[0].Version)
}

// TestStateRecordApplied verifies history appending and current-version advance.
func TestStateRecordApplied(t *testing.T) {
	t.Parallel()

	ts := time.Now().UTC().Truncate(time.Second)

	var s State

	s.RecordApplied("2.0.0", ts)
	s.RecordApplied("2.0.1", ts.Add(time.Minute))

	require.Equal(t, "2.0.1", s.CurrentVersion)
	require.Len(t, s.History, 2)
	require.Equal(t, "2.0.0", s.History[0].Version)
}
