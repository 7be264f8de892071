package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuildPlanFiltersAndOrders verifies that only versions newer than the
// current one survive and that they come out in ascending order.
func TestBuildPlanFiltersAndOrders(t *testing.T) {
	t.Parallel()

	m := Manifest{
		"1.0.0": "https://releases.example.com/1.0.0.zip",
		"2.1.0": "https://releases.example.com/2.1.0.zip",
		"2.0.0": "https://releases.example.com/2.0.0.zip",
		"1.5.0": "https://releases.example.com/1.5.0.zip",
	}

	plan, err := BuildPlan(m, "1.5.0", false)
	require.NoError(t, err)
	require.Equal(t, []string{"2.0.0", "2.1.0"}, plan.Versions())
	require.Equal(t, "2.1.0", plan.Latest)
	require.True(t, plan.HasPending())
	require.Equal(t, "https://releases.example.com/2.0.0.zip", plan.Pending[0].URL)
}

// TestBuildPlanNothingNewer verifies the empty plan: no pending versions and
// no latest version either.
func TestBuildPlanNothingNewer(t *testing.T) {
	t.Parallel()

	m := Manifest{
		"0.9.0": "https://releases.example.com/0.9.0.zip",
		"1.0.0": "https://releases.example.com/1.0.0.zip",
	}

	plan, err := BuildPlan(m, "1.0.0", false)
	require.NoError(t, err)
	require.Empty(t, plan.Pending)
	require.Empty(t, plan.Latest)
	require.False(t, plan.HasPending())
}

// TestBuildPlanEmptyManifest verifies that an empty manifest yields an empty plan.
func TestBuildPlanEmptyManifest(t *testing.T) {
	t.Parallel()

	plan, err := BuildPlan(Manifest{}, "1.0.0", false)
	require.NoError(t, err)
	require.Empty(t, plan.Pending)
	require.Empty(t, plan.Latest)
}

// TestBuildPlanLenientMalformedKey verifies that a malformed manifest key
// ranks below the current version and never becomes pending.
func TestBuildPlanLenientMalformedKey(t *testing.T) {
	t.Parallel()

	m := Manifest{
		"not-a-version": "https://releases.example.com/broken.zip",
		"1.1.0":         "https://releases.example.com/1.1.0.zip",
	}

	plan, err := BuildPlan(m, "1.0.0", false)
	require.NoError(t, err)
	require.Equal(t, []string{"1.1.0"}, plan.Versions())
}

// TestBuildPlanStrictRejectsMalformed verifies strict-mode validation of both
// the manifest keys and the current version.
func TestBuildPlanStrictRejectsMalformed(t *testing.T) {
	t.Parallel()

	m := Manifest{"not-a-version": "https://releases.example.com/broken.zip"}

	_, err := BuildPlan(m, "1.0.0", true)
	require.ErrorIs(t, err, ErrVersionSyntax)

	_, err = BuildPlan(Manifest{"1.1.0": "https://releases.example.com/1.1.0.zip"}, "garbage", true)
	require.ErrorIs(t, err, ErrVersionSyntax)
}
