package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestMemoryRoundTrip verifies basic set-then-get behaviour.
func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	_, ok := m.Get(ctx, "manifest")
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "manifest", []byte(`{}`), time.Minute))

	value, ok := m.Get(ctx, "manifest")
	require.True(t, ok)
	require.Equal(t, []byte(`{}`), value)
}

// TestMemoryExpiry verifies that entries disappear once their ttl passes.
func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "manifest", []byte(`{}`), time.Minute))

	_, ok := m.Get(ctx, "manifest")
	require.True(t, ok)

	current = current.Add(2 * time.Minute)

	_, ok = m.Get(ctx, "manifest")
	require.False(t, ok)
}

// TestMemoryNoExpiry verifies that a non-positive ttl stores forever.
func TestMemoryNoExpiry(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.now = func() time.Time { return current }

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "manifest", []byte(`{}`), 0))

	current = current.Add(24 * time.Hour * 365)

	_, ok := m.Get(ctx, "manifest")
	require.True(t, ok)
}
