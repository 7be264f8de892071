package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache guarded by a mutex.
// Expired entries are dropped lazily on access.
type Memory struct {
	// mu serializes access to entries.
	mu sync.Mutex
	// entries maps keys to stored values with their expiry.
	entries map[string]memoryEntry
	// now returns the current time; replaced in tests.
	now func() time.Time
}

// memoryEntry is one stored value. A zero expiresAt never expires.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the value stored under key if it has not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}

	return entry.value, true
}

// Set stores value under key for ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.entries[key] = entry

	return nil
}
