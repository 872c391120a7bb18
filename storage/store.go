// Package storage persists user settings: hourly wage, display mode,
// show-hours flag and tier thresholds. Read failures degrade to the
// documented defaults; they are never fatal.
package storage

import (
	"context"
	"sync"

	"worktime-annotator/internal/types"
)

// Store reads and writes user settings.
type Store interface {
	Load(ctx context.Context) (types.Settings, error)
	Save(ctx context.Context, settings types.Settings) error
}

// MemoryStore holds settings in process memory. Used by the API (per
// request) and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	settings types.Settings
}

// NewMemoryStore creates a store seeded with the given settings.
func NewMemoryStore(settings types.Settings) *MemoryStore {
	return &MemoryStore{settings: settings}
}

// Load returns the current settings.
func (m *MemoryStore) Load(ctx context.Context) (types.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

// Save replaces the current settings.
func (m *MemoryStore) Save(ctx context.Context, settings types.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}
