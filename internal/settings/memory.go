package settings

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and anywhere a real
// settings table is unavailable.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore seeds an in-memory store with the given values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MemoryStore{values: copied}
}

// GetSetting returns the stored value or the fallback.
func (m *MemoryStore) GetSetting(_ context.Context, key, fallback string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

// SetSetting stores a value.
func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
