package storage

import (
	"context"
	"encoding/json"
	"sync"

	"quantum/internal/models"
)

// Memory is a map-backed Store used in tests and as a fallback when no
// database is configured.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]json.RawMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]json.RawMessage)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return models.NewInternalError(err)
	}
	m.mu.Lock()
	m.blobs[key] = raw
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}
