package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a key has no persisted value.
var ErrNotFound = errors.New("storage: key not found")

// Adapter is the persisted key/value slice the session and module stores
// write through. Implementations must be safe for concurrent use; writes are
// synchronous so a store's in-memory state and its persisted state never
// diverge across an operation boundary.
type Adapter interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Watcher is implemented by adapters whose backing store can change out of
// band (another process writing the shared slice). Each receive on the
// returned channel signals that persisted values may have changed.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// Memory is an in-memory Adapter used by tests and ephemeral sessions.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}
