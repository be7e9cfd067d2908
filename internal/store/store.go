// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"sync"
)

// Storage keys shared with the browser front-end.
const (
	AlertsKey   = "cryptoAdvisorAlerts"
	LanguageKey = "appLanguage"
)

// KeyValue is a flat durable string store.
type KeyValue interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore is an in-process KeyValue used by tests and by the CLI when
// the database cannot be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		writes: make(map[string]int),
	}
}

// Get implements KeyValue.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements KeyValue.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes[key]++
	return nil
}

// Delete implements KeyValue.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close implements KeyValue.
func (m *MemoryStore) Close() error {
	return nil
}

// Writes returns how many times key has been written.
func (m *MemoryStore) Writes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[key]
}
