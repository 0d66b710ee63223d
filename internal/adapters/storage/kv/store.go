package kv

import (
	"context"
	"sort"
	"sync"
)

// Entry is one value of a key seen across visitor namespaces.
type Entry struct {
	Namespace string
	Value     string
}

// Store is a string key-value store partitioned by namespace.
// Each visitor's namespace plays the part of that browser's local storage.
type Store interface {
	// Get returns the value and whether the key is present.
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	// Set creates or replaces a value.
	Set(ctx context.Context, namespace, key, value string) error
	// Scan returns the value of key in every namespace holding it, ordered by namespace.
	Scan(ctx context.Context, key string) ([]Entry, error)
}

// Memory is an in-process Store used by tests and the "memory" backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string]map[string]string{}}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = map[string]string{}
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

// Scan implements Store.
func (m *Memory) Scan(_ context.Context, key string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for ns, kv := range m.data {
		if v, ok := kv[key]; ok {
			out = append(out, Entry{Namespace: ns, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out, nil
}
