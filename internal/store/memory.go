package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Memory is an in-process document source for development and tests.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]map[string]any
}

// NewMemory returns an empty source.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]map[string]any)}
}

// LoadMemory reads a JSON object mapping collection names to document
// arrays, e.g. {"users": [{"name": "Alice", "regNumber": "R1"}]}.
func LoadMemory(path string) (*Memory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := NewMemory()
	if err := json.Unmarshal(raw, &m.collections); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Put appends docs to collection.
func (m *Memory) Put(collection string, docs ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], docs...)
}

// ListDocuments returns a copy of the collection; unknown collections are
// empty, as in a document store.
func (m *Memory) ListDocuments(ctx context.Context, collection string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]map[string]any, len(m.collections[collection]))
	copy(docs, m.collections[collection])
	return docs, nil
}

// Collections returns the collection names in sorted order.
func (m *Memory) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Healthy is always true.
func (m *Memory) Healthy(context.Context) bool { return true }
