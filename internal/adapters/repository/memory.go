package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// MemoryStore is a DocumentStore kept in process memory. It backs tests and
// the MCP server when no database path is given.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]json.RawMessage
}

var _ DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]json.RawMessage)}
}

func clone(b json.RawMessage) json.RawMessage {
	return bytes.Clone(b)
}

// Get implements DocumentStore.
func (m *MemoryStore) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return clone(body), nil
}

// Put implements DocumentStore.
func (m *MemoryStore) Put(_ context.Context, collection, id string, body json.RawMessage) error {
	if err := checkBody(body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, body)
	return nil
}

func (m *MemoryStore) put(collection, id string, body json.RawMessage) {
	c, ok := m.docs[collection]
	if !ok {
		c = make(map[string]json.RawMessage)
		m.docs[collection] = c
	}
	c[id] = clone(body)
}

// Delete implements DocumentStore.
func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	delete(m.docs[collection], id)
	return nil
}

// List implements DocumentStore.
func (m *MemoryStore) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.docs[collection]
	var out []json.RawMessage
	for _, id := range slices.Sorted(maps.Keys(c)) {
		out = append(out, clone(c[id]))
	}
	return out, nil
}

// fieldKey renders a JSON field value and a Go query value the same way so
// that 7, 7.0 and json 7 compare equal.
func fieldKey(v any) string {
	switch n := v.(type) {
	case bool:
		if n {
			return "1"
		}
		return "0"
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	}
	return fmt.Sprint(v)
}

func (m *MemoryStore) scan(collection, field string, visit func(key string, body json.RawMessage)) error {
	if err := checkField(field); err != nil {
		return err
	}
	c := m.docs[collection]
	for _, id := range slices.Sorted(maps.Keys(c)) {
		var doc map[string]any
		if err := json.Unmarshal(c[id], &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		visit(fieldKey(doc[field]), c[id])
	}
	return nil
}

// QueryByField implements DocumentStore.
func (m *MemoryStore) QueryByField(_ context.Context, collection, field string, value any) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := fieldKey(value)
	var out []json.RawMessage
	err := m.scan(collection, field, func(key string, body json.RawMessage) {
		if key == want {
			out = append(out, clone(body))
		}
	})
	return out, err
}

// CountByField implements DocumentStore.
func (m *MemoryStore) CountByField(_ context.Context, collection, field string, value any) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := fieldKey(value)
	n := 0
	err := m.scan(collection, field, func(key string, _ json.RawMessage) {
		if key == want {
			n++
		}
	})
	return n, err
}

// CountMax implements DocumentStore.
func (m *MemoryStore) CountMax(_ context.Context, collection, field string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := make(map[string]int)
	err := m.scan(collection, field, func(key string, _ json.RawMessage) {
		groups[key]++
	})
	best := 0
	for _, n := range groups {
		best = max(best, n)
	}
	return best, err
}

// Update implements DocumentStore.
func (m *MemoryStore) Update(_ context.Context, collection, id string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cur json.RawMessage
	if body, ok := m.docs[collection][id]; ok {
		cur = clone(body)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err := checkBody(next); err != nil {
		return err
	}
	m.put(collection, id, next)
	return nil
}

// Close implements DocumentStore.
func (m *MemoryStore) Close() error { return nil }
