package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. It keeps the encoded JSON form so its
// behavior (including decode failures) matches the durable backends. Safe for
// concurrent use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(ctx context.Context, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrCorrupted, key, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value for key %q: %w", key, err)
	}

	m.mu.Lock()
	m.values[key] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// SetRaw stores bytes without encoding them. Tests use it to simulate a
// corrupted value on disk.
func (m *Memory) SetRaw(key string, raw []byte) {
	m.mu.Lock()
	m.values[key] = json.RawMessage(raw)
	m.mu.Unlock()
}
