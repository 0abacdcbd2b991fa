// Package kv defines the key-value medium checklists are persisted in.
//
// The contract is deliberately small: a value is read or replaced as a
// whole, absence is a normal result and every failure is returned.
package kv

import (
	"context"
	"sync"
)

// Medium is a durable string-keyed byte store.
type Medium interface {
	// Get returns the value stored under key. ok is false when the key was
	// never written; that is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value under key in a single write.
	Set(ctx context.Context, key string, value []byte) error
}

// Memory keeps values in process memory. Used by the "memory" backend and
// as a test double.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory medium.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Len reports how many keys hold a value.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
