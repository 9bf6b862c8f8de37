// Package storage is the client-local key/value store behind the guest cart,
// saved addresses and persisted credentials.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

// Store persists opaque values under string keys.
// Get returns an error matching apperrors.ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// NotFound is the error returned by every backend for a missing key.
func NotFound(key string) error {
	return apperrors.NotFound("storage key", key)
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// GetJSON decodes the value stored under key into dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// Memory is an in-process Store. It backs the "memory" storage setting,
// where carts and sign-ins last only as long as the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, NotFound(key)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ProbeKey is written and removed by Probe.
const ProbeKey = "storefront_probe"

// Probe checks that s can store, return and delete a value.
func Probe(ctx context.Context, s Store) error {
	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := s.Set(ctx, ProbeKey, want); err != nil {
		return fmt.Errorf("write probe: %w", err)
	}
	got, err := s.Get(ctx, ProbeKey)
	if err != nil {
		return fmt.Errorf("read probe: %w", err)
	}
	if string(got) != string(want) {
		return fmt.Errorf("probe read back %q, wrote %q", got, want)
	}
	return s.Delete(ctx, ProbeKey)
}
