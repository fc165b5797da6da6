// Package storage provides the durable key-value stores the branch store
// persists into. All implementations satisfy the same small KV contract so
// the rest of the application never cares which medium is behind it.
package storage

import "sync"

// KV is the persistence contract consumed by the branch store.
//
// Load returns the stored value and whether the key exists. A missing key is
// not an error; errors are reserved for the medium itself failing.
type KV interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Remove(key string) error
}

// NullKV is a KV with no backing medium. Every read misses and every write
// is a no-op. It is used when no durable storage is available so the
// application keeps working in-memory for the life of the process.
type NullKV struct{}

func NewNullKV() *NullKV { return &NullKV{} }

func (n *NullKV) Load(key string) (string, bool, error) { return "", false, nil }
func (n *NullKV) Save(key, value string) error          { return nil }
func (n *NullKV) Remove(key string) error               { return nil }

// MemoryKV is a map-backed KV used in tests and as a scratch medium.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
