package storage

import (
	"maps"
	"sync"

	"github.com/bassista/circum/internal/logger"
)

// MemoryStorage keeps items in a map. It loses everything on restart and is meant for
// development and tests. SetWriteError lets tests simulate a full store.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	writeErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]string{}}
}

// NewMemoryStorageWith returns a storage primed with a copy of items.
func NewMemoryStorageWith(items map[string]string) *MemoryStorage {
	ms := NewMemoryStorage()
	maps.Copy(ms.items, items)
	return ms
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	logger.WithComponent("memory-storage").Tracef("get %s, found: %v", key, ok)
	return value, ok, nil
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	logger.WithComponent("memory-storage").Tracef("set %s (%d bytes)", key, len(value))
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.items, key)
	return nil
}

// SetWriteError makes every following SetItem and RemoveItem fail with err.
// Pass nil to restore normal behaviour.
func (m *MemoryStorage) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Len returns the number of stored items.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
