// Package store remembers the slot count detected for each avatar so a failed
// handshake can fall back to the right value after an avatar switch.
package store

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("avatar not found")

type Store interface {
	Load(ctx context.Context, avatarID string) (int, error)
	Save(ctx context.Context, avatarID string, slots int) error
	Close() error
}

type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]int)}
}

func (m *MemoryStore) Load(_ context.Context, avatarID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.slots[avatarID]
	if !ok {
		return 0, ErrNotFound
	}
	return n, nil
}

func (m *MemoryStore) Save(_ context.Context, avatarID string, slots int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[avatarID] = slots
	return nil
}

func (m *MemoryStore) Close() error { return nil }
