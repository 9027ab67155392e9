package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryTable is an in-memory Table protected by a RWMutex.
// It backs local runs and tests.
type MemoryTable[T Keyed] struct {
	mu    sync.RWMutex
	items map[int]T
}

// NewMemoryTable returns an empty MemoryTable.
func NewMemoryTable[T Keyed]() *MemoryTable[T] {
	return &MemoryTable[T]{
		items: make(map[int]T),
	}
}

// Scan returns the records ordered by key.
func (m *MemoryTable[T]) Scan(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]T, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(a.Key(), b.Key())
	})

	return items, nil
}

func (m *MemoryTable[T]) Get(_ context.Context, key int) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	return item, ok, nil
}

func (m *MemoryTable[T]) Put(_ context.Context, item T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[item.Key()] = item
	return nil
}

func (m *MemoryTable[T]) Delete(_ context.Context, key int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

func (m *MemoryTable[T]) Ping(_ context.Context) error {
	return nil
}
