package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is a process-wide store. Entries expire ttl after they were
// put; the LRU is safe for concurrent use.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size < 1 {
		size = 1
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}
