package cache

import (
	"context"
	"time"
)

// MemoryStore is a process local Store bounded to maxEntries. Its retention
// only bounds memory; freshness of cached results is decided by the
// envelope timestamp.
type MemoryStore struct {
	lru *lru
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(maxEntries int, retention time.Duration) *MemoryStore {
	return &MemoryStore{lru: newLRU(maxEntries, retention)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.lru.get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.lru.put(key, value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.remove(key)
	return nil
}

// Len returns the number of entries held, expired ones included.
func (s *MemoryStore) Len() int {
	return s.lru.len()
}

// CleanExpired lets a Manager reclaim expired entries.
func (s *MemoryStore) CleanExpired() int {
	return s.lru.sweep()
}
