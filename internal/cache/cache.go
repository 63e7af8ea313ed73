// Package cache provides an injectable TTL store for adapter results.
//
// The in-memory implementation is correct for single-instance deployments
// only; multi-instance setups need a shared store behind the same interface.
package cache

import (
	"sync"
	"time"
)

// Store is the capability adapters depend on: get and set-with-TTL.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryStore is a concurrency-safe in-memory TTL store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Last writer wins on concurrent sets.
func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// Delete removes key from the store.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
