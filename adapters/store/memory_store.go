package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/teller/ports"
)

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the AttemptStore interface
type MemoryStore struct {
	attempts map[string]attemptEntry
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.AttemptStore {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string]attemptEntry),
		now:      now,
	}
}

// RecordFailure increments the failure counter for a card
func (s *MemoryStore) RecordFailure(ctx context.Context, card string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.attempts[card]
	if !exists || now.After(entry.expiresAt) {
		entry = attemptEntry{}
	}

	entry.count++
	entry.expiresAt = now.Add(ttl)
	s.attempts[card] = entry

	return entry.count, nil
}

// Failures returns the live failure count for a card
func (s *MemoryStore) Failures(ctx context.Context, card string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.attempts[card]
	if !exists {
		return 0, nil
	}

	// Check if the counter has expired
	if s.now().After(entry.expiresAt) {
		return 0, nil
	}

	return entry.count, nil
}

// Clear forgets the failures of a card
func (s *MemoryStore) Clear(ctx context.Context, card string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, card)
	return nil
}
