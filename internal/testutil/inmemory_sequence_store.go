package testutil

import (
	"context"
	"sync"
	"time"

	"gulmohar/billing/internal/repository"
)

// InMemorySequenceStore implements repository.SequenceRepository.
type InMemorySequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{values: make(map[string]int64)}
}

var _ repository.SequenceRepository = (*InMemorySequenceStore)(nil)

func (s *InMemorySequenceStore) Next(_ context.Context, key string, _ time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key]++
	return s.values[key], nil
}

func (s *InMemorySequenceStore) RaiseTo(_ context.Context, key string, value int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > s.values[key] {
		s.values[key] = value
	}
	return nil
}

// Value reads the current counter for key.
func (s *InMemorySequenceStore) Value(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}
