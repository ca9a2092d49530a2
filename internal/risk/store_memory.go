package risk

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryComplaintStore is the fallback complaint counter.
type InMemoryComplaintStore struct {
	mu     sync.RWMutex
	counts map[uuid.UUID]int
}

func NewInMemoryComplaintStore() *InMemoryComplaintStore {
	return &InMemoryComplaintStore{counts: make(map[uuid.UUID]int)}
}

func (s *InMemoryComplaintStore) Report(_ context.Context, workerID, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[workerID]++
	return nil
}

func (s *InMemoryComplaintStore) CountByWorker(_ context.Context, workerID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[workerID], nil
}
