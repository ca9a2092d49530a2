package binding

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// InMemoryStore is the fallback binding store. The uniqueness check and the
// append run under one lock, which gives the same exactly-one-winner
// semantics as the Postgres partial unique index.
type InMemoryStore struct {
	mu       sync.RWMutex
	bindings []domain.WorkplaceBinding
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) CreateIfNoneActive(_ context.Context, b domain.WorkplaceBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bindings {
		if s.bindings[i].WorkerID == b.WorkerID && s.bindings[i].Active {
			return sentinel.ErrConflict
		}
	}
	s.bindings = append(s.bindings, b)
	return nil
}

func (s *InMemoryStore) ActiveByWorker(_ context.Context, workerID uuid.UUID) (domain.WorkplaceBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.bindings {
		if s.bindings[i].WorkerID == workerID && s.bindings[i].Active {
			return s.bindings[i], nil
		}
	}
	return domain.WorkplaceBinding{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListBySupervisor(_ context.Context, supervisorID uuid.UUID) ([]domain.WorkplaceBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.WorkplaceBinding
	for i := range s.bindings {
		if s.bindings[i].SupervisorID == supervisorID {
			out = append(out, s.bindings[i])
		}
	}
	return out, nil
}
